// Package handler exposes the Aegis HTTP API.
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/aegis/internal/aegis/biz"
	"github.com/kart-io/aegis/internal/pkg/httputils"
	"github.com/kart-io/aegis/pkg/security/auth"
	"github.com/kart-io/aegis/pkg/utils/errors"
)

// AuthHandler handles authentication requests.
type AuthHandler struct {
	svc *biz.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *biz.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req biz.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage(err.Error()), nil)
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		logger.Warnw("login failed", "username", req.Username, "error", err)
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, resp)
}

// Logout drops the caller's cached roles.
func (h *AuthHandler) Logout(c *gin.Context) {
	ident := auth.IdentityFromContext(c.Request.Context())
	if ident == nil {
		httputils.WriteResponse(c, errors.ErrUnauthorized, nil)
		return
	}
	if err := h.svc.Logout(c.Request.Context(), ident.Subject); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, "logged out")
}

// Register handles user registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var req biz.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage(err.Error()), nil)
		return
	}

	user, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, user)
}
