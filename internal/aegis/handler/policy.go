package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/aegis/internal/aegis/biz"
	"github.com/kart-io/aegis/internal/pkg/httputils"
	"github.com/kart-io/aegis/pkg/utils/errors"
)

// PolicyHandler handles policy administration requests.
type PolicyHandler struct {
	svc *biz.PolicyService
}

// NewPolicyHandler creates a new PolicyHandler.
func NewPolicyHandler(svc *biz.PolicyService) *PolicyHandler {
	return &PolicyHandler{svc: svc}
}

// List returns all policy rules.
func (h *PolicyHandler) List(c *gin.Context) {
	rules, err := h.svc.List(c.Request.Context())
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, rules)
}

// Grant adds a policy rule.
func (h *PolicyHandler) Grant(c *gin.Context) {
	var req biz.PolicyRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage(err.Error()), nil)
		return
	}
	if err := h.svc.Grant(c.Request.Context(), &req); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, "granted")
}

// Revoke removes a policy rule.
func (h *PolicyHandler) Revoke(c *gin.Context) {
	var req biz.PolicyRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage(err.Error()), nil)
		return
	}
	if err := h.svc.Revoke(c.Request.Context(), &req); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, "revoked")
}

// Reload re-reads the policy from storage.
func (h *PolicyHandler) Reload(c *gin.Context) {
	if err := h.svc.Reload(c.Request.Context()); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, "reloaded")
}
