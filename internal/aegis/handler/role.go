package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/aegis/internal/aegis/biz"
	"github.com/kart-io/aegis/internal/pkg/httputils"
	"github.com/kart-io/aegis/pkg/utils/errors"
)

// RoleHandler handles role assignment requests.
type RoleHandler struct {
	svc *biz.PolicyService
}

// NewRoleHandler creates a new RoleHandler.
func NewRoleHandler(svc *biz.PolicyService) *RoleHandler {
	return &RoleHandler{svc: svc}
}

// Assign grants a role to a user in a domain.
func (h *RoleHandler) Assign(c *gin.Context) {
	var req biz.RoleAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage(err.Error()), nil)
		return
	}
	if err := h.svc.AssignRole(c.Request.Context(), &req); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, "assigned")
}

// Revoke revokes a role from a user in a domain.
func (h *RoleHandler) Revoke(c *gin.Context) {
	var req biz.RoleAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage(err.Error()), nil)
		return
	}
	if err := h.svc.RevokeRole(c.Request.Context(), &req); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, "revoked")
}

// UserRoles lists the roles a user holds in a domain.
func (h *RoleHandler) UserRoles(c *gin.Context) {
	user := c.Param("user")
	domain := c.Query("domain")
	if domain == "" {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage("domain query parameter is required"), nil)
		return
	}

	roles, err := h.svc.UserRoles(c.Request.Context(), user, domain)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, roles)
}

// Permissions lists the policy rules granted to a role in a domain.
func (h *RoleHandler) Permissions(c *gin.Context) {
	role := c.Param("role")
	domain := c.Query("domain")
	if domain == "" {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage("domain query parameter is required"), nil)
		return
	}

	perms, err := h.svc.RolePermissions(c.Request.Context(), role, domain)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, perms)
}

// Delete removes a role everywhere.
func (h *RoleHandler) Delete(c *gin.Context) {
	role := c.Param("role")
	if err := h.svc.DeleteRole(c.Request.Context(), role); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, "deleted")
}
