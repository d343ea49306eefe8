package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/aegis/internal/aegis/biz"
	"github.com/kart-io/aegis/internal/pkg/httputils"
	"github.com/kart-io/aegis/pkg/utils/errors"
)

// DomainHandler handles tenant domain requests.
type DomainHandler struct {
	svc *biz.DomainService
}

// NewDomainHandler creates a new DomainHandler.
func NewDomainHandler(svc *biz.DomainService) *DomainHandler {
	return &DomainHandler{svc: svc}
}

// Create registers a new domain.
func (h *DomainHandler) Create(c *gin.Context) {
	var req biz.DomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrInvalidParam.WithMessage(err.Error()), nil)
		return
	}

	domain, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, domain)
}

// Get returns a domain by name.
func (h *DomainHandler) Get(c *gin.Context) {
	domain, err := h.svc.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, domain)
}

// List lists domains with pagination.
func (h *DomainHandler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	list, err := h.svc.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, list)
}

// Delete removes a domain and purges its policies.
func (h *DomainHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("name")); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, "deleted")
}
