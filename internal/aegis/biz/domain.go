package biz

import (
	"context"

	"github.com/kart-io/aegis/internal/aegis/model"
	"github.com/kart-io/aegis/internal/aegis/store"
	"github.com/kart-io/aegis/pkg/authz/rbac"
)

// DomainRequest carries a new tenant domain.
type DomainRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=255"`
}

// DomainService manages tenant domains. Deleting a domain cascades
// into the policy store: every rule and role assignment scoped to it
// is removed and affected subjects are evicted from the role cache.
type DomainService struct {
	store store.Factory
	rbac  *rbac.Service
}

// NewDomainService creates a new DomainService.
func NewDomainService(factory store.Factory, rbacSvc *rbac.Service) *DomainService {
	return &DomainService{store: factory, rbac: rbacSvc}
}

// Create registers a new domain.
func (s *DomainService) Create(ctx context.Context, req *DomainRequest) (*model.Domain, error) {
	domain := &model.Domain{
		Name:        req.Name,
		Description: req.Description,
		Status:      1,
	}
	if err := s.store.Domains().Create(ctx, domain); err != nil {
		return nil, err
	}
	return domain, nil
}

// Get returns a domain by name.
func (s *DomainService) Get(ctx context.Context, name string) (*model.Domain, error) {
	return s.store.Domains().Get(ctx, name)
}

// List lists domains with pagination.
func (s *DomainService) List(ctx context.Context, offset, limit int) (*model.DomainList, error) {
	count, items, err := s.store.Domains().List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return &model.DomainList{TotalCount: count, Items: items}, nil
}

// Delete removes the domain row and purges its policies. The policy
// purge runs first; a half-deleted domain with live rules would keep
// granting access.
func (s *DomainService) Delete(ctx context.Context, name string) error {
	if _, err := s.store.Domains().Get(ctx, name); err != nil {
		return err
	}
	if err := s.rbac.DeleteDomain(ctx, name); err != nil {
		return err
	}
	return s.store.Domains().Delete(ctx, name)
}
