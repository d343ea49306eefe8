package biz

import (
	"context"

	"github.com/kart-io/aegis/pkg/authz/rbac"
	"github.com/kart-io/aegis/pkg/utils/errors"
)

// PolicyRuleRequest identifies a single grant of (resource, action) in
// a domain to a subject, typically a role name.
type PolicyRuleRequest struct {
	Subject  string `json:"subject" binding:"required"`
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
	Domain   string `json:"domain" binding:"required"`
}

// RoleAssignRequest assigns or revokes a role for a user in a domain.
type RoleAssignRequest struct {
	User   string `json:"user" binding:"required"`
	Role   string `json:"role" binding:"required"`
	Domain string `json:"domain" binding:"required"`
}

// PolicyService exposes policy administration over the RBAC service.
type PolicyService struct {
	rbac *rbac.Service
}

// NewPolicyService creates a new PolicyService.
func NewPolicyService(rbacSvc *rbac.Service) *PolicyService {
	return &PolicyService{rbac: rbacSvc}
}

// Grant adds a policy rule. Granting an existing rule is a conflict.
func (s *PolicyService) Grant(ctx context.Context, req *PolicyRuleRequest) error {
	added, err := s.rbac.AddPolicy(ctx, req.Subject, req.Resource, req.Action, req.Domain)
	if err != nil {
		return errors.ErrInternal.WithCause(err)
	}
	if !added {
		return errors.ErrAlreadyExists.WithMessage("policy rule already exists")
	}
	return nil
}

// Revoke removes a policy rule. Revoking a missing rule is not found.
func (s *PolicyService) Revoke(ctx context.Context, req *PolicyRuleRequest) error {
	removed, err := s.rbac.RemovePolicy(ctx, req.Subject, req.Resource, req.Action, req.Domain)
	if err != nil {
		return errors.ErrInternal.WithCause(err)
	}
	if !removed {
		return errors.ErrNotFound.WithMessage("policy rule not found")
	}
	return nil
}

// List returns all policy rules.
func (s *PolicyService) List(ctx context.Context) ([][]string, error) {
	rules, err := s.rbac.GetPolicy(ctx)
	if err != nil {
		return nil, errors.ErrInternal.WithCause(err)
	}
	return rules, nil
}

// AssignRole grants a role to a user in a domain.
func (s *PolicyService) AssignRole(ctx context.Context, req *RoleAssignRequest) error {
	added, err := s.rbac.AddRoleForUser(ctx, req.User, req.Role, req.Domain)
	if err != nil {
		return errors.ErrInternal.WithCause(err)
	}
	if !added {
		return errors.ErrAlreadyExists.WithMessage("role already assigned")
	}
	return nil
}

// RevokeRole revokes a role from a user in a domain.
func (s *PolicyService) RevokeRole(ctx context.Context, req *RoleAssignRequest) error {
	removed, err := s.rbac.DeleteRoleForUser(ctx, req.User, req.Role, req.Domain)
	if err != nil {
		return errors.ErrInternal.WithCause(err)
	}
	if !removed {
		return errors.ErrNotFound.WithMessage("role assignment not found")
	}
	return nil
}

// UserRoles returns the roles a user holds in a domain, including
// inherited ones.
func (s *PolicyService) UserRoles(ctx context.Context, user, domain string) ([]string, error) {
	roles, err := s.rbac.GetImplicitRolesForUser(ctx, user, domain)
	if err != nil {
		return nil, errors.ErrInternal.WithCause(err)
	}
	return roles, nil
}

// RolePermissions returns the policy rules granted to a role in a
// domain.
func (s *PolicyService) RolePermissions(ctx context.Context, role, domain string) ([][]string, error) {
	perms, err := s.rbac.GetPermissionsForUser(ctx, role, domain)
	if err != nil {
		return nil, errors.ErrInternal.WithCause(err)
	}
	return perms, nil
}

// DeleteRole removes a role and everything granted to or through it.
func (s *PolicyService) DeleteRole(ctx context.Context, role string) error {
	if _, err := s.rbac.DeleteRole(ctx, role); err != nil {
		return errors.ErrInternal.WithCause(err)
	}
	return nil
}

// Reload re-reads the policy from storage into memory.
func (s *PolicyService) Reload(ctx context.Context) error {
	if err := s.rbac.LoadPolicy(ctx); err != nil {
		return errors.ErrInternal.WithCause(err)
	}
	return nil
}
