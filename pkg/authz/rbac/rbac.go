// Package rbac wraps a Casbin enforcer with the role and policy
// management operations the admin API exposes. All mutations go through
// the enforcer so they persist via the adapter and replicate to other
// instances through the watcher; role assignment changes additionally
// invalidate the affected subject in the role cache.
package rbac

import (
	"context"

	"github.com/casbin/casbin/v2"
	"github.com/kart-io/logger"

	"github.com/kart-io/aegis/pkg/authz/rolecache"
	"github.com/kart-io/aegis/pkg/utils/errors"
)

// Service exposes role and policy management over a shared enforcer.
type Service struct {
	enforcer *casbin.SyncedEnforcer
	roles    rolecache.Cache
}

// Option configures a Service.
type Option func(*Service)

// WithRoleCache wires the role cache so assignment changes evict stale
// entries instead of waiting for the TTL.
func WithRoleCache(cache rolecache.Cache) Option {
	return func(s *Service) { s.roles = cache }
}

// NewService creates a Service on top of the enforcer.
func NewService(enforcer *casbin.SyncedEnforcer, opts ...Option) *Service {
	s := &Service{enforcer: enforcer}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enforce evaluates a single (subject, resource, action, domain) request.
func (s *Service) Enforce(sub, obj, act, dom string) (bool, error) {
	return s.enforcer.Enforce(sub, obj, act, dom)
}

// GetRolesForUser returns the roles directly assigned to user in domain.
func (s *Service) GetRolesForUser(ctx context.Context, user, domain string) ([]string, error) {
	return s.enforcer.GetRolesForUser(user, domain)
}

// GetImplicitRolesForUser returns direct and inherited roles for user in
// domain.
func (s *Service) GetImplicitRolesForUser(ctx context.Context, user, domain string) ([]string, error) {
	return s.enforcer.GetImplicitRolesForUser(user, domain)
}

// GetUsersForRole returns the users holding role in domain.
func (s *Service) GetUsersForRole(ctx context.Context, role, domain string) ([]string, error) {
	return s.enforcer.GetUsersForRole(role, domain)
}

// HasRoleForUser reports whether user holds role in domain.
func (s *Service) HasRoleForUser(ctx context.Context, user, role, domain string) (bool, error) {
	return s.enforcer.HasRoleForUser(user, role, domain)
}

// AddRoleForUser assigns role to user in domain. Returns false when the
// assignment already existed.
func (s *Service) AddRoleForUser(ctx context.Context, user, role, domain string) (bool, error) {
	added, err := s.enforcer.AddRoleForUser(user, role, domain)
	if err == nil && added {
		s.invalidate(ctx, user)
	}
	return added, err
}

// DeleteRoleForUser revokes role from user in domain.
func (s *Service) DeleteRoleForUser(ctx context.Context, user, role, domain string) (bool, error) {
	removed, err := s.enforcer.DeleteRoleForUser(user, role, domain)
	if err == nil && removed {
		s.invalidate(ctx, user)
	}
	return removed, err
}

// DeleteRole removes role everywhere: every assignment of it and every
// policy rule granted to it, across all domains. Subjects that held the
// role are evicted from the role cache.
func (s *Service) DeleteRole(ctx context.Context, role string) (bool, error) {
	grouping, err := s.enforcer.GetFilteredGroupingPolicy(1, role)
	if err != nil {
		return false, err
	}

	removed, err := s.enforcer.DeleteRole(role)
	if err != nil {
		return removed, err
	}
	for _, g := range grouping {
		if len(g) > 0 {
			s.invalidate(ctx, g[0])
		}
	}
	return removed, nil
}

// GetPermissionsForUser returns the policy rules directly granted to
// user (typically a role name) in domain.
func (s *Service) GetPermissionsForUser(ctx context.Context, user, domain string) ([][]string, error) {
	return s.enforcer.GetPermissionsForUser(user, domain)
}

// GetImplicitPermissionsForUser returns direct and inherited policy
// rules for user in domain.
func (s *Service) GetImplicitPermissionsForUser(ctx context.Context, user, domain string) ([][]string, error) {
	return s.enforcer.GetImplicitPermissionsForUser(user, domain)
}

// GetPolicy returns all policy rules.
func (s *Service) GetPolicy(ctx context.Context) ([][]string, error) {
	return s.enforcer.GetPolicy()
}

// AddPolicy grants (resource, action) in domain to sub. Returns false
// when the rule already existed.
func (s *Service) AddPolicy(ctx context.Context, sub, obj, act, dom string) (bool, error) {
	return s.enforcer.AddPolicy(sub, obj, act, dom)
}

// RemovePolicy revokes (resource, action) in domain from sub.
func (s *Service) RemovePolicy(ctx context.Context, sub, obj, act, dom string) (bool, error) {
	return s.enforcer.RemovePolicy(sub, obj, act, dom)
}

// UpdatePolicy atomically replaces oldRule with newRule.
func (s *Service) UpdatePolicy(ctx context.Context, oldRule, newRule []string) (bool, error) {
	return s.enforcer.UpdatePolicy(oldRule, newRule)
}

// DeleteDomain removes every policy and role assignment scoped to
// domain and evicts every subject that held a role there.
func (s *Service) DeleteDomain(ctx context.Context, domain string) error {
	if domain == "" {
		return errors.ErrInvalidParam.WithMessage("domain is required")
	}

	grouping, err := s.enforcer.GetFilteredGroupingPolicy(2, domain)
	if err != nil {
		return err
	}

	if _, err := s.enforcer.RemoveFilteredPolicy(3, domain); err != nil {
		return err
	}
	if _, err := s.enforcer.RemoveFilteredGroupingPolicy(2, domain); err != nil {
		return err
	}

	for _, g := range grouping {
		if len(g) > 0 {
			s.invalidate(ctx, g[0])
		}
	}
	return nil
}

// LoadPolicy reloads the policy from storage.
func (s *Service) LoadPolicy(ctx context.Context) error {
	return s.enforcer.LoadPolicy()
}

// SavePolicy writes the in-memory policy back to storage.
func (s *Service) SavePolicy(ctx context.Context) error {
	return s.enforcer.SavePolicy()
}

// Enforcer returns the underlying enforcer for callers that need the
// full Casbin API.
func (s *Service) Enforcer() *casbin.SyncedEnforcer {
	return s.enforcer
}

func (s *Service) invalidate(ctx context.Context, subject string) {
	if s.roles == nil {
		return
	}
	if err := s.roles.Invalidate(ctx, subject); err != nil {
		logger.Warnw("role cache invalidation failed", "subject", subject, "error", err)
	}
}
