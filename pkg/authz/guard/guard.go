// Package guard enforces route-level authorization for Gin handlers.
//
// A route declares the permissions it needs as (resource, action) pairs.
// The guard resolves the caller's roles from the role cache and asks the
// enforcer whether any role grants each pair in the caller's domain.
// Evaluation is fail-closed: an unauthenticated caller, a caller with no
// cached roles, or any infrastructure failure all deny the request.
package guard

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/aegis/pkg/authz"
	"github.com/kart-io/aegis/pkg/authz/rolecache"
	"github.com/kart-io/aegis/pkg/security/auth"
	"github.com/kart-io/aegis/pkg/utils/errors"
	"github.com/kart-io/aegis/pkg/utils/response"
)

// Enforcer evaluates a single (role, resource, action, domain) request
// against the loaded policy. *casbin.SyncedEnforcer satisfies it.
type Enforcer interface {
	Enforce(rvals ...interface{}) (bool, error)
}

// IdentityFunc extracts the caller identity from the request. The
// default reads the identity stored by the authentication middleware.
type IdentityFunc func(c *gin.Context) *auth.Identity

// Option configures a Guard.
type Option func(*Guard)

// WithIdentityFunc overrides how the caller identity is extracted.
func WithIdentityFunc(fn IdentityFunc) Option {
	return func(g *Guard) { g.identity = fn }
}

// Guard checks route permission requirements against the policy.
type Guard struct {
	enforcer Enforcer
	roles    rolecache.Cache
	identity IdentityFunc
}

// New creates a Guard backed by the given enforcer and role cache.
func New(enforcer Enforcer, roles rolecache.Cache, opts ...Option) *Guard {
	g := &Guard{
		enforcer: enforcer,
		roles:    roles,
		identity: func(c *gin.Context) *auth.Identity {
			return auth.IdentityFromContext(c.Request.Context())
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Require returns middleware that admits the request only when every
// requirement is granted. With no requirements the route is open and the
// caller identity is not consulted.
func (g *Guard) Require(reqs ...authz.Requirement) gin.HandlerFunc {
	return g.handler(reqs, g.Allowed)
}

// RequireAny returns middleware that admits the request when at least
// one of the requirements is granted.
func (g *Guard) RequireAny(reqs ...authz.Requirement) gin.HandlerFunc {
	return g.handler(reqs, g.AllowedAny)
}

type evalFunc func(ctx context.Context, ident *auth.Identity, reqs ...authz.Requirement) (bool, error)

func (g *Guard) handler(reqs []authz.Requirement, eval evalFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(reqs) == 0 {
			c.Next()
			return
		}

		ident := g.identity(c)
		if ident == nil || ident.Subject == "" {
			abort(c, errors.ErrUnauthorized)
			return
		}

		allowed, err := eval(c.Request.Context(), ident, reqs...)
		if err != nil {
			logger.Errorw("authorization check failed",
				"subject", ident.Subject,
				"domain", ident.Domain,
				"error", err,
			)
			abort(c, err)
			return
		}
		if !allowed {
			abort(c, errors.ErrNoPermission)
			return
		}
		c.Next()
	}
}

// Allowed reports whether ident holds every requirement. Requirements
// are checked in order and evaluation stops at the first denial; roles
// are tried in order and a requirement stops at the first grant.
func (g *Guard) Allowed(ctx context.Context, ident *auth.Identity, reqs ...authz.Requirement) (bool, error) {
	roles, err := g.subjectRoles(ctx, ident)
	if err != nil {
		return false, err
	}
	if len(roles) == 0 {
		return false, nil
	}

	for _, req := range reqs {
		granted, err := g.anyRoleGrants(roles, req, ident.Domain)
		if err != nil {
			return false, err
		}
		if !granted {
			return false, nil
		}
	}
	return true, nil
}

// AllowedAny reports whether ident holds at least one requirement.
// Evaluation stops at the first grant.
func (g *Guard) AllowedAny(ctx context.Context, ident *auth.Identity, reqs ...authz.Requirement) (bool, error) {
	roles, err := g.subjectRoles(ctx, ident)
	if err != nil {
		return false, err
	}
	if len(roles) == 0 {
		return false, nil
	}

	for _, req := range reqs {
		granted, err := g.anyRoleGrants(roles, req, ident.Domain)
		if err != nil {
			return false, err
		}
		if granted {
			return true, nil
		}
	}
	return false, nil
}

func (g *Guard) subjectRoles(ctx context.Context, ident *auth.Identity) ([]string, error) {
	roles, err := g.roles.Get(ctx, ident.Subject)
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (g *Guard) anyRoleGrants(roles []string, req authz.Requirement, domain string) (bool, error) {
	for _, role := range roles {
		ok, err := g.enforcer.Enforce(role, req.Resource, req.Action, domain)
		if err != nil {
			return false, errors.ErrInternal.WithCause(err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func abort(c *gin.Context, err error) {
	resp := response.Err(errors.FromError(err))
	c.AbortWithStatusJSON(resp.HTTPStatus(), resp)
}
