package guard

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/aegis/pkg/authz"
	"github.com/kart-io/aegis/pkg/authz/rolecache"
	"github.com/kart-io/aegis/pkg/security/auth"
	"github.com/kart-io/aegis/pkg/utils/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeEnforcer records every evaluation and answers from a fixed grant
// table keyed by "role|resource|action|domain".
type fakeEnforcer struct {
	grants map[string]bool
	calls  []string
	err    error
}

func (f *fakeEnforcer) Enforce(rvals ...interface{}) (bool, error) {
	key := fmt.Sprintf("%v|%v|%v|%v", rvals[0], rvals[1], rvals[2], rvals[3])
	f.calls = append(f.calls, key)
	if f.err != nil {
		return false, f.err
	}
	return f.grants[key], nil
}

// errorCache simulates an unreachable role cache.
type errorCache struct{}

func (errorCache) Get(ctx context.Context, subject string) ([]string, error) {
	return nil, errors.ErrCache
}
func (errorCache) Set(ctx context.Context, subject string, roles []string, ttl time.Duration) error {
	return errors.ErrCache
}
func (errorCache) Invalidate(ctx context.Context, subject string) error { return errors.ErrCache }
func (errorCache) Close() error                                         { return nil }

func seedCache(t *testing.T, subject string, roles []string) rolecache.Cache {
	t.Helper()
	cache := rolecache.NewMemoryCache()
	require.NoError(t, cache.Set(context.Background(), subject, roles, 0))
	return cache
}

func ident(subject, domain string) *auth.Identity {
	return &auth.Identity{Subject: subject, Domain: domain}
}

func TestAllowedAllRequirementsGranted(t *testing.T) {
	enf := &fakeEnforcer{grants: map[string]bool{
		"admin|policies|read|tenantA":  true,
		"admin|policies|write|tenantA": true,
	}}
	g := New(enf, seedCache(t, "alice", []string{"admin"}))

	allowed, err := g.Allowed(context.Background(), ident("alice", "tenantA"),
		authz.NewRequirement("policies", "read"),
		authz.NewRequirement("policies", "write"),
	)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestAllowedStopsAtFirstMissingRequirement(t *testing.T) {
	enf := &fakeEnforcer{grants: map[string]bool{
		"admin|a|read|d": true,
		// "b" is never granted; "c" must not be evaluated at all.
		"admin|c|read|d": true,
	}}
	g := New(enf, seedCache(t, "alice", []string{"admin"}))

	allowed, err := g.Allowed(context.Background(), ident("alice", "d"),
		authz.NewRequirement("a", "read"),
		authz.NewRequirement("b", "read"),
		authz.NewRequirement("c", "read"),
	)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.NotContains(t, enf.calls, "admin|c|read|d")
}

func TestAllowedStopsAtFirstGrantingRole(t *testing.T) {
	enf := &fakeEnforcer{grants: map[string]bool{
		"editor|docs|write|d": true,
	}}
	g := New(enf, seedCache(t, "alice", []string{"editor", "admin"}))

	allowed, err := g.Allowed(context.Background(), ident("alice", "d"),
		authz.NewRequirement("docs", "write"))
	require.NoError(t, err)
	assert.True(t, allowed)
	// The first role granted; the second was never consulted.
	assert.Equal(t, []string{"editor|docs|write|d"}, enf.calls)
}

func TestAllowedAnyStopsAtFirstGrant(t *testing.T) {
	enf := &fakeEnforcer{grants: map[string]bool{
		"admin|b|read|d": true,
	}}
	g := New(enf, seedCache(t, "alice", []string{"admin"}))

	allowed, err := g.AllowedAny(context.Background(), ident("alice", "d"),
		authz.NewRequirement("a", "read"),
		authz.NewRequirement("b", "read"),
		authz.NewRequirement("c", "read"),
	)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.NotContains(t, enf.calls, "admin|c|read|d")
}

func TestEmptyRoleSetDenies(t *testing.T) {
	enf := &fakeEnforcer{grants: map[string]bool{
		"admin|docs|read|d": true,
	}}
	g := New(enf, rolecache.NewMemoryCache())

	allowed, err := g.Allowed(context.Background(), ident("alice", "d"),
		authz.NewRequirement("docs", "read"))
	require.NoError(t, err)
	assert.False(t, allowed)
	// Fail-closed without a role set: no evaluation happens.
	assert.Empty(t, enf.calls)
}

func TestCacheErrorPropagates(t *testing.T) {
	g := New(&fakeEnforcer{}, errorCache{})

	_, err := g.Allowed(context.Background(), ident("alice", "d"),
		authz.NewRequirement("docs", "read"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrCache)
}

func TestEnforcerErrorIsInfrastructureError(t *testing.T) {
	enf := &fakeEnforcer{err: fmt.Errorf("matcher blew up")}
	g := New(enf, seedCache(t, "alice", []string{"admin"}))

	_, err := g.Allowed(context.Background(), ident("alice", "d"),
		authz.NewRequirement("docs", "read"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInternal)
}

func serveWith(g *Guard, mw gin.HandlerFunc, identity *auth.Identity) *httptest.ResponseRecorder {
	engine := gin.New()
	engine.GET("/protected", func(c *gin.Context) {
		if identity != nil {
			c.Request = c.Request.WithContext(auth.ContextWithIdentity(c.Request.Context(), identity))
		}
		c.Next()
	}, mw, func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	engine.ServeHTTP(w, req)
	return w
}

func TestRequireMissingIdentityIs401(t *testing.T) {
	g := New(&fakeEnforcer{}, rolecache.NewMemoryCache())
	w := serveWith(g, g.Require(authz.NewRequirement("docs", "read")), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireDeniedIs403(t *testing.T) {
	g := New(&fakeEnforcer{}, seedCache(t, "alice", []string{"viewer"}))
	w := serveWith(g, g.Require(authz.NewRequirement("docs", "write")), ident("alice", "d"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireGrantedPasses(t *testing.T) {
	enf := &fakeEnforcer{grants: map[string]bool{
		"viewer|docs|read|d": true,
	}}
	g := New(enf, seedCache(t, "alice", []string{"viewer"}))
	w := serveWith(g, g.Require(authz.NewRequirement("docs", "read")), ident("alice", "d"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestRequireNoRequirementsIsOpen(t *testing.T) {
	g := New(&fakeEnforcer{}, rolecache.NewMemoryCache())
	w := serveWith(g, g.Require(), ident("alice", "d"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireNoRequirementsSkipsIdentityCheck(t *testing.T) {
	g := New(&fakeEnforcer{}, rolecache.NewMemoryCache())
	w := serveWith(g, g.Require(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestRequireCacheErrorIs500(t *testing.T) {
	g := New(&fakeEnforcer{}, errorCache{})
	w := serveWith(g, g.Require(authz.NewRequirement("docs", "read")), ident("alice", "d"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
