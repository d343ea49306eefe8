package rbac

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kart-io/aegis/pkg/authz"
	"github.com/kart-io/aegis/pkg/authz/rolecache"
	"github.com/kart-io/aegis/pkg/authz/store/gormstore"
)

func setupService(t *testing.T) (*Service, *rolecache.MemoryCache) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	repo, err := gormstore.NewRepository(db)
	require.NoError(t, err)

	enforcer, err := authz.NewEnforcer(&authz.EnforcerConfig{
		Adapter: authz.NewAdapter(repo),
	})
	require.NoError(t, err)

	cache := rolecache.NewMemoryCache()
	return NewService(enforcer, WithRoleCache(cache)), cache
}

func TestRoleAssignmentAndEnforce(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	added, err := svc.AddPolicy(ctx, "admin", "data1", "read", "tenantA")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = svc.AddRoleForUser(ctx, "alice", "admin", "tenantA")
	require.NoError(t, err)
	assert.True(t, added)

	allowed, err := svc.Enforce("alice", "data1", "read", "tenantA")
	require.NoError(t, err)
	assert.True(t, allowed)

	roles, err := svc.GetRolesForUser(ctx, "alice", "tenantA")
	require.NoError(t, err)
	assert.Equal(t, []string{"admin"}, roles)

	has, err := svc.HasRoleForUser(ctx, "alice", "admin", "tenantA")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestAssignmentInvalidatesRoleCache(t *testing.T) {
	svc, cache := setupService(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "alice", []string{"stale"}, 0))

	_, err := svc.AddRoleForUser(ctx, "alice", "admin", "tenantA")
	require.NoError(t, err)

	roles, err := cache.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, roles)
}

func TestRevokeInvalidatesRoleCache(t *testing.T) {
	svc, cache := setupService(t)
	ctx := context.Background()

	_, err := svc.AddRoleForUser(ctx, "alice", "admin", "tenantA")
	require.NoError(t, err)
	require.NoError(t, cache.Set(ctx, "alice", []string{"admin"}, 0))

	removed, err := svc.DeleteRoleForUser(ctx, "alice", "admin", "tenantA")
	require.NoError(t, err)
	assert.True(t, removed)

	roles, err := cache.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, roles)
}

func TestDeleteRoleEvictsHolders(t *testing.T) {
	svc, cache := setupService(t)
	ctx := context.Background()

	_, err := svc.AddPolicy(ctx, "admin", "data1", "read", "tenantA")
	require.NoError(t, err)
	_, err = svc.AddRoleForUser(ctx, "alice", "admin", "tenantA")
	require.NoError(t, err)
	_, err = svc.AddRoleForUser(ctx, "bob", "viewer", "tenantA")
	require.NoError(t, err)

	require.NoError(t, cache.Set(ctx, "alice", []string{"admin"}, 0))
	require.NoError(t, cache.Set(ctx, "bob", []string{"viewer"}, 0))

	_, err = svc.DeleteRole(ctx, "admin")
	require.NoError(t, err)

	allowed, err := svc.Enforce("alice", "data1", "read", "tenantA")
	require.NoError(t, err)
	assert.False(t, allowed)

	aliceRoles, err := cache.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, aliceRoles)

	// Holders of other roles are untouched.
	bobRoles, err := cache.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"viewer"}, bobRoles)
}

func TestDeleteDomainPurgesScopedRules(t *testing.T) {
	svc, cache := setupService(t)
	ctx := context.Background()

	_, err := svc.AddPolicy(ctx, "admin", "data1", "read", "tenantA")
	require.NoError(t, err)
	_, err = svc.AddPolicy(ctx, "admin", "data1", "read", "tenantB")
	require.NoError(t, err)
	_, err = svc.AddRoleForUser(ctx, "alice", "admin", "tenantA")
	require.NoError(t, err)
	_, err = svc.AddRoleForUser(ctx, "bob", "admin", "tenantB")
	require.NoError(t, err)

	require.NoError(t, cache.Set(ctx, "alice", []string{"admin"}, 0))
	require.NoError(t, cache.Set(ctx, "bob", []string{"admin"}, 0))

	require.NoError(t, svc.DeleteDomain(ctx, "tenantA"))

	allowed, err := svc.Enforce("alice", "data1", "read", "tenantA")
	require.NoError(t, err)
	assert.False(t, allowed)

	// The other tenant keeps its rules and cached roles.
	allowed, err = svc.Enforce("bob", "data1", "read", "tenantB")
	require.NoError(t, err)
	assert.True(t, allowed)

	aliceRoles, err := cache.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, aliceRoles)

	bobRoles, err := cache.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"admin"}, bobRoles)
}

func TestDeleteDomainRequiresName(t *testing.T) {
	svc, _ := setupService(t)
	assert.Error(t, svc.DeleteDomain(context.Background(), ""))
}

func TestImplicitRoles(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	// admin inherits viewer within tenantA.
	_, err := svc.AddRoleForUser(ctx, "admin", "viewer", "tenantA")
	require.NoError(t, err)
	_, err = svc.AddRoleForUser(ctx, "alice", "admin", "tenantA")
	require.NoError(t, err)

	roles, err := svc.GetImplicitRolesForUser(ctx, "alice", "tenantA")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"admin", "viewer"}, roles)

	_, err = svc.AddPolicy(ctx, "viewer", "data1", "read", "tenantA")
	require.NoError(t, err)

	allowed, err := svc.Enforce("alice", "data1", "read", "tenantA")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestUpdatePolicy(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.AddPolicy(ctx, "admin", "data1", "read", "tenantA")
	require.NoError(t, err)

	updated, err := svc.UpdatePolicy(ctx,
		[]string{"admin", "data1", "read", "tenantA"},
		[]string{"admin", "data1", "write", "tenantA"})
	require.NoError(t, err)
	assert.True(t, updated)

	policy, err := svc.GetPolicy(ctx)
	require.NoError(t, err)
	require.Len(t, policy, 1)
	assert.Equal(t, "write", policy[0][2])
}
