package biz

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kart-io/aegis/internal/aegis/model"
	"github.com/kart-io/aegis/internal/aegis/store"
	"github.com/kart-io/aegis/pkg/authz"
	"github.com/kart-io/aegis/pkg/authz/rbac"
	"github.com/kart-io/aegis/pkg/authz/rolecache"
	"github.com/kart-io/aegis/pkg/authz/store/gormstore"
	"github.com/kart-io/aegis/pkg/security/auth/jwt"
	"github.com/kart-io/aegis/pkg/utils/errors"
)

const testJWTKey = "0123456789abcdef0123456789abcdef"

func setupAuthService(t *testing.T) (*AuthService, *rbac.Service, *rolecache.MemoryCache) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	factory := store.NewFactory(db)
	require.NoError(t, factory.AutoMigrate())

	repo, err := gormstore.NewRepository(db)
	require.NoError(t, err)
	enforcer, err := authz.NewEnforcer(&authz.EnforcerConfig{Adapter: authz.NewAdapter(repo)})
	require.NoError(t, err)

	cache := rolecache.NewMemoryCache()
	rbacSvc := rbac.NewService(enforcer, rbac.WithRoleCache(cache))
	tokens := jwt.NewManager(testJWTKey, "aegis-test", time.Hour)

	return NewAuthService(tokens, factory, rbacSvc, cache), rbacSvc, cache
}

func registerUser(t *testing.T, svc *AuthService) *model.User {
	t.Helper()
	user, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "alice",
		Password: "s3cret-pass",
		Domain:   "tenantA",
	})
	require.NoError(t, err)
	return user
}

func TestLoginIssuesTokenAndSeedsRoleCache(t *testing.T) {
	svc, rbacSvc, cache := setupAuthService(t)
	ctx := context.Background()

	registerUser(t, svc)
	_, err := rbacSvc.AddRoleForUser(ctx, "alice", "admin", "tenantA")
	require.NoError(t, err)

	resp, err := svc.Login(ctx, &LoginRequest{Username: "alice", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, []string{"admin"}, resp.Roles)

	cached, err := cache.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"admin"}, cached)
}

func TestLoginTokenCarriesSubjectAndDomain(t *testing.T) {
	svc, _, _ := setupAuthService(t)
	ctx := context.Background()

	registerUser(t, svc)

	resp, err := svc.Login(ctx, &LoginRequest{Username: "alice", Password: "s3cret-pass"})
	require.NoError(t, err)

	tokens := jwt.NewManager(testJWTKey, "aegis-test", time.Hour)
	claims, err := tokens.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "tenantA", claims.Domain)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := setupAuthService(t)
	ctx := context.Background()

	registerUser(t, svc)

	_, err := svc.Login(ctx, &LoginRequest{Username: "alice", Password: "wrong-pass"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnauthorized)
}

func TestLoginUnknownUserSameError(t *testing.T) {
	svc, _, _ := setupAuthService(t)

	_, err := svc.Login(context.Background(), &LoginRequest{Username: "ghost", Password: "whatever"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnauthorized)
}

func TestLoginDisabledUser(t *testing.T) {
	svc, _, _ := setupAuthService(t)
	ctx := context.Background()

	user := registerUser(t, svc)
	user.Status = model.UserStatusDisabled
	require.NoError(t, svc.store.Users().Update(ctx, user))

	_, err := svc.Login(ctx, &LoginRequest{Username: "alice", Password: "s3cret-pass"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnauthorized)
}

func TestLogoutDropsCachedRoles(t *testing.T) {
	svc, rbacSvc, cache := setupAuthService(t)
	ctx := context.Background()

	registerUser(t, svc)
	_, err := rbacSvc.AddRoleForUser(ctx, "alice", "admin", "tenantA")
	require.NoError(t, err)

	_, err = svc.Login(ctx, &LoginRequest{Username: "alice", Password: "s3cret-pass"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, "alice"))

	cached, err := cache.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, cached)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _, _ := setupAuthService(t)
	ctx := context.Background()

	registerUser(t, svc)

	_, err := svc.Register(ctx, &RegisterRequest{
		Username: "alice",
		Password: "other-pass1",
		Domain:   "tenantB",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrAlreadyExists)
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, _, _ := setupAuthService(t)
	user := registerUser(t, svc)
	assert.NotEqual(t, "s3cret-pass", user.Password)
	assert.NotEmpty(t, user.Password)
}
