// Package biz implements the business logic of the Aegis control
// plane on top of the store and the policy engine.
package biz

import (
	"context"

	"github.com/kart-io/logger"
	"golang.org/x/crypto/bcrypt"

	"github.com/kart-io/aegis/internal/aegis/model"
	"github.com/kart-io/aegis/internal/aegis/store"
	"github.com/kart-io/aegis/pkg/authz/rbac"
	"github.com/kart-io/aegis/pkg/authz/rolecache"
	"github.com/kart-io/aegis/pkg/security/auth/jwt"
	"github.com/kart-io/aegis/pkg/utils/errors"
)

// LoginRequest carries user credentials.
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=6,max=64"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token     string   `json:"token"`
	ExpiresAt int64    `json:"expires_at"`
	Roles     []string `json:"roles"`
}

// RegisterRequest carries a new account.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8,max=64"`
	Email    string `json:"email" binding:"omitempty,email"`
	Domain   string `json:"domain" binding:"required,min=1,max=100"`
}

// AuthService handles authentication business logic. On login it
// resolves the user's roles from the policy engine and seeds the role
// cache with a TTL matching the token lifetime, so the guard never has
// to walk the role graph per request.
type AuthService struct {
	tokens *jwt.Manager
	store  store.Factory
	rbac   *rbac.Service
	roles  rolecache.Cache
}

// NewAuthService creates a new AuthService.
func NewAuthService(tokens *jwt.Manager, factory store.Factory, rbacSvc *rbac.Service, roles rolecache.Cache) *AuthService {
	return &AuthService{
		tokens: tokens,
		store:  factory,
		rbac:   rbacSvc,
		roles:  roles,
	}
}

// Login authenticates a user and returns a token. Failed lookups and
// bad passwords produce the same error so usernames cannot be probed.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	user, err := s.store.Users().Get(ctx, req.Username)
	if err != nil {
		return nil, errors.ErrUnauthorized.WithMessage("invalid credentials")
	}
	if user.Status != model.UserStatusEnabled {
		return nil, errors.ErrUnauthorized.WithMessage("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, errors.ErrUnauthorized.WithMessage("invalid credentials")
	}

	token, expiresAt, err := s.tokens.IssueToken(user.Username, user.Domain)
	if err != nil {
		return nil, err
	}

	roles, err := s.rbac.GetImplicitRolesForUser(ctx, user.Username, user.Domain)
	if err != nil {
		return nil, errors.ErrInternal.WithCause(err)
	}
	if err := s.roles.Set(ctx, user.Username, roles, s.tokens.Expired()); err != nil {
		// The guard fails closed on a cold cache entry, so a seeding
		// failure turns into denied requests rather than stale grants.
		logger.Warnw("role cache seeding failed", "subject", user.Username, "error", err)
	}

	return &LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.UnixMilli(),
		Roles:     roles,
	}, nil
}

// Logout drops the cached roles for the subject. The token itself stays
// valid until expiry, but every authorization check after logout sees an
// empty role set and denies.
func (s *AuthService) Logout(ctx context.Context, subject string) error {
	return s.roles.Invalidate(ctx, subject)
}

// Register creates a new account with a hashed password.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*model.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.ErrInternal.WithCause(err)
	}

	user := &model.User{
		Username: req.Username,
		Password: string(hashed),
		Domain:   req.Domain,
		Status:   model.UserStatusEnabled,
	}
	if req.Email != "" {
		user.Email = &req.Email
	}

	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
