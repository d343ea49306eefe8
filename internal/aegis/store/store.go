// Package store provides the persistence layer for Aegis control-plane
// entities. Policy rules live in their own store under pkg/authz.
package store

import (
	"context"

	"github.com/kart-io/aegis/internal/aegis/model"
)

// Factory defines the factory interface for creating stores.
type Factory interface {
	Users() UserStore
	Domains() DomainStore
	AutoMigrate() error
	Close() error
}

// UserStore defines the user storage interface.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, username string) error
	Get(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context, offset, limit int) (int64, []*model.User, error)
}

// DomainStore defines the tenant domain storage interface.
type DomainStore interface {
	Create(ctx context.Context, domain *model.Domain) error
	Delete(ctx context.Context, name string) error
	Get(ctx context.Context, name string) (*model.Domain, error)
	List(ctx context.Context, offset, limit int) (int64, []*model.Domain, error)
}
