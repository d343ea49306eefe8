package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kart-io/aegis/internal/aegis/model"
	apierr "github.com/kart-io/aegis/pkg/utils/errors"
)

type users struct {
	db *gorm.DB
}

func newUsers(db *gorm.DB) *users {
	return &users{db}
}

// Create creates a new user.
func (u *users) Create(ctx context.Context, user *model.User) error {
	if err := u.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apierr.ErrAlreadyExists.WithCause(err)
		}
		return apierr.ErrDatabase.WithCause(err)
	}
	return nil
}

// Update updates an existing user.
func (u *users) Update(ctx context.Context, user *model.User) error {
	if err := u.db.WithContext(ctx).Save(user).Error; err != nil {
		return apierr.ErrDatabase.WithCause(err)
	}
	return nil
}

// Delete deletes a user by username.
func (u *users) Delete(ctx context.Context, username string) error {
	if err := u.db.WithContext(ctx).Where("username = ?", username).Delete(&model.User{}).Error; err != nil {
		return apierr.ErrDatabase.WithCause(err)
	}
	return nil
}

// Get retrieves a user by username.
func (u *users) Get(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := u.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.ErrNotFound.WithCause(err)
		}
		return nil, apierr.ErrDatabase.WithCause(err)
	}
	return &user, nil
}

// List lists users with pagination.
func (u *users) List(ctx context.Context, offset, limit int) (int64, []*model.User, error) {
	var count int64
	var list []*model.User

	if err := u.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error; err != nil {
		return 0, nil, apierr.ErrDatabase.WithCause(err)
	}
	if err := u.db.WithContext(ctx).Offset(offset).Limit(limit).Order("id").Find(&list).Error; err != nil {
		return 0, nil, apierr.ErrDatabase.WithCause(err)
	}
	return count, list, nil
}
