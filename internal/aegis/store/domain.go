package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kart-io/aegis/internal/aegis/model"
	apierr "github.com/kart-io/aegis/pkg/utils/errors"
)

type domains struct {
	db *gorm.DB
}

func newDomains(db *gorm.DB) *domains {
	return &domains{db}
}

// Create creates a new domain.
func (d *domains) Create(ctx context.Context, domain *model.Domain) error {
	if err := d.db.WithContext(ctx).Create(domain).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apierr.ErrAlreadyExists.WithCause(err)
		}
		return apierr.ErrDatabase.WithCause(err)
	}
	return nil
}

// Delete deletes a domain by name.
func (d *domains) Delete(ctx context.Context, name string) error {
	if err := d.db.WithContext(ctx).Where("name = ?", name).Delete(&model.Domain{}).Error; err != nil {
		return apierr.ErrDatabase.WithCause(err)
	}
	return nil
}

// Get retrieves a domain by name.
func (d *domains) Get(ctx context.Context, name string) (*model.Domain, error) {
	var domain model.Domain
	if err := d.db.WithContext(ctx).Where("name = ?", name).First(&domain).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.ErrNotFound.WithCause(err)
		}
		return nil, apierr.ErrDatabase.WithCause(err)
	}
	return &domain, nil
}

// List lists domains with pagination.
func (d *domains) List(ctx context.Context, offset, limit int) (int64, []*model.Domain, error) {
	var count int64
	var list []*model.Domain

	if err := d.db.WithContext(ctx).Model(&model.Domain{}).Count(&count).Error; err != nil {
		return 0, nil, apierr.ErrDatabase.WithCause(err)
	}
	if err := d.db.WithContext(ctx).Offset(offset).Limit(limit).Order("id").Find(&list).Error; err != nil {
		return 0, nil, apierr.ErrDatabase.WithCause(err)
	}
	return count, list, nil
}
