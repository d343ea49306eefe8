package model

import (
	"time"

	"gorm.io/gorm"
)

// Domain represents a tenant boundary. Every policy and role
// assignment is scoped to exactly one domain; deleting a domain purges
// its rules from the policy store.
type Domain struct {
	ID          uint64         `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string         `json:"name" gorm:"size:100;not null;uniqueIndex:uk_domain_name"`
	Description string         `json:"description" gorm:"size:255"`
	Status      int            `json:"status" gorm:"default:1"`
	CreatedAt   int64          `json:"created_at" gorm:"autoCreateTime:milli"`
	UpdatedAt   int64          `json:"updated_at" gorm:"autoUpdateTime:milli"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// DomainList contains a list of domains and pagination info.
type DomainList struct {
	TotalCount int64     `json:"totalCount"`
	Items      []*Domain `json:"items"`
}

// TableName returns the table name for GORM.
func (d *Domain) TableName() string {
	return "aegis_domain"
}

// BeforeCreate sets the CreatedAt and UpdatedAt fields.
func (d *Domain) BeforeCreate(tx *gorm.DB) (err error) {
	now := time.Now().UnixMilli()
	d.CreatedAt = now
	d.UpdatedAt = now
	return
}
