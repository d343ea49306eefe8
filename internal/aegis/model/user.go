// Package model defines the database models for the Aegis control
// plane.
package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account that can authenticate against Aegis.
// Authorization is decided by the policy engine, not by anything stored
// here; the user row only carries credentials and the home domain.
type User struct {
	ID        uint64         `json:"id" gorm:"primaryKey;autoIncrement"`
	Username  string         `json:"username" gorm:"size:64;not null;uniqueIndex:uk_username"`
	Email     *string        `json:"email" gorm:"size:128;uniqueIndex:uk_email"`
	Password  string         `json:"-" gorm:"size:255;not null"`
	Domain    string         `json:"domain" gorm:"size:100;not null;index:idx_domain"`
	Status    int            `json:"status" gorm:"default:1;index:idx_status"`
	CreatedAt int64          `json:"created_at" gorm:"autoCreateTime:milli"`
	UpdatedAt int64          `json:"updated_at" gorm:"autoUpdateTime:milli"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// User statuses.
const (
	UserStatusDisabled = 0
	UserStatusEnabled  = 1
)

// UserList contains a list of users and pagination info.
type UserList struct {
	TotalCount int64   `json:"totalCount"`
	Items      []*User `json:"items"`
}

// TableName returns the table name for GORM.
func (u *User) TableName() string {
	return "aegis_user"
}

// BeforeCreate sets the CreatedAt and UpdatedAt fields.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	now := time.Now().UnixMilli()
	u.CreatedAt = now
	u.UpdatedAt = now
	return
}

// BeforeUpdate sets the UpdatedAt field.
func (u *User) BeforeUpdate(tx *gorm.DB) (err error) {
	u.UpdatedAt = time.Now().UnixMilli()
	return
}
