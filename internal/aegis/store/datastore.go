package store

import (
	"gorm.io/gorm"

	"github.com/kart-io/aegis/internal/aegis/model"
)

// datastore implements the Factory interface.
type datastore struct {
	db *gorm.DB
}

// NewFactory creates a storage factory on the given database handle.
func NewFactory(db *gorm.DB) Factory {
	return &datastore{db: db}
}

// Users returns the user store.
func (ds *datastore) Users() UserStore {
	return newUsers(ds.db)
}

// Domains returns the domain store.
func (ds *datastore) Domains() DomainStore {
	return newDomains(ds.db)
}

// AutoMigrate migrates the database schema.
func (ds *datastore) AutoMigrate() error {
	return ds.db.AutoMigrate(&model.User{}, &model.Domain{})
}

// Close closes the underlying database connection.
func (ds *datastore) Close() error {
	sqlDB, err := ds.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
