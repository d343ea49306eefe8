// Package db creates gorm database handles for the policy store.
package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	options "github.com/kart-io/aegis/pkg/options/db"
)

// New opens a database handle per the options and configures the
// connection pool. TranslateError is enabled so duplicate key
// violations surface as gorm.ErrDuplicatedKey regardless of driver.
func New(opts *options.Options) (*gorm.DB, error) {
	dialector, err := open(opts)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(opts.MaxIdleConnections)
	sqlDB.SetMaxOpenConns(opts.MaxOpenConnections)
	sqlDB.SetConnMaxLifetime(opts.MaxConnectionLifeTime)

	return db, nil
}

func open(opts *options.Options) (gorm.Dialector, error) {
	switch opts.Driver {
	case options.DriverMySQL:
		return mysql.Open(opts.DSN()), nil
	case options.DriverPostgres:
		return postgres.Open(opts.DSN()), nil
	case options.DriverSQLite:
		return sqlite.Open(opts.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported db driver: %q", opts.Driver)
	}
}
