package database

import (
	"fmt"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/tenant"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open opens a GORM DB for the given driver, migrates the schema and
// installs the tenant plugin. For Postgres behind a pooler,
// PreferSimpleProtocol avoids 42P05 ("prepared statement already exists").
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", DriverPostgres:
		dialector = postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		})
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		if err := configureSQLite(db); err != nil {
			return nil, err
		}
	}
	if err := Prepare(db); err != nil {
		return nil, err
	}
	return db, nil
}

// configureSQLite pins a single connection (one writer; an in-memory
// database lives and dies with its connection) and turns on FK checks.
func configureSQLite(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)
	return db.Exec("PRAGMA foreign_keys = ON").Error
}

// Prepare migrates the schema and then registers the tenant plugin.
// The plugin must come second: the migrator inspects tenant tables
// without a tenant.
func Prepare(db *gorm.DB) error {
	if err := AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return db.Use(&tenant.Plugin{})
}

// AutoMigrate creates users, accounts, assets and holdings with their
// unique and composite foreign key constraints.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.User{}, &domain.Account{}, &domain.Asset{}, &domain.Holding{})
}
