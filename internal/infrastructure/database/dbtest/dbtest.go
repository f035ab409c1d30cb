// Package dbtest opens throwaway in-memory databases for tests.
package dbtest

import (
	"context"
	"testing"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/infrastructure/database"
	"portfolio-backend/internal/tenant"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Open returns a migrated in-memory SQLite database with the tenant plugin.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// User inserts a user row and returns its tenant.
func User(t *testing.T, db *gorm.DB, username string) tenant.Tenant {
	t.Helper()
	u := &domain.User{Username: username, PasswordHash: "x"}
	require.NoError(t, db.Create(u).Error)
	return tenant.New(u.ID)
}

// Account inserts an account owned by tn.
func Account(t *testing.T, db *gorm.DB, tn tenant.Tenant, name string) *domain.Account {
	t.Helper()
	a := &domain.Account{AccountName: name, AccountType: "brokerage", UserID: tn.UserID()}
	require.NoError(t, db.WithContext(tenant.Bind(context.Background(), tn)).Create(a).Error)
	return a
}

// Asset inserts an asset owned by tn.
func Asset(t *testing.T, db *gorm.DB, tn tenant.Tenant, ticker, price string) *domain.Asset {
	t.Helper()
	a := &domain.Asset{
		Ticker:       ticker,
		Name:         ticker + " Inc",
		Category:     "stock",
		CurrentPrice: decimal.RequireFromString(price),
		UserID:       tn.UserID(),
	}
	require.NoError(t, db.WithContext(tenant.Bind(context.Background(), tn)).Create(a).Error)
	return a
}

// Holding inserts a holding owned by tn.
func Holding(t *testing.T, db *gorm.DB, tn tenant.Tenant, accountID, assetID uint, shares int64) *domain.Holding {
	t.Helper()
	h := &domain.Holding{AccountID: accountID, AssetID: assetID, Shares: shares, UserID: tn.UserID()}
	require.NoError(t, db.WithContext(tenant.Bind(context.Background(), tn)).Create(h).Error)
	return h
}

// Count returns the number of rows in table owned by tn.
func Count(t *testing.T, db *gorm.DB, tn tenant.Tenant, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.WithContext(tenant.Bind(context.Background(), tn)).Model(model).Count(&n).Error)
	return n
}
