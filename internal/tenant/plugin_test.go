package tenant_test

import (
	"context"
	"testing"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/infrastructure/database/dbtest"
	"portfolio-backend/internal/tenant"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func as(db *gorm.DB, t tenant.Tenant) *gorm.DB {
	return db.WithContext(tenant.Bind(context.Background(), t))
}

func TestPlugin_QueryWithoutTenant(t *testing.T) {
	db := dbtest.Open(t)
	alice := dbtest.User(t, db, "alice")
	dbtest.Account(t, db, alice, "Brokerage")

	var accounts []domain.Account
	err := db.Find(&accounts).Error
	assert.ErrorIs(t, err, domain.ErrNoTenantContext)

	var n int64
	err = db.Model(&domain.Holding{}).Count(&n).Error
	assert.ErrorIs(t, err, domain.ErrNoTenantContext)
}

func TestPlugin_UsersTableIsNotScoped(t *testing.T) {
	db := dbtest.Open(t)
	dbtest.User(t, db, "alice")
	dbtest.User(t, db, "bob")

	var n int64
	require.NoError(t, db.Model(&domain.User{}).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}

func TestPlugin_ScopesReads(t *testing.T) {
	db := dbtest.Open(t)
	alice := dbtest.User(t, db, "alice")
	bob := dbtest.User(t, db, "bob")
	a1 := dbtest.Account(t, db, alice, "Alice IRA")
	dbtest.Account(t, db, bob, "Bob IRA")

	var accounts []domain.Account
	require.NoError(t, as(db, alice).Find(&accounts).Error)
	require.Len(t, accounts, 1)
	assert.Equal(t, a1.ID, accounts[0].ID)

	// another user's id is invisible
	var acc domain.Account
	err := as(db, bob).Where("id = ?", a1.ID).First(&acc).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPlugin_OrConditionCannotEscape(t *testing.T) {
	db := dbtest.Open(t)
	alice := dbtest.User(t, db, "alice")
	bob := dbtest.User(t, db, "bob")
	dbtest.Account(t, db, alice, "Alice IRA")
	dbtest.Account(t, db, bob, "Bob IRA")

	var accounts []domain.Account
	require.NoError(t, as(db, bob).Where("1 = 1").Or("1 = 1").Find(&accounts).Error)
	require.Len(t, accounts, 1)
	assert.Equal(t, bob.UserID(), accounts[0].UserID)
}

func TestPlugin_CreateForOtherUserRejected(t *testing.T) {
	db := dbtest.Open(t)
	alice := dbtest.User(t, db, "alice")
	bob := dbtest.User(t, db, "bob")

	acc := &domain.Account{AccountName: "Sneaky", AccountType: "brokerage", UserID: alice.UserID()}
	err := as(db, bob).Create(acc).Error
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, int64(0), dbtest.Count(t, db, alice, &domain.Account{}))

	batch := []domain.Asset{
		{Ticker: "A", Name: "A", Category: "stock", CurrentPrice: decimal.NewFromInt(1), UserID: bob.UserID()},
		{Ticker: "B", Name: "B", Category: "stock", CurrentPrice: decimal.NewFromInt(1), UserID: alice.UserID()},
	}
	err = as(db, bob).Create(&batch).Error
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, int64(0), dbtest.Count(t, db, bob, &domain.Asset{}))
}

func TestPlugin_UpdateScopedAndOwnerImmutable(t *testing.T) {
	db := dbtest.Open(t)
	alice := dbtest.User(t, db, "alice")
	bob := dbtest.User(t, db, "bob")
	acc := dbtest.Account(t, db, alice, "Alice IRA")

	res := as(db, bob).Model(&domain.Account{}).Where("id = ?", acc.ID).Update("account_name", "pwned")
	require.NoError(t, res.Error)
	assert.Equal(t, int64(0), res.RowsAffected)

	err := as(db, alice).Model(&domain.Account{}).Where("id = ?", acc.ID).Update("user_id", bob.UserID()).Error
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var got domain.Account
	require.NoError(t, as(db, alice).Where("id = ?", acc.ID).First(&got).Error)
	assert.Equal(t, "Alice IRA", got.AccountName)
	assert.Equal(t, alice.UserID(), got.UserID)
}

func TestPlugin_OwnerCannotMoveByFieldName(t *testing.T) {
	db := dbtest.Open(t)
	alice := dbtest.User(t, db, "alice")
	bob := dbtest.User(t, db, "bob")
	acc := dbtest.Account(t, db, alice, "Alice IRA")
	dbtest.Asset(t, db, alice, "VTI", "20.00")

	err := as(db, alice).Model(acc).Updates(map[string]interface{}{"UserID": bob.UserID()}).Error
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = as(db, alice).Model(&domain.Asset{}).Where("1 = 1").Update("UserID", bob.UserID()).Error
	assert.ErrorIs(t, err, domain.ErrNotFound)

	type ownerPatch struct {
		UserID uint
	}
	err = as(db, alice).Model(acc).Updates(ownerPatch{UserID: bob.UserID()}).Error
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = as(db, alice).Model(acc).Update("user_id", gorm.Expr("user_id + 1")).Error
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, int64(1), dbtest.Count(t, db, alice, &domain.Account{}))
	assert.Equal(t, int64(1), dbtest.Count(t, db, alice, &domain.Asset{}))
	assert.Equal(t, int64(0), dbtest.Count(t, db, bob, &domain.Account{}))
	assert.Equal(t, int64(0), dbtest.Count(t, db, bob, &domain.Asset{}))
}

func TestPlugin_RawSQLNeedsTenant(t *testing.T) {
	db := dbtest.Open(t)
	alice := dbtest.User(t, db, "alice")
	dbtest.Account(t, db, alice, "Alice IRA")

	err := db.Exec("DELETE FROM accounts").Error
	assert.ErrorIs(t, err, domain.ErrNoTenantContext)

	var n int64
	err = db.Raw("SELECT count(*) FROM Holdings").Scan(&n).Error
	assert.ErrorIs(t, err, domain.ErrNoTenantContext)

	_, err = db.Raw("SELECT id FROM assets").Rows()
	assert.ErrorIs(t, err, domain.ErrNoTenantContext)

	assert.Equal(t, int64(1), dbtest.Count(t, db, alice, &domain.Account{}))

	// tables outside the tenant set are untouched
	require.NoError(t, db.Raw("SELECT count(*) FROM users").Scan(&n).Error)
	assert.Equal(t, int64(1), n)

	require.NoError(t, as(db, alice).Raw("SELECT count(*) FROM accounts").Scan(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestPlugin_DeleteScoped(t *testing.T) {
	db := dbtest.Open(t)
	alice := dbtest.User(t, db, "alice")
	bob := dbtest.User(t, db, "bob")
	acc := dbtest.Account(t, db, alice, "Alice IRA")

	res := as(db, bob).Where("id = ?", acc.ID).Delete(&domain.Account{})
	require.NoError(t, res.Error)
	assert.Equal(t, int64(0), res.RowsAffected)
	assert.Equal(t, int64(1), dbtest.Count(t, db, alice, &domain.Account{}))

	err := db.Where("id = ?", acc.ID).Delete(&domain.Account{}).Error
	assert.ErrorIs(t, err, domain.ErrNoTenantContext)
}
