// Package cascade keeps accounts, assets and holdings consistent under one
// user: dependent rows are removed explicitly inside the caller's
// transaction and a holding may only reference rows of its own user.
//
// Every function expects tx to be a transaction bound to t (tenant.Scoped),
// so the tenant plugin scopes each statement as well; the explicit user_id
// filters here are a second, independent check.
package cascade

import (
	"errors"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/tenant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeleteUser removes every holding, asset and account of t and then the
// user row itself.
func DeleteUser(tx *gorm.DB, t tenant.Tenant) error {
	if err := t.Require(); err != nil {
		return err
	}
	uid := t.UserID()

	var u domain.User
	if err := tx.Where("id = ?", uid).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return err
	}
	if err := tx.Where("user_id = ?", uid).Delete(&domain.Holding{}).Error; err != nil {
		return err
	}
	if err := tx.Where("user_id = ?", uid).Delete(&domain.Asset{}).Error; err != nil {
		return err
	}
	if err := tx.Where("user_id = ?", uid).Delete(&domain.Account{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", uid).Delete(&domain.User{}).Error
}

// DeleteAccount removes the account and the holdings in it.
func DeleteAccount(tx *gorm.DB, t tenant.Tenant, accountID uint) error {
	if err := t.Require(); err != nil {
		return err
	}
	if _, err := findAccount(tx, t, accountID, false); err != nil {
		return err
	}
	if err := tx.Where("account_id = ? AND user_id = ?", accountID, t.UserID()).Delete(&domain.Holding{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ? AND user_id = ?", accountID, t.UserID()).Delete(&domain.Account{}).Error
}

// DeleteAsset removes the asset and every holding of it.
func DeleteAsset(tx *gorm.DB, t tenant.Tenant, assetID uint) error {
	if err := t.Require(); err != nil {
		return err
	}
	if _, err := findAsset(tx, t, assetID, false); err != nil {
		return err
	}
	if err := tx.Where("asset_id = ? AND user_id = ?", assetID, t.UserID()).Delete(&domain.Holding{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ? AND user_id = ?", assetID, t.UserID()).Delete(&domain.Asset{}).Error
}

// CheckHoldingRefs verifies that the account and the asset a holding
// points at both belong to t. Either missing or foreign reference fails
// with ErrCrossTenantReference. On Postgres the referenced rows are
// share-locked until the transaction ends.
func CheckHoldingRefs(tx *gorm.DB, t tenant.Tenant, accountID, assetID uint) error {
	if err := t.Require(); err != nil {
		return err
	}
	lock := tx.Dialector.Name() == "postgres"
	if _, err := findAccount(tx, t, accountID, lock); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrCrossTenantReference
		}
		return err
	}
	if _, err := findAsset(tx, t, assetID, lock); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrCrossTenantReference
		}
		return err
	}
	return nil
}

func findAccount(tx *gorm.DB, t tenant.Tenant, id uint, lock bool) (*domain.Account, error) {
	var a domain.Account
	q := tx.Where("id = ? AND user_id = ?", id, t.UserID())
	if lock {
		q = q.Clauses(clause.Locking{Strength: "SHARE"})
	}
	if err := q.First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func findAsset(tx *gorm.DB, t tenant.Tenant, id uint, lock bool) (*domain.Asset, error) {
	var a domain.Asset
	q := tx.Where("id = ? AND user_id = ?", id, t.UserID())
	if lock {
		q = q.Clauses(clause.Locking{Strength: "SHARE"})
	}
	if err := q.First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
