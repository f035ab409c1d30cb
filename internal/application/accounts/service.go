package accounts

import (
	"context"
	"errors"
	"strings"

	"portfolio-backend/internal/application/cascade"
	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/infrastructure/database"
	"portfolio-backend/internal/tenant"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Service manages the accounts of one tenant at a time.
type Service struct {
	DB *gorm.DB
}

type CreateInput struct {
	AccountName string `json:"account_name"`
	AccountType string `json:"account_type"`
}

// UpdateInput holds optional new values; nil fields are left unchanged.
type UpdateInput struct {
	AccountName *string `json:"account_name"`
	AccountType *string `json:"account_type"`
}

// Create inserts an account owned by t.
func (s *Service) Create(ctx context.Context, t tenant.Tenant, in CreateInput) (*domain.Account, error) {
	db, err := tenant.Scoped(ctx, s.DB, t)
	if err != nil {
		return nil, err
	}
	acc := &domain.Account{
		AccountName: strings.TrimSpace(in.AccountName),
		AccountType: strings.TrimSpace(in.AccountType),
		UserID:      t.UserID(),
	}
	if err := acc.Validate(); err != nil {
		return nil, err
	}
	if err := db.Create(acc).Error; err != nil {
		return nil, database.TranslateError(err, "accounts")
	}
	log.Info().Uint("user_id", t.UserID()).Uint("account_id", acc.ID).Msg("account created")
	return acc, nil
}

// Get returns one account of t. Accounts of other users are reported as
// ErrNotFound.
func (s *Service) Get(ctx context.Context, t tenant.Tenant, id uint) (*domain.Account, error) {
	db, err := tenant.Scoped(ctx, s.DB, t)
	if err != nil {
		return nil, err
	}
	return find(db, id)
}

// List returns the accounts of t ordered by id.
func (s *Service) List(ctx context.Context, t tenant.Tenant) ([]domain.Account, error) {
	db, err := tenant.Scoped(ctx, s.DB, t)
	if err != nil {
		return nil, err
	}
	var out []domain.Account
	if err := db.Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Update changes the name and/or type of an account of t.
func (s *Service) Update(ctx context.Context, t tenant.Tenant, id uint, in UpdateInput) (*domain.Account, error) {
	db, err := tenant.Scoped(ctx, s.DB, t)
	if err != nil {
		return nil, err
	}
	var acc *domain.Account
	err = db.Transaction(func(tx *gorm.DB) error {
		cur, err := find(tx, id)
		if err != nil {
			return err
		}
		upd := map[string]interface{}{}
		if in.AccountName != nil {
			cur.AccountName = strings.TrimSpace(*in.AccountName)
			upd["account_name"] = cur.AccountName
		}
		if in.AccountType != nil {
			cur.AccountType = strings.TrimSpace(*in.AccountType)
			upd["account_type"] = cur.AccountType
		}
		if err := cur.Validate(); err != nil {
			return err
		}
		if len(upd) > 0 {
			if err := tx.Model(cur).Updates(upd).Error; err != nil {
				return err
			}
		}
		acc = cur
		return nil
	})
	if err != nil {
		return nil, database.TranslateError(err, "accounts")
	}
	return acc, nil
}

// Delete removes an account of t together with its holdings.
func (s *Service) Delete(ctx context.Context, t tenant.Tenant, id uint) error {
	db, err := tenant.Scoped(ctx, s.DB, t)
	if err != nil {
		return err
	}
	if err := db.Transaction(func(tx *gorm.DB) error {
		return cascade.DeleteAccount(tx, t, id)
	}); err != nil {
		return err
	}
	log.Info().Uint("user_id", t.UserID()).Uint("account_id", id).Msg("account deleted")
	return nil
}

func find(db *gorm.DB, id uint) (*domain.Account, error) {
	var acc domain.Account
	if err := db.Where("id = ?", id).First(&acc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &acc, nil
}
