package holdings

import (
	"context"
	"errors"

	"portfolio-backend/internal/application/cascade"
	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/infrastructure/database"
	"portfolio-backend/internal/tenant"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service manages the holdings of one tenant at a time.
type Service struct {
	DB *gorm.DB
}

// CreateInput for a new holding. The owner always comes from the tenant,
// never from the input.
type CreateInput struct {
	AccountID uint  `json:"account_id"`
	AssetID   uint  `json:"asset_id"`
	Shares    int64 `json:"shares"`
}

// UpdateInput changes the share count and, optionally, the price of the
// held asset in the same transaction.
type UpdateInput struct {
	Shares       *int64           `json:"shares"`
	CurrentPrice *decimal.Decimal `json:"current_price"`
}

// Create inserts a holding for t. The account and the asset must both
// belong to t, otherwise ErrCrossTenantReference is returned and nothing
// is written.
func (s *Service) Create(ctx context.Context, t tenant.Tenant, in CreateInput) (*domain.Holding, error) {
	db, err := tenant.Scoped(ctx, s.DB, t)
	if err != nil {
		return nil, err
	}
	h := &domain.Holding{
		AccountID: in.AccountID,
		AssetID:   in.AssetID,
		Shares:    in.Shares,
		UserID:    t.UserID(),
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := cascade.CheckHoldingRefs(tx, t, h.AccountID, h.AssetID); err != nil {
			return err
		}
		return tx.Create(h).Error
	})
	if err != nil {
		return nil, database.TranslateError(err, "holdings")
	}
	log.Info().Uint("user_id", t.UserID()).Uint("holding_id", h.ID).
		Uint("account_id", h.AccountID).Uint("asset_id", h.AssetID).Int64("shares", h.Shares).
		Msg("holding created")
	return h, nil
}

// Get returns one holding of t.
func (s *Service) Get(ctx context.Context, t tenant.Tenant, id uint) (*domain.Holding, error) {
	db, err := tenant.Scoped(ctx, s.DB, t)
	if err != nil {
		return nil, err
	}
	return find(db, id)
}

// List returns the holdings of t, optionally restricted to one account.
func (s *Service) List(ctx context.Context, t tenant.Tenant, accountID *uint) ([]domain.Holding, error) {
	db, err := tenant.Scoped(ctx, s.DB, t)
	if err != nil {
		return nil, err
	}
	q := db.Order("id")
	if accountID != nil {
		q = q.Where("account_id = ?", *accountID)
	}
	var out []domain.Holding
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Update changes the share count of a holding of t and, when a price is
// given, the current price of its asset.
func (s *Service) Update(ctx context.Context, t tenant.Tenant, id uint, in UpdateInput) (*domain.Holding, error) {
	db, err := tenant.Scoped(ctx, s.DB, t)
	if err != nil {
		return nil, err
	}
	if in.CurrentPrice != nil {
		if err := domain.ValidatePrice(*in.CurrentPrice); err != nil {
			return nil, err
		}
	}
	var out *domain.Holding
	err = db.Transaction(func(tx *gorm.DB) error {
		h, err := find(tx, id)
		if err != nil {
			return err
		}
		if in.Shares != nil {
			if err := tx.Model(h).Update("shares", *in.Shares).Error; err != nil {
				return err
			}
			h.Shares = *in.Shares
		}
		if in.CurrentPrice != nil {
			res := tx.Model(&domain.Asset{}).Where("id = ?", h.AssetID).Update("current_price", *in.CurrentPrice)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return domain.ErrNotFound
			}
		}
		out = h
		return nil
	})
	if err != nil {
		return nil, database.TranslateError(err, "holdings")
	}
	return out, nil
}

// UpdateShares sets the share count of a holding of t.
func (s *Service) UpdateShares(ctx context.Context, t tenant.Tenant, id uint, shares int64) (*domain.Holding, error) {
	return s.Update(ctx, t, id, UpdateInput{Shares: &shares})
}

// Delete removes a holding of t.
func (s *Service) Delete(ctx context.Context, t tenant.Tenant, id uint) error {
	db, err := tenant.Scoped(ctx, s.DB, t)
	if err != nil {
		return err
	}
	res := db.Where("id = ?", id).Delete(&domain.Holding{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	log.Info().Uint("user_id", t.UserID()).Uint("holding_id", id).Msg("holding deleted")
	return nil
}

func find(db *gorm.DB, id uint) (*domain.Holding, error) {
	var h domain.Holding
	if err := db.Where("id = ?", id).First(&h).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &h, nil
}
