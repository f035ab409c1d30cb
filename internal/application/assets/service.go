package assets

import (
	"context"
	"errors"
	"strings"

	"portfolio-backend/internal/application/cascade"
	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/infrastructure/database"
	"portfolio-backend/internal/tenant"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service manages the assets of one tenant at a time.
type Service struct {
	DB *gorm.DB
}

// CreateInput for a new asset. A missing price defaults to 0.
type CreateInput struct {
	Ticker       string           `json:"ticker"`
	Name         string           `json:"name"`
	Category     string           `json:"category"`
	CurrentPrice *decimal.Decimal `json:"current_price"`
}

type UpdateInput struct {
	Ticker       *string          `json:"ticker"`
	Name         *string          `json:"name"`
	Category     *string          `json:"category"`
	CurrentPrice *decimal.Decimal `json:"current_price"`
}

// Create inserts an asset owned by t.
func (s *Service) Create(ctx context.Context, t tenant.Tenant, in CreateInput) (*domain.Asset, error) {
	db, err := tenant.Scoped(ctx, s.DB, t)
	if err != nil {
		return nil, err
	}
	price := decimal.Zero
	if in.CurrentPrice != nil {
		price = *in.CurrentPrice
	}
	a := &domain.Asset{
		Ticker:       strings.ToUpper(strings.TrimSpace(in.Ticker)),
		Name:         strings.TrimSpace(in.Name),
		Category:     strings.TrimSpace(in.Category),
		CurrentPrice: price,
		UserID:       t.UserID(),
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := db.Create(a).Error; err != nil {
		return nil, database.TranslateError(err, "assets")
	}
	log.Info().Uint("user_id", t.UserID()).Uint("asset_id", a.ID).Str("ticker", a.Ticker).Msg("asset created")
	return a, nil
}

// Get returns one asset of t.
func (s *Service) Get(ctx context.Context, t tenant.Tenant, id uint) (*domain.Asset, error) {
	db, err := tenant.Scoped(ctx, s.DB, t)
	if err != nil {
		return nil, err
	}
	return find(db, id)
}

// List returns the assets of t ordered by id.
func (s *Service) List(ctx context.Context, t tenant.Tenant) ([]domain.Asset, error) {
	db, err := tenant.Scoped(ctx, s.DB, t)
	if err != nil {
		return nil, err
	}
	var out []domain.Asset
	if err := db.Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Update changes descriptive fields and/or the price of an asset of t.
func (s *Service) Update(ctx context.Context, t tenant.Tenant, id uint, in UpdateInput) (*domain.Asset, error) {
	db, err := tenant.Scoped(ctx, s.DB, t)
	if err != nil {
		return nil, err
	}
	var out *domain.Asset
	err = db.Transaction(func(tx *gorm.DB) error {
		a, err := find(tx, id)
		if err != nil {
			return err
		}
		upd := map[string]interface{}{}
		if in.Ticker != nil {
			a.Ticker = strings.ToUpper(strings.TrimSpace(*in.Ticker))
			upd["ticker"] = a.Ticker
		}
		if in.Name != nil {
			a.Name = strings.TrimSpace(*in.Name)
			upd["name"] = a.Name
		}
		if in.Category != nil {
			a.Category = strings.TrimSpace(*in.Category)
			upd["category"] = a.Category
		}
		if in.CurrentPrice != nil {
			a.CurrentPrice = *in.CurrentPrice
			upd["current_price"] = a.CurrentPrice
		}
		if err := a.Validate(); err != nil {
			return err
		}
		if len(upd) > 0 {
			if err := tx.Model(a).Updates(upd).Error; err != nil {
				return err
			}
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, database.TranslateError(err, "assets")
	}
	return out, nil
}

// UpdatePrice overwrites the current price of an asset of t. Concurrent
// updates are last-writer-wins.
func (s *Service) UpdatePrice(ctx context.Context, t tenant.Tenant, id uint, price decimal.Decimal) (*domain.Asset, error) {
	a, err := s.Update(ctx, t, id, UpdateInput{CurrentPrice: &price})
	if err != nil {
		return nil, err
	}
	log.Info().Uint("user_id", t.UserID()).Uint("asset_id", id).Str("price", price.StringFixed(2)).Msg("asset price updated")
	return a, nil
}

// Delete removes an asset of t and every holding of it.
func (s *Service) Delete(ctx context.Context, t tenant.Tenant, id uint) error {
	db, err := tenant.Scoped(ctx, s.DB, t)
	if err != nil {
		return err
	}
	if err := db.Transaction(func(tx *gorm.DB) error {
		return cascade.DeleteAsset(tx, t, id)
	}); err != nil {
		return err
	}
	log.Info().Uint("user_id", t.UserID()).Uint("asset_id", id).Msg("asset deleted")
	return nil
}

func find(db *gorm.DB, id uint) (*domain.Asset, error) {
	var a domain.Asset
	if err := db.Where("id = ?", id).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
