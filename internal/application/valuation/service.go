// Package valuation derives the base_holdings view: market value and
// percent of portfolio per holding, always from current store state.
package valuation

import (
	"context"
	"database/sql"
	"sort"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/tenant"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const baseHoldingsSelect = `accounts.account_name, accounts.account_type,
	assets.ticker, assets.name, assets.category, assets.current_price,
	holdings.shares,
	assets.id AS asset_id, accounts.id AS account_id, holdings.id AS holding_id,
	accounts.user_id`

// Service computes valuations. It never writes and keeps no cache.
type Service struct {
	DB *gorm.DB
	// TxOptions for the read transaction; nil uses the driver default.
	// Postgres deployments set ReadOnly with RepeatableRead for a snapshot.
	TxOptions *sql.TxOptions
}

// Filter narrows the returned rows. The percent denominator is always the
// whole portfolio of the tenant.
type Filter struct {
	AccountID *uint
}

// AccountTotal is the market value of one account.
type AccountTotal struct {
	AccountID   uint            `json:"account_id"`
	AccountName string          `json:"account_name"`
	AccountType string          `json:"account_type"`
	Holdings    int             `json:"holdings"`
	MarketValue decimal.Decimal `json:"market_value"`
	Percent     decimal.Decimal `json:"percent"`
}

// AssetTotal is the position in one asset summed across accounts.
type AssetTotal struct {
	AssetID      uint            `json:"asset_id"`
	Ticker       string          `json:"ticker"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	Shares       int64           `json:"shares"`
	MarketValue  decimal.Decimal `json:"market_value"`
	Percent      decimal.Decimal `json:"percent"`
}

// BaseHoldings returns one row per account × holding × asset of t.
// market_value = current_price × shares; percent = market_value / total
// where total is the sum over all of t's holdings, or 0 when total <= 0.
// Accounts without holdings come back with null value and percent.
func (s *Service) BaseHoldings(ctx context.Context, t tenant.Tenant, f Filter) ([]domain.BaseHolding, error) {
	rows, err := s.load(ctx, t)
	if err != nil {
		return nil, err
	}
	if f.AccountID == nil {
		return rows, nil
	}
	out := make([]domain.BaseHolding, 0, len(rows))
	for _, r := range rows {
		if r.AccountID == *f.AccountID {
			out = append(out, r)
		}
	}
	return out, nil
}

// AccountTotals sums market value per account of t, including empty
// accounts with a zero total.
func (s *Service) AccountTotals(ctx context.Context, t tenant.Tenant) ([]AccountTotal, error) {
	rows, err := s.load(ctx, t)
	if err != nil {
		return nil, err
	}
	total := Total(rows)
	byID := map[uint]*AccountTotal{}
	var order []uint
	for _, r := range rows {
		at, ok := byID[r.AccountID]
		if !ok {
			at = &AccountTotal{AccountID: r.AccountID, AccountName: r.AccountName, AccountType: r.AccountType}
			byID[r.AccountID] = at
			order = append(order, r.AccountID)
		}
		if r.MarketValue.Valid {
			at.Holdings++
			at.MarketValue = at.MarketValue.Add(r.MarketValue.Decimal)
		}
	}
	out := make([]AccountTotal, 0, len(order))
	for _, id := range order {
		at := byID[id]
		at.Percent = Percent(at.MarketValue, total)
		out = append(out, *at)
	}
	return out, nil
}

// AssetTotals sums shares and market value per asset of t across all
// accounts. Assets without holdings are not listed.
func (s *Service) AssetTotals(ctx context.Context, t tenant.Tenant) ([]AssetTotal, error) {
	rows, err := s.load(ctx, t)
	if err != nil {
		return nil, err
	}
	total := Total(rows)
	byID := map[uint]*AssetTotal{}
	for _, r := range rows {
		if r.AssetID == nil || !r.MarketValue.Valid {
			continue
		}
		at, ok := byID[*r.AssetID]
		if !ok {
			at = &AssetTotal{
				AssetID:      *r.AssetID,
				Ticker:       deref(r.Ticker),
				Name:         deref(r.Name),
				Category:     deref(r.Category),
				CurrentPrice: r.CurrentPrice.Decimal,
			}
			byID[*r.AssetID] = at
		}
		at.Shares += *r.Shares
		at.MarketValue = at.MarketValue.Add(r.MarketValue.Decimal)
	}
	out := make([]AssetTotal, 0, len(byID))
	for _, at := range byID {
		at.Percent = Percent(at.MarketValue, total)
		out = append(out, *at)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssetID < out[j].AssetID })
	return out, nil
}

func (s *Service) load(ctx context.Context, t tenant.Tenant) ([]domain.BaseHolding, error) {
	db, err := tenant.Scoped(ctx, s.DB, t)
	if err != nil {
		return nil, err
	}
	var rows []domain.BaseHolding
	err = db.Transaction(func(tx *gorm.DB) error {
		return tx.Table("accounts").
			Select(baseHoldingsSelect).
			Joins("LEFT JOIN holdings ON holdings.account_id = accounts.id AND holdings.user_id = accounts.user_id").
			Joins("LEFT JOIN assets ON assets.id = holdings.asset_id AND assets.user_id = holdings.user_id").
			Order("accounts.id, holdings.id").
			Scan(&rows).Error
	}, s.TxOptions)
	if err != nil {
		return nil, err
	}
	Compute(rows)
	return rows, nil
}

// Compute fills MarketValue and Percent for rows that make up one
// tenant's whole portfolio.
func Compute(rows []domain.BaseHolding) {
	for i := range rows {
		r := &rows[i]
		if r.Shares == nil || !r.CurrentPrice.Valid {
			r.MarketValue = decimal.NullDecimal{}
			continue
		}
		r.MarketValue = decimal.NewNullDecimal(r.CurrentPrice.Decimal.Mul(decimal.NewFromInt(*r.Shares)))
	}
	total := Total(rows)
	for i := range rows {
		r := &rows[i]
		if !r.MarketValue.Valid {
			r.Percent = decimal.NullDecimal{}
			continue
		}
		r.Percent = decimal.NewNullDecimal(Percent(r.MarketValue.Decimal, total))
	}
}

// Total is the sum of the non-null market values.
func Total(rows []domain.BaseHolding) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		if r.MarketValue.Valid {
			total = total.Add(r.MarketValue.Decimal)
		}
	}
	return total
}

// Percent is value/total, or 0 when total is not positive.
func Percent(value, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return value.Div(total)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
