package domain

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BaseHolding is one row of the computed base_holdings view: an account
// left-joined to its holdings and their assets. Accounts without holdings
// yield a single row whose asset and holding fields are null.
type BaseHolding struct {
	AccountName  string              `gorm:"column:account_name" json:"account_name"`
	AccountType  string              `gorm:"column:account_type" json:"account_type"`
	Ticker       *string             `gorm:"column:ticker" json:"ticker"`
	Name         *string             `gorm:"column:name" json:"name"`
	Category     *string             `gorm:"column:category" json:"category"`
	CurrentPrice decimal.NullDecimal `gorm:"column:current_price" json:"current_price"`
	Shares       *int64              `gorm:"column:shares" json:"shares"`
	MarketValue  decimal.NullDecimal `gorm:"-" json:"market_value"`
	Percent      decimal.NullDecimal `gorm:"-" json:"percent"`
	AssetID      *uint               `gorm:"column:asset_id" json:"asset_id"`
	AccountID    uint                `gorm:"column:account_id" json:"account_id"`
	HoldingID    *uint               `gorm:"column:holding_id" json:"holding_id"`
	UserID       uint                `gorm:"column:user_id" json:"user_id"`
}

func (BaseHolding) TableName() string {
	return "base_holdings"
}

// BaseHoldingColumns is the column order of the view.
var BaseHoldingColumns = []string{
	"account_name", "account_type", "ticker", "name", "category", "current_price",
	"shares", "market_value", "percent", "asset_id", "account_id", "holding_id", "user_id",
}

func (*BaseHolding) BeforeCreate(*gorm.DB) error { return ErrReadOnlyView }

func (*BaseHolding) BeforeUpdate(*gorm.DB) error { return ErrReadOnlyView }

func (*BaseHolding) BeforeDelete(*gorm.DB) error { return ErrReadOnlyView }
