package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// maxPrice is the first value that no longer fits numeric(10,2).
var maxPrice = decimal.New(1, 8)

// Asset is a tradable instrument with a single mutable current price.
type Asset struct {
	ID           uint            `gorm:"column:id;primaryKey;autoIncrement;uniqueIndex:idx_assets_id_user,priority:1" json:"id"`
	Ticker       string          `gorm:"column:ticker;not null" json:"ticker"`
	Name         string          `gorm:"column:name;not null" json:"name"`
	Category     string          `gorm:"column:category;not null" json:"category"`
	CurrentPrice decimal.Decimal `gorm:"column:current_price;type:numeric(10,2);not null" json:"current_price"`
	UserID       uint            `gorm:"column:user_id;not null;index;uniqueIndex:idx_assets_id_user,priority:2" json:"user_id"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`

	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Asset) TableName() string {
	return "assets"
}

// Validate checks the NOT NULL columns and the price format.
func (a *Asset) Validate() error {
	if strings.TrimSpace(a.Ticker) == "" {
		return NewNotNull("assets", "ticker")
	}
	if strings.TrimSpace(a.Name) == "" {
		return NewNotNull("assets", "name")
	}
	if strings.TrimSpace(a.Category) == "" {
		return NewNotNull("assets", "category")
	}
	return ValidatePrice(a.CurrentPrice)
}

// ValidatePrice enforces a non-negative numeric(10,2) value.
func ValidatePrice(p decimal.Decimal) error {
	if p.IsNegative() {
		return NewCheck("assets", "current_price", "must not be negative")
	}
	if !p.Equal(p.Round(2)) {
		return NewCheck("assets", "current_price", "must have at most two decimal places")
	}
	if p.GreaterThanOrEqual(maxPrice) {
		return NewCheck("assets", "current_price", "exceeds numeric(10,2)")
	}
	return nil
}
