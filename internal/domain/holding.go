package domain

import "time"

// Holding is a position of Shares in one Asset inside one Account.
// Both composite foreign keys include user_id, so the storage layer
// refuses a holding whose account or asset belongs to another user.
type Holding struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	AssetID   uint      `gorm:"column:asset_id;not null;index" json:"asset_id"`
	AccountID uint      `gorm:"column:account_id;not null;index" json:"account_id"`
	Shares    int64     `gorm:"column:shares;not null;default:0" json:"shares"`
	UserID    uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	User    *User    `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Account *Account `gorm:"foreignKey:AccountID,UserID;references:ID,UserID;constraint:OnDelete:CASCADE" json:"-"`
	Asset   *Asset   `gorm:"foreignKey:AssetID,UserID;references:ID,UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Holding) TableName() string {
	return "holdings"
}

// Validate checks the NOT NULL reference columns.
func (h *Holding) Validate() error {
	if h.AccountID == 0 {
		return NewNotNull("holdings", "account_id")
	}
	if h.AssetID == 0 {
		return NewNotNull("holdings", "asset_id")
	}
	return nil
}
