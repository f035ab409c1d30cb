package domain

import (
	"strings"
	"time"
)

// Account is a named container of holdings. (id, user_id) is unique so
// holdings can reference it with a composite key pinned to the same user.
type Account struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement;uniqueIndex:idx_accounts_id_user,priority:1" json:"id"`
	AccountName string    `gorm:"column:account_name;not null" json:"account_name"`
	AccountType string    `gorm:"column:account_type;not null" json:"account_type"`
	UserID      uint      `gorm:"column:user_id;not null;index;uniqueIndex:idx_accounts_id_user,priority:2" json:"user_id"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Account) TableName() string {
	return "accounts"
}

// Validate checks the NOT NULL columns.
func (a *Account) Validate() error {
	if strings.TrimSpace(a.AccountName) == "" {
		return NewNotNull("accounts", "account_name")
	}
	if strings.TrimSpace(a.AccountType) == "" {
		return NewNotNull("accounts", "account_type")
	}
	return nil
}
