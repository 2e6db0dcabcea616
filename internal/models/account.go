package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultAccountColor is stored when an account is created without a color.
const DefaultAccountColor = "#6366f1"

// Account is a named money container. Balance is maintained by the
// transaction service and may go negative.
type Account struct {
	Base
	UserID  string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name    string          `gorm:"not null" json:"name"`
	Balance decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"balance"`
	Color   string          `gorm:"size:7;not null" json:"color"`

	Transactions []Transaction `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"transactions,omitempty"`
}

// BeforeCreate fills in the default color.
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if err := a.Base.BeforeCreate(tx); err != nil {
		return err
	}
	if a.Color == "" {
		a.Color = DefaultAccountColor
	}
	return nil
}
