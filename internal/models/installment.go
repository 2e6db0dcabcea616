package models

import "github.com/shopspring/decimal"

// Installment is a purchase paid over a fixed number of equal installments.
// Paid is derived by the service from the other fields on every write.
type Installment struct {
	Base
	UserID            string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name              string          `gorm:"not null" json:"name"`
	TotalAmount       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	TotalInstallments int             `gorm:"not null" json:"total_installments"`
	InstallmentsPaid  int             `gorm:"not null;default:0" json:"installments_paid"`
	PaidAmount        decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"paid_amount"`
}
