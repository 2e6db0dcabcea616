// Package ledger holds the personal-finance core: the entity types, the
// filter engine, the monthly and category aggregators, installment math
// and the Mutator that keeps an in-memory ledger in step with storage.
//
// Everything except the Mutator is a pure function of its inputs.
package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "miplata/internal/errors"
)

// DateLayout is the calendar-date format used for Transaction.Date.
const DateLayout = "2006-01-02"

// MonthLayout is the format of a month key such as "2024-01".
const MonthLayout = "2006-01"

// DefaultAccountColor is assigned to accounts created without a color.
const DefaultAccountColor = "#6366f1"

// Kind is the direction of a transaction. The amount is always a magnitude;
// the sign comes from the kind.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Signed returns amount with the sign implied by k.
func (k Kind) Signed(amount decimal.Decimal) decimal.Decimal {
	if k == KindExpense {
		return amount.Neg()
	}
	return amount
}

// Account is a named money container.
type Account struct {
	ID      string          `json:"id"`
	UserID  string          `json:"user_id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
	Color   string          `json:"color"`
}

// Validate checks the fields a user must supply for an account.
func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	if !IsMoney(a.Balance) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "balance must have at most 2 decimal places")
	}
	return nil
}

// Transaction is a single income or expense event against one account.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	AccountID   string          `json:"account_id"`
	Kind        Kind            `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
	Date        string          `json:"date"`
}

// Month returns the YYYY-MM key of the transaction's date.
func (t Transaction) Month() string {
	return monthKey(t.Date)
}

// Validate checks a transaction before it is sent to storage.
func (t Transaction) Validate() error {
	switch {
	case !t.Kind.Valid():
		return apperrors.ErrInvalidTransactionType
	case t.AccountID == "":
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "account is required")
	case t.Amount.IsNegative():
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
	case !IsMoney(t.Amount):
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must have at most 2 decimal places")
	case strings.TrimSpace(t.Description) == "":
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if _, err := time.Parse(DateLayout, t.Date); err != nil {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be formatted as YYYY-MM-DD")
	}
	return nil
}

// InstallmentPlan tracks a purchase paid over a fixed number of equal installments.
// Paid is derived from the other fields; see Recompute.
type InstallmentPlan struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	Name              string          `json:"name"`
	Total             decimal.Decimal `json:"total"`
	TotalInstallments int             `json:"total_installments"`
	InstallmentsPaid  int             `json:"installments_paid"`
	Paid              decimal.Decimal `json:"paid"`
}

// Validate checks the user-supplied installment fields.
func (p InstallmentPlan) Validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	case !p.Total.IsPositive():
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "total must be greater than zero")
	case !IsMoney(p.Total):
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "total must have at most 2 decimal places")
	case p.TotalInstallments <= 0:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "total installments must be greater than zero")
	case p.InstallmentsPaid < 0 || p.InstallmentsPaid > p.TotalInstallments:
		return apperrors.ErrInvalidInstallments
	}
	return nil
}

func monthKey(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}
