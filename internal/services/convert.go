package services

import (
	"time"

	"miplata/internal/ledger"
	"miplata/internal/models"
)

// AccountToLedger converts a stored account to its ledger form.
func AccountToLedger(a models.Account) ledger.Account {
	return ledger.Account{
		ID:      a.ID,
		UserID:  a.UserID,
		Name:    a.Name,
		Balance: a.Balance,
		Color:   a.Color,
	}
}

// TransactionToLedger converts a stored transaction to its ledger form.
// The date column carries no zone, so it is formatted in UTC.
func TransactionToLedger(t models.Transaction) ledger.Transaction {
	return ledger.Transaction{
		ID:          t.ID,
		UserID:      t.UserID,
		AccountID:   t.AccountID,
		Kind:        ledger.Kind(t.Type),
		Amount:      t.Amount,
		Description: t.Description,
		Category:    t.Category,
		Date:        t.Date.UTC().Format(ledger.DateLayout),
	}
}

// InstallmentToLedger converts a stored installment plan to its ledger form.
func InstallmentToLedger(p models.Installment) ledger.InstallmentPlan {
	return ledger.InstallmentPlan{
		ID:                p.ID,
		UserID:            p.UserID,
		Name:              p.Name,
		Total:             p.TotalAmount,
		TotalInstallments: p.TotalInstallments,
		InstallmentsPaid:  p.InstallmentsPaid,
		Paid:              p.PaidAmount,
	}
}

// TransactionInputFromLedger converts a ledger transaction to service input.
func TransactionInputFromLedger(t ledger.Transaction) (TransactionInput, error) {
	date, err := time.Parse(ledger.DateLayout, t.Date)
	if err != nil {
		return TransactionInput{}, err
	}
	return TransactionInput{
		AccountID:   t.AccountID,
		Type:        models.TransactionType(t.Kind),
		Amount:      t.Amount,
		Description: t.Description,
		Category:    t.Category,
		Date:        date,
	}, nil
}

// InstallmentInputFromLedger converts a ledger plan to service input. Paid is
// dropped; the service derives it.
func InstallmentInputFromLedger(p ledger.InstallmentPlan) InstallmentInput {
	return InstallmentInput{
		Name:              p.Name,
		TotalAmount:       p.Total,
		TotalInstallments: p.TotalInstallments,
		InstallmentsPaid:  p.InstallmentsPaid,
	}
}

func mapSlice[S, D any](in []S, fn func(S) D) []D {
	out := make([]D, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}

// AccountsToLedger converts a slice of stored accounts.
func AccountsToLedger(in []models.Account) []ledger.Account {
	return mapSlice(in, AccountToLedger)
}

// TransactionsToLedger converts a slice of stored transactions.
func TransactionsToLedger(in []models.Transaction) []ledger.Transaction {
	return mapSlice(in, TransactionToLedger)
}

// InstallmentsToLedger converts a slice of stored installment plans.
func InstallmentsToLedger(in []models.Installment) []ledger.InstallmentPlan {
	return mapSlice(in, InstallmentToLedger)
}
