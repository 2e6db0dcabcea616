package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	apperrors "miplata/internal/errors"
	"miplata/internal/ledger"
	"miplata/internal/logger"
	"miplata/internal/testutil"
)

func init() {
	logger.Init("test")
}

func TestMutatorOverServices(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db)
	accounts := NewAccountService(db)
	transactions := NewTransactionService(db)
	installments := NewInstallmentService(db)

	var notes []ledger.Notification
	m := ledger.NewMutator(
		Gateways(user.ID, accounts, transactions, installments),
		ledger.NotifierFunc(func(n ledger.Notification) { notes = append(notes, n) }),
	)
	testutil.AssertNoError(t, m.Load(ctx))

	acc, err := m.CreateAccount(ctx, ledger.Account{Name: "Efectivo", Balance: decimal.NewFromInt(50000)})
	testutil.AssertNoError(t, err)
	if acc.Color != ledger.DefaultAccountColor {
		t.Errorf("expected default color, got %q", acc.Color)
	}

	created, err := m.CreateTransaction(ctx, ledger.Transaction{
		AccountID:   acc.ID,
		Kind:        ledger.KindExpense,
		Amount:      decimal.NewFromInt(1500),
		Description: "Supermercado",
		Category:    "Food",
		Date:        "2024-02-10",
	})
	testutil.AssertNoError(t, err)
	if created.Date != "2024-02-10" {
		t.Errorf("expected date to round-trip, got %s", created.Date)
	}

	snap := m.Snapshot()
	testutil.AssertDecimal(t, "balance after expense", snap.Accounts[0].Balance, "48500")

	err = m.DeleteTransaction(ctx, "does-not-exist")
	if !errors.Is(err, apperrors.ErrTransactionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if last := notes[len(notes)-1]; last.Level != ledger.LevelError {
		t.Errorf("expected error notification, got %s", last.Level)
	}
	testutil.AssertDecimal(t, "balance unchanged", m.Snapshot().Accounts[0].Balance, "48500")

	plan, err := m.CreateInstallment(ctx, ledger.InstallmentPlan{
		Name:              "Heladera",
		Total:             decimal.NewFromInt(300000),
		TotalInstallments: 12,
		InstallmentsPaid:  4,
	})
	testutil.AssertNoError(t, err)
	testutil.AssertDecimal(t, "paid", plan.Paid, "100000")
	testutil.AssertDecimal(t, "remaining", plan.Remaining(), "200000")

	testutil.AssertNoError(t, m.DeleteAccount(ctx, acc.ID))
	snap = m.Snapshot()
	if len(snap.Accounts) != 0 || len(snap.Transactions) != 0 {
		t.Errorf("expected account and its transactions gone, got %d/%d", len(snap.Accounts), len(snap.Transactions))
	}
}

func TestSummaryService(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db)
	acc := testutil.CreateTestAccountWithBalance(t, db, user.ID, "1000")
	testutil.CreateTestTransaction(t, db, user.ID, acc.ID, "income", "100", "2024-01-05", "Salary")
	testutil.CreateTestTransaction(t, db, user.ID, acc.ID, "expense", "40", "2024-01-20", "Food")
	testutil.CreateTestTransaction(t, db, user.ID, acc.ID, "expense", "20", "2024-02-03", "Rent")
	testutil.CreateTestTransaction(t, db, user.ID, acc.ID, "expense", "99", "2022-01-01", "Old")

	svc := NewSummaryService(NewAccountService(db), NewTransactionService(db), func(m string) string {
		return "label " + m
	})
	now := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)

	d, err := svc.GetSummary(ctx, user.ID, ledger.DefaultFilter(), now)
	testutil.AssertNoError(t, err)

	testutil.AssertDecimal(t, "total balance", d.TotalBalance, "1000")
	testutil.AssertDecimal(t, "income", d.Totals.Income, "100")
	testutil.AssertDecimal(t, "expense", d.Totals.Expense, "60")
	if len(d.Monthly) != 2 {
		t.Fatalf("expected 2 months, got %d", len(d.Monthly))
	}
	testutil.AssertDecimal(t, "jan balance", d.Monthly[0].Balance, "60")
	testutil.AssertDecimal(t, "feb balance", d.Monthly[1].Balance, "40")
	if d.Monthly[0].Label != "label 2024-01" {
		t.Errorf("expected labeler to be applied, got %q", d.Monthly[0].Label)
	}
	if len(d.Categories) != 2 || d.Categories[0].Category != "Food" {
		t.Errorf("unexpected ranking %+v", d.Categories)
	}

	_, err = svc.GetSummary(ctx, user.ID, ledger.Filter{Range: ledger.RangeMonth, Month: "bad"}, now)
	testutil.AssertAppError(t, err, "INVALID_INPUT")
}
