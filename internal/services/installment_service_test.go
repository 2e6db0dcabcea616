package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"miplata/internal/testutil"
)

func TestInstallmentService(t *testing.T) {
	ctx := context.Background()

	t.Run("create_derives_paid_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewInstallmentService(db)
		user := testutil.CreateTestUser(t, db)

		plan, err := svc.CreateInstallment(ctx, user.ID, InstallmentInput{
			Name:              "Heladera",
			TotalAmount:       decimal.NewFromInt(300000),
			TotalInstallments: 12,
			InstallmentsPaid:  4,
		})
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "paid", plan.PaidAmount, "100000")
	})

	t.Run("update_rederives_paid_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewInstallmentService(db)
		user := testutil.CreateTestUser(t, db)
		plan := testutil.CreateTestInstallment(t, db, user.ID, "1200", 6, 1)

		updated, err := svc.UpdateInstallment(ctx, user.ID, plan.ID, InstallmentInput{
			Name:              plan.Name,
			TotalAmount:       plan.TotalAmount,
			TotalInstallments: 6,
			InstallmentsPaid:  6,
		})
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "paid", updated.PaidAmount, "1200")

		reloaded, err := svc.GetInstallmentByID(ctx, user.ID, plan.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "stored paid", reloaded.PaidAmount, "1200")
	})

	t.Run("invalid_counts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewInstallmentService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateInstallment(ctx, user.ID, InstallmentInput{Name: "TV", TotalAmount: decimal.NewFromInt(10), TotalInstallments: 3, InstallmentsPaid: 4})
		testutil.AssertAppError(t, err, "INVALID_INSTALLMENTS")

		_, err = svc.CreateInstallment(ctx, user.ID, InstallmentInput{Name: "TV", TotalAmount: decimal.NewFromInt(10), TotalInstallments: 0})
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateInstallment(ctx, user.ID, InstallmentInput{Name: "TV", TotalAmount: decimal.Zero, TotalInstallments: 3})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("list_and_delete", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewInstallmentService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		plan := testutil.CreateTestInstallment(t, db, user.ID, "100", 2, 0)
		testutil.CreateTestInstallment(t, db, other.ID, "100", 2, 0)

		plans, err := svc.GetUserInstallments(ctx, user.ID)
		testutil.AssertNoError(t, err)
		if len(plans) != 1 {
			t.Fatalf("expected 1 plan, got %d", len(plans))
		}

		testutil.AssertAppError(t, svc.DeleteInstallment(ctx, other.ID, plan.ID), "INSTALLMENT_NOT_FOUND")
		testutil.AssertNoError(t, svc.DeleteInstallment(ctx, user.ID, plan.ID))
		testutil.AssertAppError(t, svc.DeleteInstallment(ctx, user.ID, plan.ID), "INSTALLMENT_NOT_FOUND")
	})
}
