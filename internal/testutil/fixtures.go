package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"miplata/internal/ledger"
	"miplata/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the password of every user created by CreateTestUser.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:        email,
		Password:     string(hash),
		AuthProvider: models.AuthProviderLocal,
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAccount creates an account with zero balance.
func CreateTestAccount(t *testing.T, db *gorm.DB, userID string) *models.Account {
	t.Helper()
	return CreateTestAccountWithBalance(t, db, userID, "0")
}

// CreateTestAccountWithBalance creates an account with the given balance.
func CreateTestAccountWithBalance(t *testing.T, db *gorm.DB, userID, balance string) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:  userID,
		Name:    fmt.Sprintf("Test Account %d", nextID()),
		Balance: decimal.RequireFromString(balance),
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestTransaction inserts a transaction row without touching the
// account balance.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, accountID string, txType models.TransactionType, amount, date, category string) *models.Transaction {
	t.Helper()

	d, err := time.Parse(ledger.DateLayout, date)
	if err != nil {
		t.Fatalf("bad fixture date %q: %v", date, err)
	}
	tx := &models.Transaction{
		UserID:      userID,
		AccountID:   accountID,
		Type:        txType,
		Amount:      decimal.RequireFromString(amount),
		Description: fmt.Sprintf("Test transaction %d", nextID()),
		Category:    category,
		Date:        d,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestInstallment creates an installment plan with its paid amount derived.
func CreateTestInstallment(t *testing.T, db *gorm.DB, userID, total string, count, paid int) *models.Installment {
	t.Helper()

	totalAmount := decimal.RequireFromString(total)
	plan := &models.Installment{
		UserID:            userID,
		Name:              fmt.Sprintf("Test Plan %d", nextID()),
		TotalAmount:       totalAmount,
		TotalInstallments: count,
		InstallmentsPaid:  paid,
		PaidAmount:        ledger.PaidAmount(totalAmount, paid, count),
	}
	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("failed to create test installment: %v", err)
	}
	return plan
}
