package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"miplata/internal/ledger"
	"miplata/internal/models"
	"miplata/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(ctx context.Context, email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(ctx context.Context, email, password string) (*models.User, error)
	FindOrCreateGoogleUser(ctx context.Context, profile GoogleProfile) (*models.User, error)
	StoreSessionTokenHash(ctx context.Context, userID, tokenHash string) error
	ClearSession(ctx context.Context, userID string) error
	ValidateSession(ctx context.Context, userID, tokenHash string) error
}

// GoogleProfile is the subset of the Google userinfo response used to
// sign a user in.
type GoogleProfile struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

// AccountUpdateFields holds the optional fields of an account update.
// Nil fields are left unchanged.
type AccountUpdateFields struct {
	Name    *string
	Color   *string
	Balance *decimal.Decimal
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(ctx context.Context, userID, name, color string, initialBalance decimal.Decimal) (*models.Account, error)
	GetUserAccounts(ctx context.Context, userID string) ([]models.Account, error)
	GetAccountByID(ctx context.Context, userID, accountID string) (*models.Account, error)
	UpdateAccount(ctx context.Context, userID, accountID string, fields AccountUpdateFields) (*models.Account, error)
	DeleteAccount(ctx context.Context, userID, accountID string) error
}

// TransactionInput carries the user-supplied fields of a transaction.
type TransactionInput struct {
	AccountID   string
	Type        models.TransactionType
	Amount      decimal.Decimal
	Description string
	Category    string
	Date        time.Time
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate  *time.Time
	ToDate    *time.Time
	Type      *models.TransactionType
	Category  *string
	AccountID *string
}

// TransactionServicer defines the contract for transaction-related business logic.
// Every write adjusts the referenced account balances in the same database
// transaction.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, userID string, in TransactionInput) (*models.Transaction, error)
	GetUserTransactions(ctx context.Context, userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetAllUserTransactions(ctx context.Context, userID string, filter TransactionFilter) ([]models.Transaction, error)
	GetTransactionByID(ctx context.Context, userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, transactionID string, in TransactionInput) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID string) error
}

// InstallmentInput carries the user-supplied fields of an installment plan.
type InstallmentInput struct {
	Name              string
	TotalAmount       decimal.Decimal
	TotalInstallments int
	InstallmentsPaid  int
}

// InstallmentServicer defines the contract for installment plans.
type InstallmentServicer interface {
	CreateInstallment(ctx context.Context, userID string, in InstallmentInput) (*models.Installment, error)
	GetUserInstallments(ctx context.Context, userID string) ([]models.Installment, error)
	GetInstallmentByID(ctx context.Context, userID, installmentID string) (*models.Installment, error)
	UpdateInstallment(ctx context.Context, userID, installmentID string, in InstallmentInput) (*models.Installment, error)
	DeleteInstallment(ctx context.Context, userID, installmentID string) error
}

// SummaryServicer computes the dashboard figures for one user.
type SummaryServicer interface {
	GetSummary(ctx context.Context, userID string, filter ledger.Filter, now time.Time) (*ledger.Dashboard, error)
}
