package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "miplata/internal/errors"
	"miplata/internal/ledger"
	"miplata/internal/models"
	"miplata/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

func validateTransactionInput(in *TransactionInput) error {
	if in.Type != models.TransactionTypeIncome && in.Type != models.TransactionTypeExpense {
		return apperrors.ErrInvalidTransactionType
	}
	if in.AccountID == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "account ID is required")
	}
	if in.Amount.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
	}
	// Round before the balance delta is taken so both match the stored row.
	in.Amount = ledger.RoundMoney(in.Amount)
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	in.Category = strings.TrimSpace(in.Category)
	if in.Date.IsZero() {
		in.Date = time.Now()
	}
	in.Date = truncateToDay(in.Date)
	return nil
}

// CreateTransaction records a transaction and applies it to the account balance.
func (s *transactionService) CreateTransaction(ctx context.Context, userID string, in TransactionInput) (*models.Transaction, error) {
	if err := validateTransactionInput(&in); err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		UserID:      userID,
		AccountID:   in.AccountID,
		Type:        in.Type,
		Amount:      in.Amount,
		Description: in.Description,
		Category:    in.Category,
		Date:        in.Date,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findAccount(tx, userID, in.AccountID); err != nil {
			return err
		}
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return adjustBalance(tx, userID, in.AccountID, transaction.SignedAmount())
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// GetUserTransactions retrieves a paginated, filtered list of transactions,
// newest first.
func (s *transactionService) GetUserTransactions(ctx context.Context, userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Order("created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAllUserTransactions returns every matching transaction, newest first.
func (s *transactionService) GetAllUserTransactions(ctx context.Context, userID string, filter TransactionFilter) ([]models.Transaction, error) {
	q := applyTransactionFilters(s.db.WithContext(ctx).Where("user_id = ?", userID), filter)

	var transactions []models.Transaction
	if err := q.Order("date DESC").Order("created_at DESC").Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	return transactions, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", truncateToDay(*f.FromDate))
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", truncateToDay(*f.ToDate))
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	if f.AccountID != nil {
		q = q.Where("account_id = ?", *f.AccountID)
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	return findTransaction(s.db.WithContext(ctx), userID, transactionID)
}

// UpdateTransaction replaces every user-editable field. The old amount is
// reversed on the old account before the new amount is applied to the new
// one, so moving a transaction between accounts keeps both balances right.
func (s *transactionService) UpdateTransaction(ctx context.Context, userID, transactionID string, in TransactionInput) (*models.Transaction, error) {
	if err := validateTransactionInput(&in); err != nil {
		return nil, err
	}

	var transaction *models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		transaction, err = findTransaction(tx, userID, transactionID)
		if err != nil {
			return err
		}
		if _, err := findAccount(tx, userID, in.AccountID); err != nil {
			return err
		}
		if err := adjustBalance(tx, userID, transaction.AccountID, transaction.SignedAmount().Neg()); err != nil {
			return err
		}

		transaction.AccountID = in.AccountID
		transaction.Type = in.Type
		transaction.Amount = in.Amount
		transaction.Description = in.Description
		transaction.Category = in.Category
		transaction.Date = in.Date
		if err := tx.Save(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return adjustBalance(tx, userID, transaction.AccountID, transaction.SignedAmount())
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// DeleteTransaction deletes a transaction and reverses its effect on the
// account balance.
func (s *transactionService) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		transaction, err := findTransaction(tx, userID, transactionID)
		if err != nil {
			return err
		}
		if err := tx.Delete(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return adjustBalance(tx, userID, transaction.AccountID, transaction.SignedAmount().Neg())
	})
}

func findTransaction(db *gorm.DB, userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// truncateToDay drops the clock part, keeping the calendar date as written.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
