package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "miplata/internal/errors"
	"miplata/internal/ledger"
	"miplata/internal/models"
)

// accountService handles account-related business logic.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// CreateAccount creates an account whose balance starts at initialBalance.
// No opening transaction is recorded.
func (s *accountService) CreateAccount(ctx context.Context, userID, name, color string, initialBalance decimal.Decimal) (*models.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}

	account := &models.Account{
		UserID:  userID,
		Name:    name,
		Balance: ledger.RoundMoney(initialBalance),
		Color:   color,
	}
	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// GetUserAccounts returns every account of a user, oldest first.
func (s *accountService) GetUserAccounts(ctx context.Context, userID string) ([]models.Account, error) {
	var accounts []models.Account
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	return accounts, nil
}

// GetAccountByID retrieves an account by ID for a specific user
func (s *accountService) GetAccountByID(ctx context.Context, userID, accountID string) (*models.Account, error) {
	return findAccount(s.db.WithContext(ctx), userID, accountID)
}

// UpdateAccount applies the non-nil fields. Setting Balance overwrites the
// stored figure; later transactions adjust from the new value.
func (s *accountService) UpdateAccount(ctx context.Context, userID, accountID string, fields AccountUpdateFields) (*models.Account, error) {
	db := s.db.WithContext(ctx)
	account, err := findAccount(db, userID, accountID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil {
		name := strings.TrimSpace(*fields.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
		}
		updates["name"] = name
	}
	if fields.Color != nil && *fields.Color != "" {
		updates["color"] = *fields.Color
	}
	if fields.Balance != nil {
		updates["balance"] = ledger.RoundMoney(*fields.Balance)
	}

	if len(updates) > 0 {
		if err := db.Model(account).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		// Reload to get fresh data
		if err := db.Where("id = ?", account.ID).First(account).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return account, nil
}

// DeleteAccount removes the account and every transaction recorded against
// it in one database transaction.
func (s *accountService) DeleteAccount(ctx context.Context, userID, accountID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := findAccount(tx, userID, accountID)
		if err != nil {
			return err
		}
		if err := tx.Where("account_id = ? AND user_id = ?", account.ID, userID).
			Delete(&models.Transaction{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

func findAccount(db *gorm.DB, userID, accountID string) (*models.Account, error) {
	var account models.Account
	if err := db.Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// adjustBalance adds delta to the account's stored balance inside tx.
func adjustBalance(tx *gorm.DB, userID, accountID string, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	account, err := findAccount(tx, userID, accountID)
	if err != nil {
		return err
	}
	account.Balance = account.Balance.Add(delta)
	if err := tx.Model(account).Update("balance", account.Balance).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
