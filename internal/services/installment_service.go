package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "miplata/internal/errors"
	"miplata/internal/ledger"
	"miplata/internal/models"
)

type installmentService struct {
	db *gorm.DB
}

// NewInstallmentService creates a new InstallmentServicer.
func NewInstallmentService(db *gorm.DB) InstallmentServicer {
	return &installmentService{db: db}
}

func validateInstallmentInput(in *InstallmentInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	in.TotalAmount = ledger.RoundMoney(in.TotalAmount)
	if !in.TotalAmount.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "total amount must be greater than zero")
	}
	if in.TotalInstallments <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "total installments must be greater than zero")
	}
	if in.InstallmentsPaid < 0 || in.InstallmentsPaid > in.TotalInstallments {
		return apperrors.ErrInvalidInstallments
	}
	return nil
}

// CreateInstallment stores a plan with its paid amount derived from the counts.
func (s *installmentService) CreateInstallment(ctx context.Context, userID string, in InstallmentInput) (*models.Installment, error) {
	if err := validateInstallmentInput(&in); err != nil {
		return nil, err
	}
	plan := &models.Installment{
		UserID:            userID,
		Name:              in.Name,
		TotalAmount:       in.TotalAmount,
		TotalInstallments: in.TotalInstallments,
		InstallmentsPaid:  in.InstallmentsPaid,
		PaidAmount:        ledger.PaidAmount(in.TotalAmount, in.InstallmentsPaid, in.TotalInstallments),
	}
	if err := s.db.WithContext(ctx).Create(plan).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return plan, nil
}

// GetUserInstallments returns every plan of a user, oldest first.
func (s *installmentService) GetUserInstallments(ctx context.Context, userID string) ([]models.Installment, error) {
	var plans []models.Installment
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&plans).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if plans == nil {
		plans = []models.Installment{}
	}
	return plans, nil
}

func (s *installmentService) GetInstallmentByID(ctx context.Context, userID, installmentID string) (*models.Installment, error) {
	var plan models.Installment
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", installmentID, userID).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInstallmentNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &plan, nil
}

// UpdateInstallment replaces the plan's fields and re-derives the paid amount.
func (s *installmentService) UpdateInstallment(ctx context.Context, userID, installmentID string, in InstallmentInput) (*models.Installment, error) {
	if err := validateInstallmentInput(&in); err != nil {
		return nil, err
	}
	plan, err := s.GetInstallmentByID(ctx, userID, installmentID)
	if err != nil {
		return nil, err
	}

	plan.Name = in.Name
	plan.TotalAmount = in.TotalAmount
	plan.TotalInstallments = in.TotalInstallments
	plan.InstallmentsPaid = in.InstallmentsPaid
	plan.PaidAmount = ledger.PaidAmount(in.TotalAmount, in.InstallmentsPaid, in.TotalInstallments)
	if err := s.db.WithContext(ctx).Save(plan).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return plan, nil
}

func (s *installmentService) DeleteInstallment(ctx context.Context, userID, installmentID string) error {
	plan, err := s.GetInstallmentByID(ctx, userID, installmentID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(plan).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
