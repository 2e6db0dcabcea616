package services

import (
	"context"

	apperrors "miplata/internal/errors"
	"miplata/internal/ledger"
)

// Gateways adapts the services to the ledger's storage contracts for one
// user, so a Mutator can run in-process against the database.
func Gateways(userID string, accounts AccountServicer, transactions TransactionServicer, installments InstallmentServicer) ledger.Gateways {
	return ledger.Gateways{
		Accounts:     accountGateway{userID: userID, svc: accounts},
		Transactions: transactionGateway{userID: userID, svc: transactions},
		Installments: installmentGateway{userID: userID, svc: installments},
	}
}

type accountGateway struct {
	userID string
	svc    AccountServicer
}

func (g accountGateway) List(ctx context.Context) ([]ledger.Account, error) {
	accounts, err := g.svc.GetUserAccounts(ctx, g.userID)
	if err != nil {
		return nil, err
	}
	return AccountsToLedger(accounts), nil
}

func (g accountGateway) Create(ctx context.Context, a ledger.Account) (ledger.Account, error) {
	created, err := g.svc.CreateAccount(ctx, g.userID, a.Name, a.Color, a.Balance)
	if err != nil {
		return ledger.Account{}, err
	}
	return AccountToLedger(*created), nil
}

func (g accountGateway) Update(ctx context.Context, id string, a ledger.Account) (ledger.Account, error) {
	updated, err := g.svc.UpdateAccount(ctx, g.userID, id, AccountUpdateFields{
		Name:    &a.Name,
		Color:   &a.Color,
		Balance: &a.Balance,
	})
	if err != nil {
		return ledger.Account{}, err
	}
	return AccountToLedger(*updated), nil
}

func (g accountGateway) Delete(ctx context.Context, id string) error {
	return g.svc.DeleteAccount(ctx, g.userID, id)
}

type transactionGateway struct {
	userID string
	svc    TransactionServicer
}

func (g transactionGateway) List(ctx context.Context) ([]ledger.Transaction, error) {
	txs, err := g.svc.GetAllUserTransactions(ctx, g.userID, TransactionFilter{})
	if err != nil {
		return nil, err
	}
	return TransactionsToLedger(txs), nil
}

func (g transactionGateway) Create(ctx context.Context, t ledger.Transaction) (ledger.Transaction, error) {
	in, err := TransactionInputFromLedger(t)
	if err != nil {
		return ledger.Transaction{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be formatted as YYYY-MM-DD")
	}
	created, err := g.svc.CreateTransaction(ctx, g.userID, in)
	if err != nil {
		return ledger.Transaction{}, err
	}
	return TransactionToLedger(*created), nil
}

func (g transactionGateway) Update(ctx context.Context, id string, t ledger.Transaction) (ledger.Transaction, error) {
	in, err := TransactionInputFromLedger(t)
	if err != nil {
		return ledger.Transaction{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be formatted as YYYY-MM-DD")
	}
	updated, err := g.svc.UpdateTransaction(ctx, g.userID, id, in)
	if err != nil {
		return ledger.Transaction{}, err
	}
	return TransactionToLedger(*updated), nil
}

func (g transactionGateway) Delete(ctx context.Context, id string) error {
	return g.svc.DeleteTransaction(ctx, g.userID, id)
}

type installmentGateway struct {
	userID string
	svc    InstallmentServicer
}

func (g installmentGateway) List(ctx context.Context) ([]ledger.InstallmentPlan, error) {
	plans, err := g.svc.GetUserInstallments(ctx, g.userID)
	if err != nil {
		return nil, err
	}
	return InstallmentsToLedger(plans), nil
}

func (g installmentGateway) Create(ctx context.Context, p ledger.InstallmentPlan) (ledger.InstallmentPlan, error) {
	created, err := g.svc.CreateInstallment(ctx, g.userID, InstallmentInputFromLedger(p))
	if err != nil {
		return ledger.InstallmentPlan{}, err
	}
	return InstallmentToLedger(*created), nil
}

func (g installmentGateway) Update(ctx context.Context, id string, p ledger.InstallmentPlan) (ledger.InstallmentPlan, error) {
	updated, err := g.svc.UpdateInstallment(ctx, g.userID, id, InstallmentInputFromLedger(p))
	if err != nil {
		return ledger.InstallmentPlan{}, err
	}
	return InstallmentToLedger(*updated), nil
}

func (g installmentGateway) Delete(ctx context.Context, id string) error {
	return g.svc.DeleteInstallment(ctx, g.userID, id)
}
