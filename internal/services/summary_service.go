package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"miplata/internal/ledger"
	"miplata/internal/models"
)

type summaryService struct {
	accounts     AccountServicer
	transactions TransactionServicer
	label        ledger.MonthLabeler
}

// NewSummaryService creates a SummaryServicer over the account and
// transaction services. label renders month keys; nil keeps them as is.
func NewSummaryService(accounts AccountServicer, transactions TransactionServicer, label ledger.MonthLabeler) SummaryServicer {
	return &summaryService{accounts: accounts, transactions: transactions, label: label}
}

// GetSummary loads the user's accounts and transactions and runs them
// through the same filter and aggregation the clients use.
func (s *summaryService) GetSummary(ctx context.Context, userID string, filter ledger.Filter, now time.Time) (*ledger.Dashboard, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	var (
		accounts []models.Account
		txs      []models.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		accounts, err = s.accounts.GetUserAccounts(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		txs, err = s.transactions.GetAllUserTransactions(gctx, userID, TransactionFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d := ledger.BuildDashboard(AccountsToLedger(accounts), TransactionsToLedger(txs), filter, now, s.label)
	return &d, nil
}
