package ledger

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"miplata/internal/logger"
)

// Snapshot is a copy of the in-memory ledger. Callers own it and may not
// use it to change the Mutator's state.
type Snapshot struct {
	Accounts     []Account
	Transactions []Transaction
	Installments []InstallmentPlan
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{
		Accounts:     slices.Clone(s.Accounts),
		Transactions: slices.Clone(s.Transactions),
		Installments: slices.Clone(s.Installments),
	}
}

// Mutator owns the in-memory ledger and is its only writer. Each command
// writes through the gateways first and touches local state only after
// storage confirmed the change. Account balances are never adjusted
// locally: after any transaction change the account list is re-read.
//
// Commands are not retried. A failed storage call leaves the ledger as it
// was and produces an error notification. A failed re-read after a
// successful write keeps the stale collection and produces a warning.
type Mutator struct {
	mu       sync.RWMutex
	state    Snapshot
	gw       Gateways
	notifier Notifier
	log      *zap.SugaredLogger
}

// NewMutator returns a Mutator with an empty ledger. A nil notifier drops
// notifications.
func NewMutator(gw Gateways, notifier Notifier) *Mutator {
	if notifier == nil {
		notifier = NotifierFunc(func(Notification) {})
	}
	return &Mutator{
		gw:       gw,
		notifier: notifier,
		log:      logger.Named("ledger"),
	}
}

// Snapshot returns a copy of the current ledger.
func (m *Mutator) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.clone()
}

// Load replaces the whole ledger with the three collections read from
// storage. On failure the previous ledger is kept.
func (m *Mutator) Load(ctx context.Context) error {
	var next Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		next.Accounts, err = m.gw.Accounts.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		next.Transactions, err = m.gw.Transactions.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		next.Installments, err = m.gw.Installments.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return m.fail("Could not load your data", err)
	}

	m.mu.Lock()
	m.state = next
	m.mu.Unlock()
	return nil
}

// CreateTransaction stores t and puts the stored record first in the list.
func (m *Mutator) CreateTransaction(ctx context.Context, t Transaction) (Transaction, error) {
	if err := t.Validate(); err != nil {
		return Transaction{}, m.fail("Transaction not saved", err)
	}
	created, err := m.gw.Transactions.Create(ctx, t)
	if err != nil {
		return Transaction{}, m.fail("Transaction not saved", err)
	}

	m.mu.Lock()
	m.state.Transactions = append([]Transaction{created}, m.state.Transactions...)
	m.mu.Unlock()

	m.refreshAccounts(ctx)
	m.info("Transaction saved")
	return created, nil
}

// UpdateTransaction replaces the stored transaction with id t.ID.
func (m *Mutator) UpdateTransaction(ctx context.Context, t Transaction) (Transaction, error) {
	if err := t.Validate(); err != nil {
		return Transaction{}, m.fail("Transaction not updated", err)
	}
	updated, err := m.gw.Transactions.Update(ctx, t.ID, t)
	if err != nil {
		return Transaction{}, m.fail("Transaction not updated", err)
	}

	m.mu.Lock()
	m.state.Transactions = replaceByID(m.state.Transactions, updated, transactionID)
	m.mu.Unlock()

	m.refreshAccounts(ctx)
	m.info("Transaction updated")
	return updated, nil
}

// DeleteTransaction removes the transaction with the given id.
func (m *Mutator) DeleteTransaction(ctx context.Context, id string) error {
	if err := m.gw.Transactions.Delete(ctx, id); err != nil {
		return m.fail("Transaction not deleted", err)
	}

	m.mu.Lock()
	m.state.Transactions = removeByID(m.state.Transactions, id, transactionID)
	m.mu.Unlock()

	m.refreshAccounts(ctx)
	m.info("Transaction deleted")
	return nil
}

// CreateAccount stores a and appends the stored record.
func (m *Mutator) CreateAccount(ctx context.Context, a Account) (Account, error) {
	if err := a.Validate(); err != nil {
		return Account{}, m.fail("Account not created", err)
	}
	if a.Color == "" {
		a.Color = DefaultAccountColor
	}
	created, err := m.gw.Accounts.Create(ctx, a)
	if err != nil {
		return Account{}, m.fail("Account not created", err)
	}

	m.mu.Lock()
	m.state.Accounts = replaceByID(m.state.Accounts, created, accountID)
	m.mu.Unlock()

	m.info("Account created")
	return created, nil
}

// UpdateAccount replaces the stored account with id a.ID.
func (m *Mutator) UpdateAccount(ctx context.Context, a Account) (Account, error) {
	if err := a.Validate(); err != nil {
		return Account{}, m.fail("Account not updated", err)
	}
	updated, err := m.gw.Accounts.Update(ctx, a.ID, a)
	if err != nil {
		return Account{}, m.fail("Account not updated", err)
	}

	m.mu.Lock()
	m.state.Accounts = replaceByID(m.state.Accounts, updated, accountID)
	m.mu.Unlock()

	m.info("Account updated")
	return updated, nil
}

// DeleteAccount removes the account. Storage cascades the deletion to the
// account's transactions, so the transaction list is re-read rather than
// pruned locally.
func (m *Mutator) DeleteAccount(ctx context.Context, id string) error {
	if err := m.gw.Accounts.Delete(ctx, id); err != nil {
		return m.fail("Account not deleted", err)
	}

	m.mu.Lock()
	m.state.Accounts = removeByID(m.state.Accounts, id, accountID)
	m.mu.Unlock()

	m.refreshTransactions(ctx)
	m.info("Account deleted")
	return nil
}

// CreateInstallment derives the paid amount, stores p and appends the
// stored record.
func (m *Mutator) CreateInstallment(ctx context.Context, p InstallmentPlan) (InstallmentPlan, error) {
	if err := p.Validate(); err != nil {
		return InstallmentPlan{}, m.fail("Installment plan not created", err)
	}
	p.Recompute()
	created, err := m.gw.Installments.Create(ctx, p)
	if err != nil {
		return InstallmentPlan{}, m.fail("Installment plan not created", err)
	}

	m.mu.Lock()
	m.state.Installments = replaceByID(m.state.Installments, created, installmentID)
	m.mu.Unlock()

	m.info("Installment plan created")
	return created, nil
}

// UpdateInstallment derives the paid amount and replaces the stored plan
// with id p.ID.
func (m *Mutator) UpdateInstallment(ctx context.Context, p InstallmentPlan) (InstallmentPlan, error) {
	if err := p.Validate(); err != nil {
		return InstallmentPlan{}, m.fail("Installment plan not updated", err)
	}
	p.Recompute()
	updated, err := m.gw.Installments.Update(ctx, p.ID, p)
	if err != nil {
		return InstallmentPlan{}, m.fail("Installment plan not updated", err)
	}

	m.mu.Lock()
	m.state.Installments = replaceByID(m.state.Installments, updated, installmentID)
	m.mu.Unlock()

	m.info("Installment plan updated")
	return updated, nil
}

// DeleteInstallment removes the plan with the given id.
func (m *Mutator) DeleteInstallment(ctx context.Context, id string) error {
	if err := m.gw.Installments.Delete(ctx, id); err != nil {
		return m.fail("Installment plan not deleted", err)
	}

	m.mu.Lock()
	m.state.Installments = removeByID(m.state.Installments, id, installmentID)
	m.mu.Unlock()

	m.info("Installment plan deleted")
	return nil
}

func (m *Mutator) refreshAccounts(ctx context.Context) {
	accounts, err := m.gw.Accounts.List(ctx)
	if err != nil {
		m.stale("accounts", err)
		return
	}
	m.mu.Lock()
	m.state.Accounts = accounts
	m.mu.Unlock()
}

func (m *Mutator) refreshTransactions(ctx context.Context) {
	txs, err := m.gw.Transactions.List(ctx)
	if err != nil {
		m.stale("transactions", err)
		return
	}
	m.mu.Lock()
	m.state.Transactions = txs
	m.mu.Unlock()
}

func (m *Mutator) fail(message string, err error) error {
	m.log.Warnw(message, "error", err)
	m.notifier.Notify(Notification{Level: LevelError, Message: message, Err: err})
	return err
}

func (m *Mutator) stale(collection string, err error) {
	m.log.Warnw("refresh after mutation failed", "collection", collection, "error", err)
	m.notifier.Notify(Notification{
		Level:   LevelWarning,
		Message: "Saved, but " + collection + " could not be refreshed; figures may be out of date until reload",
		Err:     err,
	})
}

func (m *Mutator) info(message string) {
	m.notifier.Notify(Notification{Level: LevelInfo, Message: message})
}

func accountID(a Account) string             { return a.ID }
func transactionID(t Transaction) string     { return t.ID }
func installmentID(p InstallmentPlan) string { return p.ID }

// replaceByID returns a copy of items with the element sharing v's id
// replaced by v, or v appended when no element matches.
func replaceByID[T any](items []T, v T, id func(T) string) []T {
	out := slices.Clone(items)
	key := id(v)
	for i := range out {
		if id(out[i]) == key {
			out[i] = v
			return out
		}
	}
	return append(out, v)
}

func removeByID[T any](items []T, key string, id func(T) string) []T {
	return slices.DeleteFunc(slices.Clone(items), func(v T) bool {
		return id(v) == key
	})
}
