package tracker

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"miplata/internal/ledger"
)

const helpText = `Commands
  login <email>                         sign in (asks for the password)
  register <email> <first> <last>       create an account and sign in
  logout                                sign out
  reload                                read everything from storage again

  summary                               totals, monthly series and categories
  range <3m|6m|12m|1y|month> [YYYY-MM]  set the time window
  cat [name ...]                        only show these categories; no names clears
  cats                                  list the categories in use
  check                                 compare these figures with storage

  accounts                              list accounts
  account add <name> [balance] [#color]
  account edit <ref> [name=..] [color=..] [balance=..]
  account rm <ref>

  tx [limit]                            list filtered transactions, newest first
  tx add type=<income|expense> amount=<n> account=<ref> desc=<text> [cat=..] [date=YYYY-MM-DD]
  tx edit <ref> [type=..] [amount=..] [account=..] [desc=..] [cat=..] [date=..]
  tx rm <ref>

  plans                                 list installment plans
  plan add name=<text> total=<n> n=<count> [paid=<count>]
  plan edit <ref> [name=..] [total=..] [n=..] [paid=..]
  plan pay <ref>                        mark one more installment as paid
  plan rm <ref>

  help, quit
A <ref> is the short id shown in listings, a longer id or a name.`

func (a *App) dispatch(args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "help", "?":
		a.println(helpText)
		return nil
	case "login":
		return a.cmdLogin(rest)
	case "register":
		return a.cmdRegister(rest)
	case "logout":
		return a.auth.SignOut(a.ctx)
	}

	m, err := a.requireSession()
	if err != nil {
		return err
	}

	switch cmd {
	case "reload":
		return m.Load(a.ctx)
	case "summary", "dash":
		a.showSummary()
		return nil
	case "range":
		return a.cmdRange(rest)
	case "cat":
		a.filter.Categories = rest
		a.showSummary()
		return nil
	case "check":
		return a.cmdCheck(m)
	case "cats":
		a.println(strings.Join(ledger.Categories(m.Snapshot().Transactions), ", "))
		return nil
	case "accounts":
		a.println(a.renderAccounts(m.Snapshot().Accounts))
		return nil
	case "account":
		return a.cmdAccount(m, rest)
	case "tx":
		return a.cmdTransaction(m, rest)
	case "plans":
		a.println(a.renderPlans(m.Snapshot().Installments))
		return nil
	case "plan":
		return a.cmdPlan(m, rest)
	}
	return fmt.Errorf("unknown command %q, try help", cmd)
}

func (a *App) cmdLogin(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: login <email>")
	}
	password, ok := a.ask("Password: ")
	if !ok {
		return errors.New("no password given")
	}
	if _, err := a.auth.SignIn(a.ctx, args[0], password); err != nil {
		a.println(a.styles.alert.Render("Sign-in failed: " + err.Error()))
	}
	return nil
}

func (a *App) cmdRegister(args []string) error {
	reg, ok := a.auth.(Registerer)
	if !ok {
		return errors.New("registration is not available")
	}
	if len(args) != 3 {
		return errors.New("usage: register <email> <first> <last>")
	}
	password, ok := a.ask("Password (min 8 characters): ")
	if !ok {
		return errors.New("no password given")
	}
	if _, err := reg.Register(a.ctx, args[0], password, args[1], args[2]); err != nil {
		a.println(a.styles.alert.Render("Registration failed: " + err.Error()))
	}
	return nil
}

func (a *App) cmdRange(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: range <3m|6m|12m|1y|month> [YYYY-MM]")
	}
	r, err := ledger.ParseTimeRange(args[0])
	if err != nil {
		return err
	}
	next := a.filter
	next.Range = r
	next.Month = ""
	if r == ledger.RangeMonth {
		if len(args) > 1 {
			next.Month = args[1]
		} else {
			next.Month = a.clock.Now().Format(ledger.MonthLayout)
		}
	}
	if err := next.Validate(); err != nil {
		return err
	}
	a.filter = next
	a.showSummary()
	return nil
}

// cmdCheck compares the in-memory dashboard with one computed from the
// stored records for the same filter. A difference means the ledger drifted
// since the last load, e.g. after a change made from another client.
func (a *App) cmdCheck(m *ledger.Mutator) error {
	if a.summarizer == nil {
		return errors.New("check is not available with this backend")
	}
	stored, err := a.summarizer.Summary(a.ctx, a.filter)
	if err != nil {
		return err
	}
	snap := m.Snapshot()
	here := ledger.BuildDashboard(snap.Accounts, snap.Transactions, a.filter, a.clock.Now(), nil)

	diffs := dashboardDiff(here, *stored)
	if len(diffs) == 0 {
		a.println(a.styles.success.Render("✓ In sync with storage"))
		return nil
	}
	a.println(a.styles.warning.Render("! Out of sync, run reload: " + strings.Join(diffs, "; ")))
	return nil
}

func dashboardDiff(here, stored ledger.Dashboard) []string {
	var diffs []string
	amount := func(name string, h, s decimal.Decimal) {
		if !h.Equal(s) {
			diffs = append(diffs, fmt.Sprintf("%s %s here, %s stored", name, h, s))
		}
	}
	amount("balance", here.TotalBalance, stored.TotalBalance)
	amount("income", here.Totals.Income, stored.Totals.Income)
	amount("expense", here.Totals.Expense, stored.Totals.Expense)
	if h, s := len(here.Transactions), len(stored.Transactions); h != s {
		diffs = append(diffs, fmt.Sprintf("%d transactions here, %d stored", h, s))
	}
	return diffs
}

func (a *App) showSummary() {
	m := a.mutator
	if m == nil {
		return
	}
	snap := m.Snapshot()
	d := ledger.BuildDashboard(snap.Accounts, snap.Transactions, a.filter, a.clock.Now(), a.label)
	a.println(a.renderDashboard(d))
}

func (a *App) cmdAccount(m *ledger.Mutator, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: account <add|edit|rm> ...")
	}
	accounts := m.Snapshot().Accounts

	switch args[0] {
	case "add":
		if len(args) < 2 {
			return errors.New("usage: account add <name> [balance] [#color]")
		}
		acct := ledger.Account{Name: args[1], Balance: decimal.Zero}
		for _, v := range args[2:] {
			if strings.HasPrefix(v, "#") {
				acct.Color = v
				continue
			}
			bal, err := parseSigned(v)
			if err != nil {
				return err
			}
			acct.Balance = bal
		}
		_, err := m.CreateAccount(a.ctx, acct)
		return err

	case "edit":
		if len(args) < 3 {
			return errors.New("usage: account edit <ref> [name=..] [color=..] [balance=..]")
		}
		acct, err := resolve(accounts, args[1], accountKey)
		if err != nil {
			return err
		}
		fields, err := parseFields(args[2:], "name", "color", "balance")
		if err != nil {
			return err
		}
		if v, ok := fields["name"]; ok {
			acct.Name = v
		}
		if v, ok := fields["color"]; ok {
			acct.Color = v
		}
		if v, ok := fields["balance"]; ok {
			if acct.Balance, err = parseSigned(v); err != nil {
				return err
			}
		}
		_, err = m.UpdateAccount(a.ctx, acct)
		return err

	case "rm":
		if len(args) != 2 {
			return errors.New("usage: account rm <ref>")
		}
		acct, err := resolve(accounts, args[1], accountKey)
		if err != nil {
			return err
		}
		if !a.confirm(fmt.Sprintf("Delete account %q and all its transactions?", acct.Name)) {
			a.println(a.styles.muted.Render("Cancelled."))
			return nil
		}
		return m.DeleteAccount(a.ctx, acct.ID)
	}
	return fmt.Errorf("unknown account command %q", args[0])
}

func (a *App) cmdTransaction(m *ledger.Mutator, args []string) error {
	snap := m.Snapshot()
	if len(args) == 0 || isNumber(args[0]) {
		limit := 20
		if len(args) > 0 {
			limit, _ = strconv.Atoi(args[0])
		}
		txs := ledger.FilterTransactions(snap.Transactions, a.filter, a.clock.Now())
		if len(txs) > limit {
			txs = txs[:limit]
		}
		a.println(a.renderTransactions(txs, snap.Accounts))
		return nil
	}

	switch args[0] {
	case "add":
		fields, err := parseFields(args[1:], "type", "amount", "account", "desc", "cat", "date")
		if err != nil {
			return err
		}
		tx := ledger.Transaction{Date: a.clock.Now().Format(ledger.DateLayout)}
		if err := a.applyTransactionFields(&tx, fields, snap.Accounts); err != nil {
			return err
		}
		_, err = m.CreateTransaction(a.ctx, tx)
		return err

	case "edit":
		if len(args) < 3 {
			return errors.New("usage: tx edit <ref> [type=..] [amount=..] [account=..] [desc=..] [cat=..] [date=..]")
		}
		tx, err := resolve(snap.Transactions, args[1], transactionKey)
		if err != nil {
			return err
		}
		fields, err := parseFields(args[2:], "type", "amount", "account", "desc", "cat", "date")
		if err != nil {
			return err
		}
		if err := a.applyTransactionFields(&tx, fields, snap.Accounts); err != nil {
			return err
		}
		_, err = m.UpdateTransaction(a.ctx, tx)
		return err

	case "rm":
		if len(args) != 2 {
			return errors.New("usage: tx rm <ref>")
		}
		tx, err := resolve(snap.Transactions, args[1], transactionKey)
		if err != nil {
			return err
		}
		question := fmt.Sprintf("Delete %s %q of %s?", tx.Kind, tx.Description, a.money(tx.Amount))
		if !a.confirm(question) {
			a.println(a.styles.muted.Render("Cancelled."))
			return nil
		}
		return m.DeleteTransaction(a.ctx, tx.ID)
	}
	return fmt.Errorf("unknown tx command %q", args[0])
}

func (a *App) applyTransactionFields(tx *ledger.Transaction, fields map[string]string, accounts []ledger.Account) error {
	if v, ok := fields["type"]; ok {
		tx.Kind = ledger.Kind(strings.ToLower(v))
	}
	if v, ok := fields["amount"]; ok {
		amount, err := parseAmount(v)
		if err != nil {
			return err
		}
		tx.Amount = amount
	}
	if v, ok := fields["account"]; ok {
		acct, err := resolve(accounts, v, accountKey)
		if err != nil {
			return err
		}
		tx.AccountID = acct.ID
	} else if tx.AccountID == "" && len(accounts) == 1 {
		tx.AccountID = accounts[0].ID
	}
	if v, ok := fields["desc"]; ok {
		tx.Description = v
	}
	if v, ok := fields["cat"]; ok {
		tx.Category = v
	}
	if v, ok := fields["date"]; ok {
		tx.Date = v
	}
	return nil
}

func (a *App) cmdPlan(m *ledger.Mutator, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: plan <add|edit|pay|rm> ...")
	}
	plans := m.Snapshot().Installments

	switch args[0] {
	case "add":
		fields, err := parseFields(args[1:], "name", "total", "n", "paid")
		if err != nil {
			return err
		}
		var p ledger.InstallmentPlan
		if err := applyPlanFields(&p, fields); err != nil {
			return err
		}
		_, err = m.CreateInstallment(a.ctx, p)
		return err

	case "edit":
		if len(args) < 3 {
			return errors.New("usage: plan edit <ref> [name=..] [total=..] [n=..] [paid=..]")
		}
		p, err := resolve(plans, args[1], planKey)
		if err != nil {
			return err
		}
		fields, err := parseFields(args[2:], "name", "total", "n", "paid")
		if err != nil {
			return err
		}
		if err := applyPlanFields(&p, fields); err != nil {
			return err
		}
		_, err = m.UpdateInstallment(a.ctx, p)
		return err

	case "pay":
		if len(args) != 2 {
			return errors.New("usage: plan pay <ref>")
		}
		p, err := resolve(plans, args[1], planKey)
		if err != nil {
			return err
		}
		if p.Done() {
			return fmt.Errorf("%q is already paid off", p.Name)
		}
		p.InstallmentsPaid++
		_, err = m.UpdateInstallment(a.ctx, p)
		return err

	case "rm":
		if len(args) != 2 {
			return errors.New("usage: plan rm <ref>")
		}
		p, err := resolve(plans, args[1], planKey)
		if err != nil {
			return err
		}
		if !a.confirm(fmt.Sprintf("Delete installment plan %q?", p.Name)) {
			a.println(a.styles.muted.Render("Cancelled."))
			return nil
		}
		return m.DeleteInstallment(a.ctx, p.ID)
	}
	return fmt.Errorf("unknown plan command %q", args[0])
}

func applyPlanFields(p *ledger.InstallmentPlan, fields map[string]string) error {
	if v, ok := fields["name"]; ok {
		p.Name = v
	}
	if v, ok := fields["total"]; ok {
		total, err := parseAmount(v)
		if err != nil {
			return err
		}
		p.Total = total
	}
	for key, dst := range map[string]*int{"n": &p.TotalInstallments, "paid": &p.InstallmentsPaid} {
		v, ok := fields[key]
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be a whole number", key)
		}
		*dst = n
	}
	return nil
}

// parseFields reads key=value arguments, accepting only the given keys.
func parseFields(args []string, allowed ...string) (map[string]string, error) {
	fields := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		known := false
		for _, k := range allowed {
			if k == key {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("unknown field %q (use %s)", key, strings.Join(allowed, ", "))
		}
		fields[key] = value
	}
	return fields, nil
}

// parseAmount reads a non-negative amount. Both "1234.5" and "1234,5" are
// accepted.
func parseAmount(s string) (decimal.Decimal, error) {
	d, err := parseSigned(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount %q must not be negative", s)
	}
	return d, nil
}

func parseSigned(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not a number", s)
	}
	return d, nil
}

func isNumber(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

type refKey[T any] struct {
	id   func(T) string
	name func(T) string
	kind string
}

var (
	accountKey     = refKey[ledger.Account]{func(a ledger.Account) string { return a.ID }, func(a ledger.Account) string { return a.Name }, "account"}
	transactionKey = refKey[ledger.Transaction]{func(t ledger.Transaction) string { return t.ID }, func(t ledger.Transaction) string { return t.Description }, "transaction"}
	planKey        = refKey[ledger.InstallmentPlan]{func(p ledger.InstallmentPlan) string { return p.ID }, func(p ledger.InstallmentPlan) string { return p.Name }, "installment plan"}
)

// resolve finds the item whose id equals, starts with or ends with ref, or
// whose name equals ref ignoring case. Ambiguous references are rejected.
func resolve[T any](items []T, ref string, key refKey[T]) (T, error) {
	var zero T
	var matches []T
	for _, it := range items {
		if key.id(it) == ref {
			return it, nil
		}
		id := key.id(it)
		if strings.HasPrefix(id, ref) || strings.HasSuffix(id, ref) || strings.EqualFold(key.name(it), ref) {
			matches = append(matches, it)
		}
	}
	switch len(matches) {
	case 0:
		return zero, fmt.Errorf("no %s matches %q", key.kind, ref)
	case 1:
		return matches[0], nil
	}
	return zero, fmt.Errorf("%q matches %d of your %ss, use a longer id", ref, len(matches), key.kind)
}
