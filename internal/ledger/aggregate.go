package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// MonthlyRow is one month of a monthly series. Balance is the running
// total of income minus expense through this month.
type MonthlyRow struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
	Label   string          `json:"label"`
}

// MonthLabeler renders a YYYY-MM key for display.
type MonthLabeler func(month string) string

// MonthlySeries groups txs by calendar month and returns one row per month
// that has transactions, ascending. Months without transactions are left
// out rather than zero-filled. A nil label uses the month key itself.
func MonthlySeries(txs []Transaction, label MonthLabeler) []MonthlyRow {
	byMonth := make(map[string]*MonthlyRow)
	for _, t := range txs {
		key := t.Month()
		row, ok := byMonth[key]
		if !ok {
			row = &MonthlyRow{Month: key, Income: decimal.Zero, Expense: decimal.Zero}
			byMonth[key] = row
		}
		switch t.Kind {
		case KindIncome:
			row.Income = row.Income.Add(t.Amount)
		case KindExpense:
			row.Expense = row.Expense.Add(t.Amount)
		}
	}

	keys := make([]string, 0, len(byMonth))
	for k := range byMonth {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]MonthlyRow, 0, len(keys))
	running := decimal.Zero
	for _, k := range keys {
		row := *byMonth[k]
		running = running.Add(row.Income.Sub(row.Expense))
		row.Balance = running
		row.Label = k
		if label != nil {
			row.Label = label(k)
		}
		rows = append(rows, row)
	}
	return rows
}

// CategoryRow is the summed expense of one category.
type CategoryRow struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// CategoryRanking sums expenses per category, largest first. Transactions
// without a category are left out. Ties keep the order in which the
// categories were first seen.
func CategoryRanking(txs []Transaction) []CategoryRow {
	index := make(map[string]int)
	var rows []CategoryRow
	for _, t := range txs {
		if t.Kind != KindExpense || t.Category == "" {
			continue
		}
		i, ok := index[t.Category]
		if !ok {
			i = len(rows)
			index[t.Category] = i
			rows = append(rows, CategoryRow{Category: t.Category, Amount: decimal.Zero})
		}
		rows[i].Amount = rows[i].Amount.Add(t.Amount)
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].Amount.GreaterThan(rows[b].Amount)
	})
	if rows == nil {
		rows = []CategoryRow{}
	}
	return rows
}

// Totals are the income and expense sums of a set of transactions.
type Totals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// Summarize returns the totals of txs.
func Summarize(txs []Transaction) Totals {
	tot := Totals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, t := range txs {
		switch t.Kind {
		case KindIncome:
			tot.Income = tot.Income.Add(t.Amount)
		case KindExpense:
			tot.Expense = tot.Expense.Add(t.Amount)
		}
	}
	tot.Net = tot.Income.Sub(tot.Expense)
	return tot
}

// TotalBalance sums the balances of every account.
func TotalBalance(accounts []Account) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range accounts {
		sum = sum.Add(a.Balance)
	}
	return sum
}

// Categories returns the distinct non-empty categories of txs in
// first-seen order. Used to offer the category selector its choices.
func Categories(txs []Transaction) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, t := range txs {
		if t.Category == "" {
			continue
		}
		if _, ok := seen[t.Category]; ok {
			continue
		}
		seen[t.Category] = struct{}{}
		out = append(out, t.Category)
	}
	return out
}
