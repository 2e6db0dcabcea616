package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dashboard is every derived figure a view shows for one filter selection.
type Dashboard struct {
	Filter       Filter          `json:"filter"`
	TotalBalance decimal.Decimal `json:"total_balance"`
	Totals       Totals          `json:"totals"`
	Monthly      []MonthlyRow    `json:"monthly"`
	Categories   []CategoryRow   `json:"categories"`
	Transactions []Transaction   `json:"transactions"`
}

// BuildDashboard filters txs with f and aggregates the result. The total
// balance always covers every account regardless of the filter.
func BuildDashboard(accounts []Account, txs []Transaction, f Filter, now time.Time, label MonthLabeler) Dashboard {
	filtered := FilterTransactions(txs, f, now)
	return Dashboard{
		Filter:       f,
		TotalBalance: TotalBalance(accounts),
		Totals:       Summarize(filtered),
		Monthly:      MonthlySeries(filtered, label),
		Categories:   CategoryRanking(filtered),
		Transactions: filtered,
	}
}
