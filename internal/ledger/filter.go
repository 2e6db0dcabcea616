package ledger

import (
	"time"

	apperrors "miplata/internal/errors"
)

// TimeRange selects the window of transactions a view covers.
type TimeRange string

const (
	Range3Months  TimeRange = "3m"
	Range6Months  TimeRange = "6m"
	Range12Months TimeRange = "12m"
	RangeMonth    TimeRange = "month"
)

// ParseTimeRange accepts the range names used by the API and the terminal
// client. "1y" is an alias for 12m.
func ParseTimeRange(s string) (TimeRange, error) {
	switch s {
	case "", "3m":
		return Range3Months, nil
	case "6m":
		return Range6Months, nil
	case "12m", "1y":
		return Range12Months, nil
	case "month":
		return RangeMonth, nil
	}
	return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "range must be one of 3m, 6m, 12m or month")
}

// Months returns the length of a relative window. Anything that is not
// 3m or 6m counts as twelve months.
func (r TimeRange) Months() int {
	switch r {
	case Range3Months:
		return 3
	case Range6Months:
		return 6
	default:
		return 12
	}
}

// Filter is the time-range and category selection of a view. The zero
// value is not useful; start from DefaultFilter.
type Filter struct {
	Range      TimeRange `json:"range"`
	Month      string    `json:"month,omitempty"`
	Categories []string  `json:"categories,omitempty"`
}

// DefaultFilter is the selection a fresh view starts with: the last three
// months, every category.
func DefaultFilter() Filter {
	return Filter{Range: Range3Months}
}

// Validate checks that a specific-month filter names a parseable month.
func (f Filter) Validate() error {
	if f.Range != RangeMonth {
		return nil
	}
	if _, err := time.Parse(MonthLayout, f.Month); err != nil {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be formatted as YYYY-MM")
	}
	return nil
}

// Cutoff returns the first calendar day included by a relative window.
// The month arithmetic normalises overflow the same way time.AddDate does,
// so March 31 minus one month is March 3.
func (f Filter) Cutoff(now time.Time) time.Time {
	c := now.AddDate(0, -f.Range.Months(), 0)
	return time.Date(c.Year(), c.Month(), c.Day(), 0, 0, 0, 0, now.Location())
}

// FilterTransactions returns the subsequence of txs selected by f, in the
// original order. now anchors relative windows and is never modified.
// The result is empty, not nil, when nothing matches.
func FilterTransactions(txs []Transaction, f Filter, now time.Time) []Transaction {
	inRange := dateMatcher(f, now)

	var categories map[string]struct{}
	if len(f.Categories) > 0 {
		categories = make(map[string]struct{}, len(f.Categories))
		for _, c := range f.Categories {
			categories[c] = struct{}{}
		}
	}

	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if !inRange(t) {
			continue
		}
		if categories != nil {
			if _, ok := categories[t.Category]; !ok {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

func dateMatcher(f Filter, now time.Time) func(Transaction) bool {
	if f.Range == RangeMonth {
		return func(t Transaction) bool {
			return t.Month() == f.Month
		}
	}
	// ISO dates order lexicographically.
	cutoff := f.Cutoff(now).Format(DateLayout)
	return func(t Transaction) bool {
		return t.Date >= cutoff
	}
}
