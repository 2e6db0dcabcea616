package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func tx(id string, kind Kind, amount, date, category string) Transaction {
	return Transaction{
		ID:          id,
		AccountID:   "acc-1",
		Kind:        kind,
		Amount:      dec(amount),
		Description: "test " + id,
		Category:    category,
		Date:        date,
	}
}

func ids(txs []Transaction) []string {
	out := make([]string, len(txs))
	for i, t := range txs {
		out[i] = t.ID
	}
	return out
}

func sameIDs(t *testing.T, got []Transaction, want ...string) {
	t.Helper()
	g := ids(got)
	if len(g) != len(want) {
		t.Fatalf("expected ids %v, got %v", want, g)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("expected ids %v, got %v", want, g)
		}
	}
}

func TestParseTimeRange(t *testing.T) {
	cases := map[string]TimeRange{
		"":      Range3Months,
		"3m":    Range3Months,
		"6m":    Range6Months,
		"12m":   Range12Months,
		"1y":    Range12Months,
		"month": RangeMonth,
	}
	for in, want := range cases {
		got, err := ParseTimeRange(in)
		if err != nil {
			t.Errorf("ParseTimeRange(%q) returned error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseTimeRange(%q) = %q, want %q", in, got, want)
		}
	}

	if _, err := ParseTimeRange("2w"); err == nil {
		t.Error("expected error for unknown range")
	}
}

func TestFilterCutoff(t *testing.T) {
	t.Run("same day of month", func(t *testing.T) {
		now := time.Date(2024, 5, 15, 18, 30, 0, 0, time.UTC)
		got := Filter{Range: Range3Months}.Cutoff(now)
		want := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("overflowing day normalises forward", func(t *testing.T) {
		now := time.Date(2024, 3, 31, 9, 0, 0, 0, time.UTC)
		got := Filter{Range: Range3Months}.Cutoff(now)
		// December 31 exists, so no overflow for three months back.
		if got.Format(DateLayout) != "2023-12-31" {
			t.Errorf("expected 2023-12-31, got %s", got.Format(DateLayout))
		}

		got = Filter{Range: Range6Months}.Cutoff(time.Date(2024, 8, 31, 0, 0, 0, 0, time.UTC))
		// February 31 2024 normalises to March 2.
		if got.Format(DateLayout) != "2024-03-02" {
			t.Errorf("expected 2024-03-02, got %s", got.Format(DateLayout))
		}
	})

	t.Run("does not modify now", func(t *testing.T) {
		now := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
		before := now
		_ = Filter{Range: Range12Months}.Cutoff(now)
		if !now.Equal(before) {
			t.Error("now was modified")
		}
	})
}

func TestFilterTransactions(t *testing.T) {
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	all := []Transaction{
		tx("1", KindExpense, "10", "2024-05-10", "Food"),
		tx("2", KindIncome, "100", "2024-02-15", "Salary"),
		tx("3", KindExpense, "20", "2024-02-14", "Food"),
		tx("4", KindExpense, "30", "2023-11-20", "Rent"),
		tx("5", KindExpense, "40", "2023-05-15", "Rent"),
		tx("6", KindExpense, "50", "2023-05-14", ""),
	}

	t.Run("last 3 months includes the cutoff day", func(t *testing.T) {
		got := FilterTransactions(all, Filter{Range: Range3Months}, now)
		sameIDs(t, got, "1", "2")
	})

	t.Run("last 6 months", func(t *testing.T) {
		got := FilterTransactions(all, Filter{Range: Range6Months}, now)
		sameIDs(t, got, "1", "2", "3", "4")
	})

	t.Run("last 12 months", func(t *testing.T) {
		got := FilterTransactions(all, Filter{Range: Range12Months}, now)
		sameIDs(t, got, "1", "2", "3", "4", "5")
	})

	t.Run("specific month by prefix", func(t *testing.T) {
		got := FilterTransactions(all, Filter{Range: RangeMonth, Month: "2024-02"}, now)
		sameIDs(t, got, "2", "3")
	})

	t.Run("category selection", func(t *testing.T) {
		got := FilterTransactions(all, Filter{Range: Range12Months, Categories: []string{"Food"}}, now)
		sameIDs(t, got, "1", "3")
	})

	t.Run("empty selection does not mean empty category", func(t *testing.T) {
		got := FilterTransactions(all, Filter{Range: Range12Months, Categories: []string{}}, now)
		if len(got) != 5 {
			t.Errorf("expected 5 transactions, got %d", len(got))
		}
	})

	t.Run("no match returns empty slice", func(t *testing.T) {
		got := FilterTransactions(all, Filter{Range: RangeMonth, Month: "1999-01"}, now)
		if got == nil {
			t.Fatal("expected empty slice, got nil")
		}
		if len(got) != 0 {
			t.Errorf("expected no transactions, got %d", len(got))
		}
	})

	t.Run("never grows and every element matches", func(t *testing.T) {
		for _, r := range []TimeRange{Range3Months, Range6Months, Range12Months} {
			f := Filter{Range: r}
			got := FilterTransactions(all, f, now)
			if len(got) > len(all) {
				t.Fatalf("%s: filtered set larger than input", r)
			}
			cutoff := f.Cutoff(now).Format(DateLayout)
			for _, tr := range got {
				if tr.Date < cutoff {
					t.Errorf("%s: %s is before cutoff %s", r, tr.Date, cutoff)
				}
			}
		}
	})

	t.Run("input is not modified", func(t *testing.T) {
		input := []Transaction{tx("a", KindIncome, "1", "2024-05-01", "X")}
		_ = FilterTransactions(input, Filter{Range: Range3Months, Categories: []string{"Y"}}, now)
		if len(input) != 1 || input[0].ID != "a" {
			t.Error("input slice was modified")
		}
	})
}

func TestFilterValidate(t *testing.T) {
	if err := (Filter{Range: RangeMonth, Month: "2024-13"}).Validate(); err == nil {
		t.Error("expected error for invalid month")
	}
	if err := (Filter{Range: RangeMonth, Month: "2024-02"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := DefaultFilter().Validate(); err != nil {
		t.Errorf("unexpected error for default filter: %v", err)
	}
}
