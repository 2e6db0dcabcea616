package ledger

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func assertDec(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s: expected %s, got %s", name, want, got)
	}
}

func TestMonthlySeries(t *testing.T) {
	t.Run("two months with running balance", func(t *testing.T) {
		rows := MonthlySeries([]Transaction{
			tx("1", KindIncome, "100", "2024-01-05", ""),
			tx("2", KindExpense, "40", "2024-01-20", ""),
			tx("3", KindExpense, "20", "2024-02-03", ""),
		}, nil)

		if len(rows) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(rows))
		}
		if rows[0].Month != "2024-01" || rows[1].Month != "2024-02" {
			t.Fatalf("unexpected month order: %s, %s", rows[0].Month, rows[1].Month)
		}
		assertDec(t, "jan income", rows[0].Income, "100")
		assertDec(t, "jan expense", rows[0].Expense, "40")
		assertDec(t, "jan balance", rows[0].Balance, "60")
		assertDec(t, "feb income", rows[1].Income, "0")
		assertDec(t, "feb expense", rows[1].Expense, "20")
		assertDec(t, "feb balance", rows[1].Balance, "40")
		if rows[0].Label != "2024-01" {
			t.Errorf("expected month key as default label, got %q", rows[0].Label)
		}
	})

	t.Run("sorts months ascending regardless of input order", func(t *testing.T) {
		rows := MonthlySeries([]Transaction{
			tx("1", KindExpense, "5", "2024-03-01", ""),
			tx("2", KindIncome, "50", "2023-12-01", ""),
			tx("3", KindIncome, "10", "2024-01-01", ""),
		}, nil)
		var months []string
		for _, r := range rows {
			months = append(months, r.Month)
		}
		want := []string{"2023-12", "2024-01", "2024-03"}
		if !reflect.DeepEqual(months, want) {
			t.Errorf("expected %v, got %v", want, months)
		}
	})

	t.Run("gaps are not zero-filled", func(t *testing.T) {
		rows := MonthlySeries([]Transaction{
			tx("1", KindIncome, "1", "2024-01-01", ""),
			tx("2", KindIncome, "1", "2024-04-01", ""),
		}, nil)
		if len(rows) != 2 {
			t.Errorf("expected 2 rows, got %d", len(rows))
		}
	})

	t.Run("zero net month still appears", func(t *testing.T) {
		rows := MonthlySeries([]Transaction{
			tx("1", KindIncome, "30", "2024-06-01", ""),
			tx("2", KindExpense, "30", "2024-06-02", ""),
		}, nil)
		if len(rows) != 1 {
			t.Fatalf("expected 1 row, got %d", len(rows))
		}
		assertDec(t, "income", rows[0].Income, "30")
		assertDec(t, "expense", rows[0].Expense, "30")
		assertDec(t, "balance", rows[0].Balance, "0")
	})

	t.Run("labeler is applied", func(t *testing.T) {
		rows := MonthlySeries([]Transaction{tx("1", KindIncome, "1", "2024-01-01", "")}, func(m string) string {
			return "label " + m
		})
		if rows[0].Label != "label 2024-01" {
			t.Errorf("unexpected label %q", rows[0].Label)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		rows := MonthlySeries(nil, nil)
		if rows == nil || len(rows) != 0 {
			t.Errorf("expected empty non-nil slice, got %v", rows)
		}
	})
}

func TestMonthlySeriesConservesTotals(t *testing.T) {
	txs := []Transaction{
		tx("1", KindIncome, "1000.50", "2024-01-05", "Salary"),
		tx("2", KindExpense, "200.25", "2024-01-09", "Food"),
		tx("3", KindExpense, "99.99", "2024-02-10", "Food"),
		tx("4", KindIncome, "10", "2024-03-11", ""),
		tx("5", KindExpense, "500", "2024-03-15", "Rent"),
	}
	rows := MonthlySeries(txs, nil)
	totals := Summarize(txs)

	income, expense := decimal.Zero, decimal.Zero
	for _, r := range rows {
		income = income.Add(r.Income)
		expense = expense.Add(r.Expense)
	}
	if !income.Equal(totals.Income) {
		t.Errorf("income not conserved: rows %s, total %s", income, totals.Income)
	}
	if !expense.Equal(totals.Expense) {
		t.Errorf("expense not conserved: rows %s, total %s", expense, totals.Expense)
	}
	last := rows[len(rows)-1].Balance
	if !last.Equal(totals.Income.Sub(totals.Expense)) {
		t.Errorf("last balance %s does not equal net %s", last, totals.Net)
	}
}

func TestCategoryRanking(t *testing.T) {
	t.Run("descending by amount, expenses only", func(t *testing.T) {
		rows := CategoryRanking([]Transaction{
			tx("1", KindExpense, "10", "2024-01-01", "Food"),
			tx("2", KindExpense, "45", "2024-01-02", "Rent"),
			tx("3", KindIncome, "1000", "2024-01-03", "Salary"),
			tx("4", KindExpense, "20", "2024-01-04", "Food"),
			tx("5", KindExpense, "99", "2024-01-05", ""),
		})
		if len(rows) != 2 {
			t.Fatalf("expected 2 rows, got %d: %v", len(rows), rows)
		}
		if rows[0].Category != "Rent" || rows[1].Category != "Food" {
			t.Errorf("unexpected order: %v", rows)
		}
		assertDec(t, "rent", rows[0].Amount, "45")
		assertDec(t, "food", rows[1].Amount, "30")
	})

	t.Run("ties keep first-seen order", func(t *testing.T) {
		rows := CategoryRanking([]Transaction{
			tx("1", KindExpense, "10", "2024-01-01", "B"),
			tx("2", KindExpense, "10", "2024-01-02", "A"),
			tx("3", KindExpense, "10", "2024-01-03", "C"),
			tx("4", KindExpense, "50", "2024-01-04", "D"),
		})
		var got []string
		for _, r := range rows {
			got = append(got, r.Category)
		}
		want := []string{"D", "B", "A", "C"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("rows are non-increasing and cover every expense category", func(t *testing.T) {
		txs := []Transaction{
			tx("1", KindExpense, "3", "2024-01-01", "X"),
			tx("2", KindExpense, "7", "2024-01-01", "Y"),
			tx("3", KindExpense, "1", "2024-01-01", "Z"),
			tx("4", KindIncome, "9", "2024-01-01", "W"),
			tx("5", KindExpense, "2", "2024-01-01", "X"),
		}
		rows := CategoryRanking(txs)
		for i := 1; i < len(rows); i++ {
			if rows[i].Amount.GreaterThan(rows[i-1].Amount) {
				t.Errorf("row %d (%s) greater than row %d (%s)", i, rows[i].Amount, i-1, rows[i-1].Amount)
			}
		}
		labels := map[string]bool{}
		for _, r := range rows {
			labels[r.Category] = true
		}
		want := map[string]bool{"X": true, "Y": true, "Z": true}
		if !reflect.DeepEqual(labels, want) {
			t.Errorf("expected categories %v, got %v", want, labels)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		rows := CategoryRanking(nil)
		if rows == nil || len(rows) != 0 {
			t.Errorf("expected empty non-nil slice, got %v", rows)
		}
	})
}

func TestCategoryFilterAppliesToRanking(t *testing.T) {
	now := time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)
	txs := []Transaction{
		tx("1", KindExpense, "10", "2024-02-01", "Food"),
		tx("2", KindExpense, "500", "2024-02-02", "Rent"),
		tx("3", KindExpense, "15", "2024-02-03", "Food"),
	}
	f := Filter{Range: RangeMonth, Month: "2024-02", Categories: []string{"Food"}}

	filtered := FilterTransactions(txs, f, now)
	for _, tr := range filtered {
		if tr.Category == "Rent" {
			t.Fatalf("Rent transaction %s survived the filter", tr.ID)
		}
	}
	rows := CategoryRanking(filtered)
	if len(rows) != 1 || rows[0].Category != "Food" {
		t.Fatalf("expected only Food in ranking, got %v", rows)
	}
	assertDec(t, "food", rows[0].Amount, "25")
}

func TestAggregationIsIdempotent(t *testing.T) {
	txs := []Transaction{
		tx("1", KindIncome, "100", "2024-01-05", "Salary"),
		tx("2", KindExpense, "40", "2024-01-20", "Food"),
		tx("3", KindExpense, "20", "2024-02-03", "Rent"),
	}
	if !reflect.DeepEqual(MonthlySeries(txs, nil), MonthlySeries(txs, nil)) {
		t.Error("monthly series differs between runs")
	}
	if !reflect.DeepEqual(CategoryRanking(txs), CategoryRanking(txs)) {
		t.Error("category ranking differs between runs")
	}
}

func TestTotalBalanceAndCategories(t *testing.T) {
	accounts := []Account{
		{ID: "a", Name: "Efectivo", Balance: dec("50000")},
		{ID: "b", Name: "Banco", Balance: dec("-1500.50")},
	}
	assertDec(t, "total balance", TotalBalance(accounts), "48499.50")

	cats := Categories([]Transaction{
		tx("1", KindExpense, "1", "2024-01-01", "Food"),
		tx("2", KindIncome, "1", "2024-01-01", ""),
		tx("3", KindExpense, "1", "2024-01-01", "Rent"),
		tx("4", KindExpense, "1", "2024-01-01", "Food"),
	})
	if !reflect.DeepEqual(cats, []string{"Food", "Rent"}) {
		t.Errorf("unexpected categories %v", cats)
	}
}

func TestBuildDashboard(t *testing.T) {
	now := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	accounts := []Account{{ID: "a", Balance: dec("150")}}
	txs := []Transaction{
		tx("1", KindIncome, "100", "2024-01-05", "Salary"),
		tx("2", KindExpense, "40", "2024-01-20", "Food"),
		tx("3", KindExpense, "20", "2024-02-03", "Food"),
		tx("4", KindExpense, "70", "2022-02-03", "Old"),
	}
	d := BuildDashboard(accounts, txs, DefaultFilter(), now, nil)

	assertDec(t, "total balance", d.TotalBalance, "150")
	assertDec(t, "income", d.Totals.Income, "100")
	assertDec(t, "expense", d.Totals.Expense, "60")
	assertDec(t, "net", d.Totals.Net, "40")
	if len(d.Monthly) != 2 {
		t.Errorf("expected 2 monthly rows, got %d", len(d.Monthly))
	}
	if len(d.Categories) != 1 || d.Categories[0].Category != "Food" {
		t.Errorf("unexpected categories %v", d.Categories)
	}
	if len(d.Transactions) != 3 {
		t.Errorf("expected 3 filtered transactions, got %d", len(d.Transactions))
	}
}
