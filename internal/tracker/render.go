package tracker

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"miplata/internal/format"
	"miplata/internal/ledger"
)

type styles struct {
	renderer  *lipgloss.Renderer
	title     lipgloss.Style
	muted     lipgloss.Style
	income    lipgloss.Style
	expense   lipgloss.Style
	success   lipgloss.Style
	warning   lipgloss.Style
	errorText lipgloss.Style
	alert     lipgloss.Style
	prompt    lipgloss.Style
	box       lipgloss.Style
	cell      lipgloss.Style
	header    lipgloss.Style
	border    lipgloss.Style
}

// newStyles binds the styles to out, so colors are dropped when out is not
// a terminal.
func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		renderer:  r,
		title:     r.NewStyle().Bold(true),
		muted:     r.NewStyle().Foreground(lipgloss.Color("#828282")),
		income:    r.NewStyle().Foreground(lipgloss.Color("#22c55e")),
		expense:   r.NewStyle().Foreground(lipgloss.Color("#ef4444")),
		success:   r.NewStyle().Foreground(lipgloss.Color("#22c55e")),
		warning:   r.NewStyle().Foreground(lipgloss.Color("#eab308")),
		errorText: r.NewStyle().Foreground(lipgloss.Color("#ef4444")),
		alert:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("#ef4444")).Border(lipgloss.RoundedBorder()).Padding(0, 1),
		prompt:    r.NewStyle().Foreground(lipgloss.Color("#6366f1")),
		box:       r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		cell:      r.NewStyle().Padding(0, 1),
		header:    r.NewStyle().Bold(true).Padding(0, 1),
		border:    r.NewStyle().Foreground(lipgloss.Color("#828282")),
	}
}

func (a *App) money(d decimal.Decimal) string {
	return format.Currency(d, a.locale, a.currency)
}

func (a *App) signed(kind ledger.Kind, amount decimal.Decimal) string {
	s := a.money(kind.Signed(amount))
	if kind == ledger.KindIncome {
		return a.styles.income.Render(s)
	}
	return a.styles.expense.Render(s)
}

// grid renders rows under headers. Columns listed in right are right-aligned.
func (a *App) grid(headers []string, rows [][]string, right ...int) string {
	alignRight := make(map[int]bool, len(right))
	for _, c := range right {
		alignRight[c] = true
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(a.styles.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := a.styles.cell
			if row == table.HeaderRow {
				s = a.styles.header
			}
			if alignRight[col] {
				s = s.Align(lipgloss.Right)
			}
			return s
		})
	return t.String()
}

func (a *App) filterLabel(f ledger.Filter) string {
	var window string
	switch f.Range {
	case ledger.RangeMonth:
		window = a.label(f.Month)
	case ledger.Range3Months:
		window = "last 3 months"
	case ledger.Range6Months:
		window = "last 6 months"
	default:
		window = "last 12 months"
	}
	if len(f.Categories) > 0 {
		window += " · " + strings.Join(f.Categories, ", ")
	}
	return window
}

func (a *App) renderDashboard(d ledger.Dashboard) string {
	var b strings.Builder

	net := a.styles.income
	if d.Totals.Net.IsNegative() {
		net = a.styles.expense
	}
	cards := fmt.Sprintf("%s %s\n%s %s   %s %s   %s %s",
		a.styles.title.Render("Balance"), a.money(d.TotalBalance),
		a.styles.muted.Render("Income"), a.styles.income.Render(a.money(d.Totals.Income)),
		a.styles.muted.Render("Expense"), a.styles.expense.Render(a.money(d.Totals.Expense)),
		a.styles.muted.Render("Net"), net.Render(a.money(d.Totals.Net)),
	)
	b.WriteString(a.styles.title.Render("Summary: " + a.filterLabel(d.Filter)))
	b.WriteString("\n")
	b.WriteString(a.styles.box.Render(cards))
	b.WriteString("\n")

	if len(d.Monthly) == 0 {
		b.WriteString(a.styles.muted.Render("No transactions in this window."))
		return b.String()
	}

	rows := make([][]string, len(d.Monthly))
	for i, m := range d.Monthly {
		rows[i] = []string{m.Label, a.money(m.Income), a.money(m.Expense), a.money(m.Balance)}
	}
	b.WriteString(a.grid([]string{"Month", "Income", "Expense", "Balance"}, rows, 1, 2, 3))
	b.WriteString("\n")
	b.WriteString(a.expenseChart(d.Monthly))

	if len(d.Categories) > 0 {
		rows = make([][]string, len(d.Categories))
		for i, c := range d.Categories {
			pct := format.Percent(c.Amount, d.Totals.Expense)
			rows[i] = []string{c.Category, a.money(c.Amount), pct.StringFixed(1) + "%"}
		}
		b.WriteString("\n")
		b.WriteString(a.grid([]string{"Category", "Spent", "Share"}, rows, 1, 2))
	}
	return b.String()
}

// shortID is the random tail of an id; uuidv7 ids share their time prefix.
func shortID(id string) string {
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}

func (a *App) renderAccounts(accounts []ledger.Account) string {
	if len(accounts) == 0 {
		return a.styles.muted.Render("No accounts yet. Try: account add Banco 1000")
	}
	rows := make([][]string, len(accounts))
	for i, acct := range accounts {
		swatch := a.styles.renderer.NewStyle().Foreground(lipgloss.Color(acct.Color)).Render("●")
		rows[i] = []string{shortID(acct.ID), swatch + " " + acct.Name, a.money(acct.Balance)}
	}
	rows = append(rows, []string{"", a.styles.title.Render("Total"), a.money(ledger.TotalBalance(accounts))})
	return a.grid([]string{"ID", "Account", "Balance"}, rows, 2)
}

func (a *App) renderTransactions(txs []ledger.Transaction, accounts []ledger.Account) string {
	if len(txs) == 0 {
		return a.styles.muted.Render("No transactions in this window.")
	}
	names := make(map[string]string, len(accounts))
	for _, acct := range accounts {
		names[acct.ID] = acct.Name
	}
	rows := make([][]string, len(txs))
	for i, t := range txs {
		account := names[t.AccountID]
		if account == "" {
			account = shortID(t.AccountID)
		}
		rows[i] = []string{shortID(t.ID), t.Date, t.Description, t.Category, account, a.signed(t.Kind, t.Amount)}
	}
	return a.grid([]string{"ID", "Date", "Description", "Category", "Account", "Amount"}, rows, 5)
}

func (a *App) renderPlans(plans []ledger.InstallmentPlan) string {
	if len(plans) == 0 {
		return a.styles.muted.Render("No installment plans. Try: plan add name=TV total=900000 n=12")
	}
	rows := make([][]string, len(plans))
	for i, p := range plans {
		progress := fmt.Sprintf("%d/%d", p.InstallmentsPaid, p.TotalInstallments)
		pct := format.Percent(p.Paid, p.Total).StringFixed(0) + "%"
		if p.Done() {
			pct = a.styles.success.Render(pct)
		}
		rows[i] = []string{
			shortID(p.ID), p.Name, progress,
			a.money(p.InstallmentAmount()), a.money(p.Paid), a.money(p.Remaining()), pct,
		}
	}
	return a.grid([]string{"ID", "Plan", "Paid", "Installment", "Paid so far", "Remaining", "Progress"}, rows, 3, 4, 5, 6)
}

const chartWidth = 30

// expenseChart draws one bar per month scaled to the largest expense.
func (a *App) expenseChart(rows []ledger.MonthlyRow) string {
	peak := decimal.Zero
	width := 0
	for _, m := range rows {
		if m.Expense.GreaterThan(peak) {
			peak = m.Expense
		}
		if len(m.Label) > width {
			width = len(m.Label)
		}
	}
	if peak.IsZero() {
		return ""
	}

	var b strings.Builder
	for _, m := range rows {
		n := int(m.Expense.Mul(decimal.NewFromInt(chartWidth)).Div(peak).Round(0).IntPart())
		fmt.Fprintf(&b, "%-*s %s %s\n", width, m.Label,
			a.styles.expense.Render(strings.Repeat("█", n)),
			a.styles.muted.Render(format.Thousands(m.Expense)))
	}
	return b.String()
}
