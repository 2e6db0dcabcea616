// Package format renders amounts, months and shares for display.
package format

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Default display settings.
const (
	DefaultLocale   = "es-AR"
	DefaultCurrency = "ARS"
)

var hundred = decimal.NewFromInt(100)

// Currency formats amount in the given locale with the currency's narrow
// symbol and no decimal places, e.g. "$ 1.234.567" for es-AR and ARS.
// An unknown currency code is shown as is.
func Currency(amount decimal.Decimal, locale, code string) string {
	tag := language.Make(locale)
	p := message.NewPrinter(tag)

	symbol := code
	if unit, err := currency.ParseISO(code); err == nil {
		symbol = p.Sprint(currency.NarrowSymbol(unit))
	}

	rounded := amount.Round(0)
	digits := p.Sprint(number.Decimal(rounded.Abs().InexactFloat64(), number.MaxFractionDigits(0)))

	var b strings.Builder
	if rounded.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(symbol)
	b.WriteByte(' ')
	b.WriteString(digits)
	return b.String()
}

// Thousands renders a chart axis value as whole thousands, e.g. "$12k".
func Thousands(amount decimal.Decimal) string {
	return "$" + amount.Div(decimal.NewFromInt(1000)).Round(0).String() + "k"
}

// Percent returns part as a percentage of total. A zero total yields zero
// instead of dividing by zero.
func Percent(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Mul(hundred).Div(total).Round(1)
}

var shortMonths = map[language.Base][12]string{
	language.MustParseBase("es"): {"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"},
	language.MustParseBase("pt"): {"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"},
	language.MustParseBase("en"): {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
}

// MonthLabel renders a YYYY-MM key as a short month and two-digit year in
// the locale's language, e.g. "ene 24". Unsupported languages fall back to
// English; a malformed key is returned unchanged.
func MonthLabel(month, locale string) string {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return month
	}
	base, _ := language.Make(locale).Base()
	names, ok := shortMonths[base]
	if !ok {
		names = shortMonths[language.MustParseBase("en")]
	}
	return names[t.Month()-1] + " " + t.Format("06")
}

// MonthLabeler returns MonthLabel bound to locale.
func MonthLabeler(locale string) func(month string) string {
	return func(month string) string {
		return MonthLabel(month, locale)
	}
}
