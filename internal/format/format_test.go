package format

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		locale string
		code   string
		want   string
	}{
		{"es-AR groups with dots", "1234567", "es-AR", "ARS", "$ 1.234.567"},
		{"drops cents", "1234567.40", "es-AR", "ARS", "$ 1.234.567"},
		{"rounds half away from zero", "999999.5", "es-AR", "ARS", "$ 1.000.000"},
		{"negative sign leads", "-2500000", "es-AR", "ARS", "-$ 2.500.000"},
		{"zero", "0", "es-AR", "ARS", "$ 0"},
		{"en-US groups with commas", "1234567", "en-US", "USD", "$ 1,234,567"},
		{"unknown code shown as is", "12", "es-AR", "XYZ1", "XYZ1 12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Currency(decimal.RequireFromString(tt.amount), tt.locale, tt.code)
			if got != tt.want {
				t.Errorf("Currency(%s, %s, %s) = %q, want %q", tt.amount, tt.locale, tt.code, got, tt.want)
			}
		})
	}
}

func TestThousands(t *testing.T) {
	if got := Thousands(decimal.RequireFromString("12400")); got != "$12k" {
		t.Errorf("expected $12k, got %q", got)
	}
	if got := Thousands(decimal.Zero); got != "$0k" {
		t.Errorf("expected $0k, got %q", got)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		part, total, want string
	}{
		{"25", "100", "25"},
		{"1", "3", "33.3"},
		{"50", "0", "0"},
		{"0", "0", "0"},
	}
	for _, tt := range tests {
		got := Percent(decimal.RequireFromString(tt.part), decimal.RequireFromString(tt.total))
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("Percent(%s, %s) = %s, want %s", tt.part, tt.total, got, tt.want)
		}
	}
}

func TestMonthLabel(t *testing.T) {
	tests := []struct {
		month, locale, want string
	}{
		{"2024-01", "es-AR", "ene 24"},
		{"2023-12", "es-AR", "dic 23"},
		{"2024-09", "es", "sept 24"},
		{"2024-02", "pt-BR", "fev 24"},
		{"2024-03", "en-US", "Mar 24"},
		{"2024-03", "de-DE", "Mar 24"},
		{"garbage", "es-AR", "garbage"},
	}
	for _, tt := range tests {
		if got := MonthLabel(tt.month, tt.locale); got != tt.want {
			t.Errorf("MonthLabel(%q, %q) = %q, want %q", tt.month, tt.locale, got, tt.want)
		}
	}

	label := MonthLabeler("es-AR")
	if got := label("2024-05"); got != "may 24" {
		t.Errorf("expected bound labeler to render may 24, got %q", got)
	}
}
