package ledger

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of decimal places storage keeps for amounts.
const MoneyPlaces = 2

// RoundMoney rounds d to MoneyPlaces, half away from zero as numeric
// columns do.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// IsMoney reports whether d fits in MoneyPlaces without rounding.
func IsMoney(d decimal.Decimal) bool {
	return d.Equal(RoundMoney(d))
}

// PaidAmount is total * paidCount / totalCount, rounded to cents.
// A non-positive totalCount yields zero.
func PaidAmount(total decimal.Decimal, paidCount, totalCount int) decimal.Decimal {
	if totalCount <= 0 {
		return decimal.Zero
	}
	return total.
		Mul(decimal.NewFromInt(int64(paidCount))).
		Div(decimal.NewFromInt(int64(totalCount))).
		Round(MoneyPlaces)
}

// Recompute derives Paid from Total, InstallmentsPaid and TotalInstallments.
// It must run before every create or update is sent to storage.
func (p *InstallmentPlan) Recompute() {
	p.Paid = PaidAmount(p.Total, p.InstallmentsPaid, p.TotalInstallments)
}

// Remaining is the amount still owed.
func (p InstallmentPlan) Remaining() decimal.Decimal {
	return p.Total.Sub(p.Paid)
}

// InstallmentAmount is the size of one installment.
func (p InstallmentPlan) InstallmentAmount() decimal.Decimal {
	return PaidAmount(p.Total, 1, p.TotalInstallments)
}

// Done reports whether every installment has been paid.
func (p InstallmentPlan) Done() bool {
	return p.TotalInstallments > 0 && p.InstallmentsPaid >= p.TotalInstallments
}
