package analytics

import (
	"github.com/shopspring/decimal"
)

var (
	hundred        = decimal.NewFromInt(100)
	alertThreshold = decimal.NewFromInt(80)
)

// Progress is the spend-to-limit view of a single budget.
type Progress struct {
	Spent     decimal.Decimal
	Remaining decimal.Decimal
	// Percentage is nil when the budget amount is zero.
	Percentage *decimal.Decimal
	Alert      bool
}

// ComputeProgress derives remaining, percentage and alert from a budget
// amount and what was spent against it. Remaining may be negative. With a
// zero amount the percentage is undefined and the alert fires on any
// positive spend.
func ComputeProgress(amount, spent decimal.Decimal) Progress {
	p := Progress{
		Spent:     spent,
		Remaining: amount.Sub(spent),
	}

	if amount.IsZero() {
		p.Alert = spent.IsPositive()
		return p
	}

	pct := spent.Mul(hundred).Div(amount)
	p.Percentage = &pct
	p.Alert = pct.GreaterThanOrEqual(alertThreshold)
	return p
}
