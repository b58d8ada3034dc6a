package report

import (
	"github.com/shopspring/decimal"

	"finanze/internal/core"
)

var hundred = decimal.NewFromInt(100)

// GoalProgress returns the goal's completion percentage, rounded half-up
// to two places and clamped to 100 when progress passes the target.
// Creation-time validation guarantees a positive target; a zero target
// from an unvalidated row yields 0 rather than a division error.
func GoalProgress(g core.Goal) decimal.Decimal {
	if g.Target.Cents <= 0 {
		return decimal.Zero
	}
	current := decimal.New(g.Current.Cents, -2)
	target := decimal.New(g.Target.Cents, -2)
	pct := current.Div(target).Mul(hundred).Round(2)
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}
