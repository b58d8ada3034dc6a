package report

import (
	"time"

	"finanze/internal/core"
)

// TrendPoint is one month of the historical income/expense series.
type TrendPoint struct {
	Month   YearMonth
	Income  core.Money
	Expense core.Money
	Balance core.Money
}

// MonthlyTrend buckets transactions into the monthsBack calendar months
// ending at the month of now, oldest first. Every month appears exactly
// once even with no data, so the slice always has monthsBack entries.
// Payment status is ignored: unpaid expenses count the same as paid ones.
func MonthlyTrend(transactions []core.Transaction, monthsBack int, now time.Time) []TrendPoint {
	if monthsBack < 1 {
		return nil
	}
	end := MonthOf(core.DateOf(now))
	start := end.AddMonths(1 - monthsBack)

	points := make([]TrendPoint, monthsBack)
	index := make(map[YearMonth]int, monthsBack)
	ym := start
	for i := range points {
		points[i] = TrendPoint{Month: ym}
		index[ym] = i
		ym = ym.Next()
	}

	for _, t := range transactions {
		if !usableDate(t) || !usableAmount(t) {
			continue
		}
		i, ok := index[MonthOf(t.Date)]
		if !ok {
			continue
		}
		switch t.Kind {
		case core.KindIncome:
			points[i].Income.Cents += t.Amount.Cents
		case core.KindExpense:
			points[i].Expense.Cents += t.Amount.Cents
		}
	}
	for i := range points {
		points[i].Balance.Cents = points[i].Income.Cents - points[i].Expense.Cents
	}
	return points
}
