package report

import (
	"github.com/shopspring/decimal"

	"finanze/internal/core"
)

// ProjectionPoint is one month of the forward cash-flow estimate. Amounts
// are decimals because installment shares divide a transaction's total.
type ProjectionPoint struct {
	Month   YearMonth
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
}

// CashFlowProjection estimates income and expense for the month of today
// plus the next monthsAhead months, oldest first.
//
// Income counts in full at its own month's bucket. An installment-plan
// income (2x..6x) additionally spreads amount/len(dates) over each
// installment date strictly after today that lands in a bucket; the full
// amount at the transaction date is still counted, so installment income
// inside the window appears both whole and in shares. The duplication is
// intentional.
//
// An unpaid expense counts at its own month; a paid one only when dated on
// or after the first day of the current month. A recurring expense with
// count > 1 additionally projects its amount at date+i months (i in
// 1..count-1) for every occurrence after today that lands in a bucket.
func CashFlowProjection(transactions []core.Transaction, monthsAhead int, today core.Date) []ProjectionPoint {
	if monthsAhead < 0 || today.IsZero() {
		return nil
	}
	n := monthsAhead + 1
	points := make([]ProjectionPoint, n)
	index := make(map[YearMonth]int, n)
	ym := MonthOf(today)
	for i := range points {
		points[i] = ProjectionPoint{Month: ym, Income: decimal.Zero, Expense: decimal.Zero, Balance: decimal.Zero}
		index[ym] = i
		ym = ym.Next()
	}
	monthStart := MonthOf(today).First()

	for _, t := range transactions {
		if !usableDate(t) || !usableAmount(t) {
			continue
		}
		amount := decimal.New(t.Amount.Cents, -2)
		own, inRange := index[MonthOf(t.Date)]

		switch t.Kind {
		case core.KindIncome:
			if inRange {
				points[own].Income = points[own].Income.Add(amount)
			}
			if t.Income == nil {
				continue
			}
			if _, ok := t.Income.Plan.Installments(); !ok || len(t.Income.InstallmentDates) == 0 {
				continue
			}
			share := amount.Div(decimal.NewFromInt(int64(len(t.Income.InstallmentDates))))
			for _, due := range t.Income.InstallmentDates {
				if !due.After(today.Time) {
					continue
				}
				if i, ok := index[MonthOf(due)]; ok {
					points[i].Income = points[i].Income.Add(share)
				}
			}

		case core.KindExpense:
			if t.Expense == nil {
				continue
			}
			if inRange {
				switch t.Expense.Status {
				case core.StatusUnpaid:
					points[own].Expense = points[own].Expense.Add(amount)
				case core.StatusPaid:
					if !t.Date.Before(monthStart.Time) {
						points[own].Expense = points[own].Expense.Add(amount)
					}
				}
			}
			if t.Expense.Recurring && t.Expense.RecurrenceCount > 1 {
				for i := 1; i < t.Expense.RecurrenceCount; i++ {
					future := t.Date.AddMonths(i)
					if !future.After(today.Time) {
						continue
					}
					if bi, ok := index[MonthOf(future)]; ok {
						points[bi].Expense = points[bi].Expense.Add(amount)
					}
				}
			}
		}
	}

	for i := range points {
		points[i].Balance = points[i].Income.Sub(points[i].Expense)
	}
	return points
}
