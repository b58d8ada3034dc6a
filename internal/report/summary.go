package report

import "finanze/internal/core"

// PeriodTotals carries one month's income and expense sums, expenses split
// by payment status.
type PeriodTotals struct {
	Income        core.Money
	PaidExpense   core.Money
	UnpaidExpense core.Money
}

// RealBalance is income minus what has actually been paid.
func (p PeriodTotals) RealBalance() core.Money {
	return core.Money{Cents: p.Income.Cents - p.PaidExpense.Cents}
}

// ProjectedBalance is income minus all expenses, paid or not.
func (p PeriodTotals) ProjectedBalance() core.Money {
	return core.Money{Cents: p.Income.Cents - (p.PaidExpense.Cents + p.UnpaidExpense.Cents)}
}

// MonthlySummary sums the transactions dated in ym. Expenses without a
// readable status fall out of both expense sums.
func MonthlySummary(transactions []core.Transaction, ym YearMonth) PeriodTotals {
	var totals PeriodTotals
	for _, t := range transactions {
		if !usableDate(t) || !usableAmount(t) || MonthOf(t.Date) != ym {
			continue
		}
		switch t.Kind {
		case core.KindIncome:
			totals.Income.Cents += t.Amount.Cents
		case core.KindExpense:
			if t.Expense == nil {
				continue
			}
			switch t.Expense.Status {
			case core.StatusPaid:
				totals.PaidExpense.Cents += t.Amount.Cents
			case core.StatusUnpaid:
				totals.UnpaidExpense.Cents += t.Amount.Cents
			}
		}
	}
	return totals
}
