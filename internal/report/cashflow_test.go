package report

import (
	"testing"

	"github.com/shopspring/decimal"

	"finanze/internal/core"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func checkPoint(t *testing.T, p ProjectionPoint, month YearMonth, income, expense string) {
	t.Helper()
	if p.Month != month {
		t.Fatalf("expected bucket %v, got %v", month, p.Month)
	}
	if !p.Income.Equal(dec(income)) {
		t.Fatalf("bucket %v: expected income %s, got %s", month, income, p.Income)
	}
	if !p.Expense.Equal(dec(expense)) {
		t.Fatalf("bucket %v: expected expense %s, got %s", month, expense, p.Expense)
	}
	if !p.Balance.Equal(p.Income.Sub(p.Expense)) {
		t.Fatalf("bucket %v: balance %s is not income-expense", month, p.Balance)
	}
}

func TestCashFlowProjectionInstallmentIncomeCountsTwice(t *testing.T) {
	today := core.NewDate(2024, 1, 20)
	tx := installmentIncome(core.NewDate(2024, 1, 15), 30000, core.PaymentPlan("3x"),
		[]core.Date{core.NewDate(2024, 2, 1), core.NewDate(2024, 3, 1), core.NewDate(2024, 4, 1)})

	got := CashFlowProjection([]core.Transaction{tx}, 3, today)
	if len(got) != 4 {
		t.Fatalf("expected 4 buckets, got %d", len(got))
	}
	// The full amount lands in the transaction's own month AND each future
	// installment adds its share on top. The duplication is the contract.
	checkPoint(t, got[0], YearMonth{2024, 1}, "300", "0")
	checkPoint(t, got[1], YearMonth{2024, 2}, "100", "0")
	checkPoint(t, got[2], YearMonth{2024, 3}, "100", "0")
	checkPoint(t, got[3], YearMonth{2024, 4}, "100", "0")
}

func TestCashFlowProjectionRecurringPaidExpense(t *testing.T) {
	today := core.NewDate(2024, 1, 20)
	tx := recurringExpense(core.NewDate(2024, 1, 10), 10000, 3, core.StatusPaid)

	got := CashFlowProjection([]core.Transaction{tx}, 3, today)
	checkPoint(t, got[0], YearMonth{2024, 1}, "0", "100") // paid this month
	checkPoint(t, got[1], YearMonth{2024, 2}, "0", "100") // i=1 occurrence
	checkPoint(t, got[2], YearMonth{2024, 3}, "0", "100") // i=2 occurrence
	checkPoint(t, got[3], YearMonth{2024, 4}, "0", "0")
}

func TestCashFlowProjectionPaidExpenseFromPriorMonthExcluded(t *testing.T) {
	today := core.NewDate(2024, 1, 20)
	txs := []core.Transaction{
		expenseOn(core.NewDate(2023, 12, 28), 9900, core.StatusPaid), // settled last month, excluded
		expenseOn(core.NewDate(2024, 1, 5), 4000, core.StatusPaid),   // current month, counts
		expenseOn(core.NewDate(2024, 2, 10), 6000, core.StatusPaid),  // future month, counts
	}
	got := CashFlowProjection(txs, 3, today)
	checkPoint(t, got[0], YearMonth{2024, 1}, "0", "40")
	checkPoint(t, got[1], YearMonth{2024, 2}, "0", "60")
}

func TestCashFlowProjectionUnpaidExpenses(t *testing.T) {
	today := core.NewDate(2024, 1, 20)
	txs := []core.Transaction{
		expenseOn(core.NewDate(2024, 1, 25), 1500, core.StatusUnpaid),
		expenseOn(core.NewDate(2024, 3, 5), 2500, core.StatusUnpaid),
		expenseOn(core.NewDate(2023, 12, 1), 9900, core.StatusUnpaid), // before the window
		expenseOn(core.NewDate(2024, 9, 1), 9900, core.StatusUnpaid),  // past the window
	}
	got := CashFlowProjection(txs, 3, today)
	checkPoint(t, got[0], YearMonth{2024, 1}, "0", "15")
	checkPoint(t, got[1], YearMonth{2024, 2}, "0", "0")
	checkPoint(t, got[2], YearMonth{2024, 3}, "0", "25")
	checkPoint(t, got[3], YearMonth{2024, 4}, "0", "0")
}

func TestCashFlowProjectionInstallmentsOnlyAfterToday(t *testing.T) {
	today := core.NewDate(2024, 1, 20)
	tx := installmentIncome(core.NewDate(2024, 1, 10), 20000, core.PaymentPlan("2x"),
		[]core.Date{core.NewDate(2024, 1, 10), core.NewDate(2024, 2, 10)})

	got := CashFlowProjection([]core.Transaction{tx}, 3, today)
	// Own month gets the full 200; only the Feb installment is still ahead.
	checkPoint(t, got[0], YearMonth{2024, 1}, "200", "0")
	checkPoint(t, got[1], YearMonth{2024, 2}, "100", "0")
}

func TestCashFlowProjectionInstallmentOnTodayExcluded(t *testing.T) {
	today := core.NewDate(2024, 2, 1)
	tx := installmentIncome(core.NewDate(2024, 1, 1), 20000, core.PaymentPlan("2x"),
		[]core.Date{core.NewDate(2024, 1, 1), core.NewDate(2024, 2, 1)})

	got := CashFlowProjection([]core.Transaction{tx}, 3, today)
	// "Strictly after today": an installment due exactly today adds nothing.
	checkPoint(t, got[0], YearMonth{2024, 2}, "0", "0")
}

func TestCashFlowProjectionMoreThanSixSpreadsNothing(t *testing.T) {
	today := core.NewDate(2024, 1, 20)
	tx := installmentIncome(core.NewDate(2024, 1, 10), 120000, core.PlanMoreThanSix, nil)
	// Even with stray dates on a more-than-six row, no shares are projected.
	tx.Income.InstallmentDates = []core.Date{core.NewDate(2024, 2, 10), core.NewDate(2024, 3, 10)}

	got := CashFlowProjection([]core.Transaction{tx}, 3, today)
	checkPoint(t, got[0], YearMonth{2024, 1}, "1200", "0")
	checkPoint(t, got[1], YearMonth{2024, 2}, "0", "0")
	checkPoint(t, got[2], YearMonth{2024, 3}, "0", "0")
}

func TestCashFlowProjectionFractionalShares(t *testing.T) {
	today := core.NewDate(2024, 1, 20)
	tx := installmentIncome(core.NewDate(2024, 1, 10), 10000, core.PaymentPlan("3x"),
		[]core.Date{core.NewDate(2024, 2, 10), core.NewDate(2024, 3, 10), core.NewDate(2024, 4, 10)})

	got := CashFlowProjection([]core.Transaction{tx}, 3, today)
	for _, i := range []int{1, 2, 3} {
		if s := got[i].Income.StringFixed(2); s != "33.33" {
			t.Fatalf("bucket %d: expected share 33.33, got %s", i, s)
		}
	}
}

func TestCashFlowProjectionRecurrenceBoundaries(t *testing.T) {
	today := core.NewDate(2024, 1, 20)
	// Dated 2023-12-20: own month is out of range, the i=1 occurrence lands
	// exactly on today (excluded, strictly-after), the i=2 occurrence counts.
	tx := recurringExpense(core.NewDate(2023, 12, 20), 5000, 3, core.StatusUnpaid)

	got := CashFlowProjection([]core.Transaction{tx}, 3, today)
	checkPoint(t, got[0], YearMonth{2024, 1}, "0", "0")
	checkPoint(t, got[1], YearMonth{2024, 2}, "0", "50")
	checkPoint(t, got[2], YearMonth{2024, 3}, "0", "0")
}

func TestCashFlowProjectionRecurrenceBeyondWindowDropped(t *testing.T) {
	today := core.NewDate(2024, 1, 20)
	tx := recurringExpense(core.NewDate(2024, 1, 10), 2000, 24, core.StatusUnpaid)

	got := CashFlowProjection([]core.Transaction{tx}, 3, today)
	checkPoint(t, got[0], YearMonth{2024, 1}, "0", "20")
	checkPoint(t, got[1], YearMonth{2024, 2}, "0", "20")
	checkPoint(t, got[2], YearMonth{2024, 3}, "0", "20")
	checkPoint(t, got[3], YearMonth{2024, 4}, "0", "20")
}

func TestCashFlowProjectionEmptyInput(t *testing.T) {
	today := core.NewDate(2024, 1, 20)
	got := CashFlowProjection(nil, 3, today)
	if len(got) != 4 {
		t.Fatalf("expected 4 zero buckets, got %d", len(got))
	}
	for i, p := range got {
		if !p.Income.IsZero() || !p.Expense.IsZero() || !p.Balance.IsZero() {
			t.Fatalf("bucket %d not zero: %+v", i, p)
		}
	}
	if got[0].Month != (YearMonth{2024, 1}) || got[3].Month != (YearMonth{2024, 4}) {
		t.Fatalf("bucket months wrong: %v .. %v", got[0].Month, got[3].Month)
	}
}

func TestCashFlowProjectionZeroMonthsAhead(t *testing.T) {
	today := core.NewDate(2024, 1, 20)
	got := CashFlowProjection([]core.Transaction{incomeOn(core.NewDate(2024, 1, 2), 12345)}, 0, today)
	if len(got) != 1 {
		t.Fatalf("expected a single bucket, got %d", len(got))
	}
	checkPoint(t, got[0], YearMonth{2024, 1}, "123.45", "0")
}

func TestCashFlowProjectionIdempotent(t *testing.T) {
	today := core.NewDate(2024, 1, 20)
	txs := []core.Transaction{
		installmentIncome(core.NewDate(2024, 1, 10), 10000, core.PaymentPlan("3x"),
			[]core.Date{core.NewDate(2024, 2, 10), core.NewDate(2024, 3, 10), core.NewDate(2024, 4, 10)}),
		recurringExpense(core.NewDate(2024, 1, 10), 10000, 3, core.StatusPaid),
	}
	first := CashFlowProjection(txs, 3, today)
	second := CashFlowProjection(txs, 3, today)
	for i := range first {
		if first[i].Month != second[i].Month ||
			first[i].Income.String() != second[i].Income.String() ||
			first[i].Expense.String() != second[i].Expense.String() ||
			first[i].Balance.String() != second[i].Balance.String() {
			t.Fatalf("bucket %d differs between calls: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestCashFlowProjectionSkipsMalformedRows(t *testing.T) {
	today := core.NewDate(2024, 1, 20)
	noDetails := core.Transaction{
		Owner: "ana", Date: core.NewDate(2024, 1, 5), Description: "stray",
		Amount: core.Money{Cents: 5000}, Kind: core.KindExpense, Category: "Other",
	}
	txs := []core.Transaction{
		expenseOn(core.Date{}, 7000, core.StatusUnpaid),
		expenseOn(core.NewDate(2024, 1, 5), 0, core.StatusUnpaid),
		noDetails,
		expenseOn(core.NewDate(2024, 1, 6), 900, core.StatusUnpaid),
	}
	got := CashFlowProjection(txs, 3, today)
	checkPoint(t, got[0], YearMonth{2024, 1}, "0", "9")
}
