package report

import (
	"testing"

	"finanze/internal/core"
)

// Shared builders for the engine tests. Amounts are cents.

func incomeOn(date core.Date, cents int64) core.Transaction {
	return core.NewIncome("ana", date, "income", core.Money{Cents: cents}, "Salary", "ACME", "MainBank", core.PlanSingle, nil)
}

func expenseOn(date core.Date, cents int64, status core.ExpenseStatus) core.Transaction {
	return core.NewExpense("ana", date, "expense", core.Money{Cents: cents}, "Groceries", false, 0, status)
}

func recurringExpense(date core.Date, cents int64, count int, status core.ExpenseStatus) core.Transaction {
	return core.NewExpense("ana", date, "recurring expense", core.Money{Cents: cents}, "Utilities", true, count, status)
}

func installmentIncome(date core.Date, cents int64, plan core.PaymentPlan, dates []core.Date) core.Transaction {
	return core.NewIncome("ana", date, "installment income", core.Money{Cents: cents}, "Product Sale", "Client", "MainBank", plan, dates)
}

func TestMonthlySummarySingleIncome(t *testing.T) {
	txs := []core.Transaction{incomeOn(core.NewDate(2024, 1, 15), 100000)}
	got := MonthlySummary(txs, YearMonth{2024, 1})
	if got.Income.Cents != 100000 || got.PaidExpense.Cents != 0 || got.UnpaidExpense.Cents != 0 {
		t.Fatalf("expected (1000,0,0), got %+v", got)
	}
	if got.RealBalance().Cents != 100000 || got.ProjectedBalance().Cents != 100000 {
		t.Fatalf("unexpected balances: real=%d projected=%d", got.RealBalance().Cents, got.ProjectedBalance().Cents)
	}
}

func TestMonthlySummaryExpenseSplit(t *testing.T) {
	txs := []core.Transaction{
		expenseOn(core.NewDate(2024, 1, 5), 20000, core.StatusPaid),
		expenseOn(core.NewDate(2024, 1, 10), 5000, core.StatusUnpaid),
	}
	got := MonthlySummary(txs, YearMonth{2024, 1})
	if got.Income.Cents != 0 || got.PaidExpense.Cents != 20000 || got.UnpaidExpense.Cents != 5000 {
		t.Fatalf("expected (0,200,50), got %+v", got)
	}
	if got.RealBalance().Cents != -20000 {
		t.Fatalf("expected real balance -200, got %d", got.RealBalance().Cents)
	}
	if got.ProjectedBalance().Cents != -25000 {
		t.Fatalf("expected projected balance -250, got %d", got.ProjectedBalance().Cents)
	}
}

func TestMonthlySummaryFiltersByMonth(t *testing.T) {
	txs := []core.Transaction{
		incomeOn(core.NewDate(2024, 1, 15), 100000),
		incomeOn(core.NewDate(2024, 2, 1), 40000),
		expenseOn(core.NewDate(2023, 12, 31), 9900, core.StatusPaid),
	}
	got := MonthlySummary(txs, YearMonth{2024, 1})
	if got.Income.Cents != 100000 || got.PaidExpense.Cents != 0 || got.UnpaidExpense.Cents != 0 {
		t.Fatalf("rows outside the month leaked in: %+v", got)
	}
}

func TestMonthlySummarySkipsMalformedRows(t *testing.T) {
	noDate := expenseOn(core.Date{}, 1000, core.StatusPaid)
	noAmount := expenseOn(core.NewDate(2024, 1, 3), 0, core.StatusPaid)
	noDetails := core.Transaction{
		Owner: "ana", Date: core.NewDate(2024, 1, 4), Description: "stray row",
		Amount: core.Money{Cents: 700}, Kind: core.KindExpense, Category: "Other",
	}
	oddStatus := expenseOn(core.NewDate(2024, 1, 5), 800, core.ExpenseStatus("pending"))
	good := expenseOn(core.NewDate(2024, 1, 6), 1500, core.StatusUnpaid)

	got := MonthlySummary([]core.Transaction{noDate, noAmount, noDetails, oddStatus, good}, YearMonth{2024, 1})
	if got.PaidExpense.Cents != 0 || got.UnpaidExpense.Cents != 1500 {
		t.Fatalf("malformed rows must be excluded, got %+v", got)
	}
}

func TestMonthlySummaryEmptyInput(t *testing.T) {
	got := MonthlySummary(nil, YearMonth{2024, 1})
	if got != (PeriodTotals{}) {
		t.Fatalf("expected zero totals, got %+v", got)
	}
}

func TestMonthlySummaryIdempotent(t *testing.T) {
	txs := []core.Transaction{
		incomeOn(core.NewDate(2024, 3, 1), 123456),
		expenseOn(core.NewDate(2024, 3, 2), 654, core.StatusPaid),
	}
	first := MonthlySummary(txs, YearMonth{2024, 3})
	second := MonthlySummary(txs, YearMonth{2024, 3})
	if first != second {
		t.Fatalf("repeated call differed: %+v vs %+v", first, second)
	}
}
