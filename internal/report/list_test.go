package report

import (
	"testing"

	"finanze/internal/core"
)

func TestFilterTransactionsSearch(t *testing.T) {
	txs := []core.Transaction{
		core.NewExpense("ana", core.NewDate(2024, 1, 5), "Supermarket run", core.Money{Cents: 100}, "Groceries", false, 0, core.StatusPaid),
		core.NewExpense("ana", core.NewDate(2024, 1, 6), "Bus pass", core.Money{Cents: 200}, "Transport", false, 0, core.StatusPaid),
		core.NewIncome("ana", core.NewDate(2024, 1, 7), "January salary", core.Money{Cents: 300}, "Salary", "ACME", "MainBank", core.PlanSingle, nil),
	}
	got := FilterTransactions(txs, TransactionFilter{Search: "super"})
	if len(got) != 1 || got[0].Description != "Supermarket run" {
		t.Fatalf("description search failed: %+v", got)
	}
	// Search also matches the category, case-insensitively.
	got = FilterTransactions(txs, TransactionFilter{Search: "TRANSPORT"})
	if len(got) != 1 || got[0].Category != "Transport" {
		t.Fatalf("category search failed: %+v", got)
	}
	if got = FilterTransactions(txs, TransactionFilter{Search: "nothing here"}); len(got) != 0 {
		t.Fatalf("expected no matches, got %+v", got)
	}
}

func TestFilterTransactionsKindAndCategories(t *testing.T) {
	txs := []core.Transaction{
		expenseOn(core.NewDate(2024, 1, 5), 100, core.StatusPaid),
		incomeOn(core.NewDate(2024, 1, 6), 200),
	}
	got := FilterTransactions(txs, TransactionFilter{Kind: core.KindIncome})
	if len(got) != 1 || got[0].Kind != core.KindIncome {
		t.Fatalf("kind filter failed: %+v", got)
	}
	got = FilterTransactions(txs, TransactionFilter{Categories: []string{"Groceries", "Housing"}})
	if len(got) != 1 || got[0].Category != "Groceries" {
		t.Fatalf("category filter failed: %+v", got)
	}
}

func TestFilterTransactionsStatusAppliesToExpensesOnly(t *testing.T) {
	txs := []core.Transaction{
		expenseOn(core.NewDate(2024, 1, 5), 100, core.StatusPaid),
		expenseOn(core.NewDate(2024, 1, 6), 200, core.StatusUnpaid),
		incomeOn(core.NewDate(2024, 1, 7), 300),
	}
	got := FilterTransactions(txs, TransactionFilter{Statuses: []core.ExpenseStatus{core.StatusUnpaid}})
	if len(got) != 2 {
		t.Fatalf("income must pass a status filter untouched, got %+v", got)
	}
	if got[0].Expense == nil || got[0].Expense.Status != core.StatusUnpaid {
		t.Fatalf("expected the unpaid expense, got %+v", got[0])
	}
	if got[1].Kind != core.KindIncome {
		t.Fatalf("expected the income row, got %+v", got[1])
	}
}

func TestFilterTransactionsDateRange(t *testing.T) {
	txs := []core.Transaction{
		expenseOn(core.NewDate(2024, 1, 1), 100, core.StatusPaid),
		expenseOn(core.NewDate(2024, 1, 15), 200, core.StatusPaid),
		expenseOn(core.NewDate(2024, 2, 1), 300, core.StatusPaid),
	}
	got := FilterTransactions(txs, TransactionFilter{From: core.NewDate(2024, 1, 15), To: core.NewDate(2024, 2, 1)})
	if len(got) != 2 {
		t.Fatalf("inclusive range failed: %+v", got)
	}
	if got[0].Amount.Cents != 200 || got[1].Amount.Cents != 300 {
		t.Fatalf("wrong rows survived: %+v", got)
	}
}

func TestRecentTransactions(t *testing.T) {
	txs := []core.Transaction{
		expenseOn(core.NewDate(2024, 1, 1), 1, core.StatusPaid),
		expenseOn(core.NewDate(2024, 3, 1), 2, core.StatusPaid),
		expenseOn(core.NewDate(2024, 2, 1), 3, core.StatusPaid),
		expenseOn(core.NewDate(2024, 3, 1), 4, core.StatusPaid), // same day as #2
	}
	got := RecentTransactions(txs, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got))
	}
	// Newest first; same-day rows keep their original relative order.
	if got[0].Amount.Cents != 2 || got[1].Amount.Cents != 4 || got[2].Amount.Cents != 3 {
		t.Fatalf("wrong order: %+v", got)
	}
	if got := RecentTransactions(txs, 0); got != nil {
		t.Fatalf("expected nil for n=0, got %+v", got)
	}
	if got := RecentTransactions(nil, 10); len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
}

func TestSignedCents(t *testing.T) {
	if got := SignedCents(expenseOn(core.NewDate(2024, 1, 1), 1234, core.StatusPaid)); got != -1234 {
		t.Fatalf("expected -1234, got %d", got)
	}
	if got := SignedCents(incomeOn(core.NewDate(2024, 1, 1), 1234)); got != 1234 {
		t.Fatalf("expected 1234, got %d", got)
	}
}

func TestPayersAndBanks(t *testing.T) {
	txs := []core.Transaction{
		namedIncome("Zed", "SideBank", 100),
		namedIncome("ACME", "MainBank", 200),
		namedIncome("ACME", "MainBank", 300),
		namedIncome("", "", 400),
		expenseOn(core.NewDate(2024, 1, 1), 500, core.StatusPaid),
	}
	payers := Payers(txs)
	if len(payers) != 2 || payers[0] != "ACME" || payers[1] != "Zed" {
		t.Fatalf("expected sorted unique payers, got %v", payers)
	}
	banks := Banks(txs)
	if len(banks) != 2 || banks[0] != "MainBank" || banks[1] != "SideBank" {
		t.Fatalf("expected sorted unique banks, got %v", banks)
	}
}
