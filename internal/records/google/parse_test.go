package google

import (
	"errors"
	"testing"

	"finanze/internal/core"
	"finanze/internal/records"
)

func TestTransactionRowRoundTrip(t *testing.T) {
	plan, err := core.InstallmentPlan(3)
	if err != nil {
		t.Fatalf("InstallmentPlan(3) error = %v", err)
	}

	in := core.Transaction{
		ID:          14,
		Owner:       "ana",
		Date:        core.NewDate(2025, 3, 10),
		Description: "march salary",
		Amount:      core.Money{Cents: 250075},
		Kind:        core.KindIncome,
		Category:    "Salary",
		Income: &core.IncomeDetails{
			Payer: "Acme",
			Bank:  "N26",
			Plan:  plan,
			InstallmentDates: []core.Date{
				core.NewDate(2025, 3, 10),
				core.NewDate(2025, 4, 10),
				core.NewDate(2025, 5, 10),
			},
		},
	}

	got, err := parseTransactionRow(toStrings(transactionToRow(in)))
	if err != nil {
		t.Fatalf("parseTransactionRow() error = %v", err)
	}

	if got.ID != in.ID || got.Owner != in.Owner || got.Description != in.Description {
		t.Fatalf("round trip = %+v, want %+v", got, in)
	}
	if got.Amount.Cents != 250075 {
		t.Fatalf("amount = %d, want 250075", got.Amount.Cents)
	}
	if got.Income == nil || got.Income.Plan != plan {
		t.Fatalf("income details = %+v", got.Income)
	}
	if len(got.Income.InstallmentDates) != 3 {
		t.Fatalf("installment dates = %d, want 3", len(got.Income.InstallmentDates))
	}
	if !got.Income.InstallmentDates[2].Equal(core.NewDate(2025, 5, 10).Time) {
		t.Fatalf("third installment = %v", got.Income.InstallmentDates[2])
	}
}

func TestExpenseRowRoundTrip(t *testing.T) {
	in := core.Transaction{
		ID:          9,
		Owner:       "ana",
		Date:        core.NewDate(2025, 2, 1),
		Description: "gym membership",
		Amount:      core.Money{Cents: 4500},
		Kind:        core.KindExpense,
		Category:    "Health",
		Expense: &core.ExpenseDetails{
			Recurring:       true,
			RecurrenceCount: 12,
			Status:          core.StatusPaid,
		},
	}

	got, err := parseTransactionRow(toStrings(transactionToRow(in)))
	if err != nil {
		t.Fatalf("parseTransactionRow() error = %v", err)
	}
	if got.Expense == nil {
		t.Fatal("expense details missing")
	}
	if !got.Expense.Recurring || got.Expense.RecurrenceCount != 12 || got.Expense.Status != core.StatusPaid {
		t.Fatalf("expense details = %+v", got.Expense)
	}
	if got.Income != nil {
		t.Fatalf("expense row carries income details: %+v", got.Income)
	}
}

func TestParseTransactionRowBadInput(t *testing.T) {
	base := []string{"5", "ana", "expense", "2025-02-01", "coffee", "3.50", "Food"}

	tests := []struct {
		name   string
		mutate func([]string) []string
	}{
		{"short row", func(c []string) []string { return c[:4] }},
		{"bad id", func(c []string) []string { c[0] = "abc"; return c }},
		{"missing owner", func(c []string) []string { c[1] = " "; return c }},
		{"bad kind", func(c []string) []string { c[2] = "transfer"; return c }},
		{"bad date", func(c []string) []string { c[3] = "02/01/2025"; return c }},
		{"bad amount", func(c []string) []string { c[5] = "three euros"; return c }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols := make([]string, len(base))
			copy(cols, base)
			if _, err := parseTransactionRow(tt.mutate(cols)); err == nil {
				t.Error("parseTransactionRow() expected error, got nil")
			}
		})
	}
}

func TestParseTransactionRowDefaults(t *testing.T) {
	// Bare expense row, detail columns missing entirely.
	got, err := parseTransactionRow([]string{"5", "ana", "expense", "2025-02-01", "coffee", "3.50", "Food"})
	if err != nil {
		t.Fatalf("parseTransactionRow() error = %v", err)
	}
	if got.Expense == nil || got.Expense.Status != core.StatusUnpaid {
		t.Fatalf("expense defaults = %+v", got.Expense)
	}

	// Bare income row defaults to a single payment.
	got, err = parseTransactionRow([]string{"6", "ana", "income", "2025-02-01", "refund", "12.00", "Other"})
	if err != nil {
		t.Fatalf("parseTransactionRow() error = %v", err)
	}
	if got.Income == nil || got.Income.Plan != core.PlanSingle {
		t.Fatalf("income defaults = %+v", got.Income)
	}
}

func TestGoalRowRoundTrip(t *testing.T) {
	in := core.Goal{
		ID:          4,
		Owner:       "ana",
		Description: "emergency fund",
		Target:      core.Money{Cents: 500000},
		Current:     core.Money{Cents: 123450},
		Category:    "Savings",
		DueDate:     core.NewDate(2026, 6, 30),
		Status:      core.GoalInProgress,
	}

	got, err := parseGoalRow(toStrings(goalToRow(in)))
	if err != nil {
		t.Fatalf("parseGoalRow() error = %v", err)
	}
	if got.ID != 4 || got.Target.Cents != 500000 || got.Current.Cents != 123450 {
		t.Fatalf("round trip = %+v", got)
	}
	if !got.DueDate.Equal(in.DueDate.Time) || got.Status != core.GoalInProgress {
		t.Fatalf("round trip = %+v", got)
	}
}

func TestFormatCents(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{100, "1.00"},
		{123456, "1234.56"},
		{-250, "-2.50"},
	}
	for _, tt := range tests {
		if got := formatCents(tt.cents); got != tt.want {
			t.Errorf("formatCents(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestParseEurosToCents(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"12.34", 1234, true},
		{"12,34", 1234, true},
		{"0.05", 5, true},
		{"1234", 123400, true},
		{" 7.5 ", 750, true},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseEurosToCents(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseEurosToCents(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSplitDates(t *testing.T) {
	dates, err := splitDates("2025-01-15;2025-02-15; 2025-03-15")
	if err != nil {
		t.Fatalf("splitDates() error = %v", err)
	}
	if len(dates) != 3 {
		t.Fatalf("got %d dates, want 3", len(dates))
	}
	if !dates[1].Equal(core.NewDate(2025, 2, 15).Time) {
		t.Fatalf("second date = %v", dates[1])
	}

	if _, err := splitDates("2025-01-15;soon"); err == nil {
		t.Error("splitDates() with junk expected error")
	}

	empty, err := splitDates("  ")
	if err != nil || empty != nil {
		t.Fatalf("splitDates(blank) = (%v, %v)", empty, err)
	}
}

func TestParseUserRow(t *testing.T) {
	u, err := parseUserRow([]string{"ana", "$2a$10$hash", "2025-01-01T10:00:00Z"})
	if err != nil {
		t.Fatalf("parseUserRow() error = %v", err)
	}
	if u.Username != "ana" || u.PasswordHash != "$2a$10$hash" || u.CreatedAt.IsZero() {
		t.Fatalf("user = %+v", u)
	}

	if _, err := parseUserRow([]string{" ", "hash"}); err == nil {
		t.Error("parseUserRow() with blank username expected error")
	}
	if _, err := parseUserRow([]string{"ana"}); err == nil {
		t.Error("parseUserRow() with short row expected error")
	}
}

func TestParseErrorsAreNotNotFound(t *testing.T) {
	_, err := parseTransactionRow([]string{"x"})
	if errors.Is(err, records.ErrNotFound) {
		t.Fatal("parse errors must not masquerade as not-found")
	}
}
