package core

import (
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateAddMonthsClamps(t *testing.T) {
	cases := []struct {
		in   Date
		n    int
		want Date
	}{
		{NewDate(2024, 1, 15), 1, NewDate(2024, 2, 15)},
		{NewDate(2024, 1, 31), 1, NewDate(2024, 2, 29)}, // leap year clamp
		{NewDate(2023, 1, 31), 1, NewDate(2023, 2, 28)},
		{NewDate(2024, 11, 30), 3, NewDate(2025, 2, 28)},
		{NewDate(2024, 12, 10), 1, NewDate(2025, 1, 10)},
		{NewDate(2024, 3, 31), -1, NewDate(2024, 2, 29)},
		{NewDate(2024, 1, 10), -1, NewDate(2023, 12, 10)},
		{NewDate(2024, 5, 10), 0, NewDate(2024, 5, 10)},
	}
	for i, tc := range cases {
		if got := tc.in.AddMonths(tc.n); !got.Equal(tc.want.Time) {
			t.Fatalf("case %d: %v +%d months = %v, want %v", i, tc.in, tc.n, got, tc.want)
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
}

func TestInstallmentPlan(t *testing.T) {
	p, err := InstallmentPlan(3)
	if err != nil || p != PaymentPlan("3x") {
		t.Fatalf("expected 3x, got %q (err=%v)", p, err)
	}
	if n, ok := p.Installments(); !ok || n != 3 {
		t.Fatalf("expected (3,true), got (%d,%v)", n, ok)
	}
	if p, err := InstallmentPlan(9); err != nil || p != PlanMoreThanSix {
		t.Fatalf("expected more_than_six for 9, got %q (err=%v)", p, err)
	}
	if _, err := InstallmentPlan(1); err == nil {
		t.Fatalf("expected error for 1 installment")
	}
	if _, ok := PlanSingle.Installments(); ok {
		t.Fatalf("single payment must not report installments")
	}
	if !PlanSingle.Valid() || !PlanMoreThanSix.Valid() || !PaymentPlan("2x").Valid() {
		t.Fatalf("expected plans to be valid")
	}
	if PaymentPlan("7x").Valid() || PaymentPlan("weekly").Valid() {
		t.Fatalf("expected plans to be invalid")
	}
}

func TestDefaultInstallmentDates(t *testing.T) {
	got := DefaultInstallmentDates(NewDate(2024, 1, 31), 3)
	want := []Date{NewDate(2024, 1, 31), NewDate(2024, 2, 29), NewDate(2024, 3, 31)}
	if len(got) != len(want) {
		t.Fatalf("expected %d dates, got %d", len(want), len(got))
	}
	for i := range want {
		if !got[i].Equal(want[i].Time) {
			t.Fatalf("date %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	income := NewIncome("ana", NewDate(2025, 1, 10), "salary january", Money{Cents: 250000}, "Salary", "ACME", "MainBank", PlanSingle, nil)
	if err := income.Validate(); err != nil {
		t.Fatalf("income expected ok, got %v", err)
	}

	installments := NewIncome("ana", NewDate(2025, 1, 10), "sale", Money{Cents: 30000}, "Product Sale", "Client", "MainBank", PaymentPlan("3x"), nil)
	if err := installments.Validate(); err != nil {
		t.Fatalf("installment income expected ok, got %v", err)
	}
	if n := len(installments.Income.InstallmentDates); n != 3 {
		t.Fatalf("expected 3 default installment dates, got %d", n)
	}

	expense := NewExpense("ana", NewDate(2025, 1, 12), "groceries", Money{Cents: 4500}, "Groceries", false, 0, StatusUnpaid)
	if err := expense.Validate(); err != nil {
		t.Fatalf("expense expected ok, got %v", err)
	}

	bads := []struct {
		name string
		tx   Transaction
		want error
	}{
		{"zero date", NewExpense("ana", Date{}, "a", Money{Cents: 1}, "c", false, 0, StatusPaid), ErrInvalidDate},
		{"empty description", NewExpense("ana", NewDate(2025, 1, 1), "  ", Money{Cents: 1}, "c", false, 0, StatusPaid), ErrEmptyDescription},
		{"zero amount", NewExpense("ana", NewDate(2025, 1, 1), "a", Money{}, "c", false, 0, StatusPaid), ErrInvalidAmount},
		{"empty category", NewExpense("ana", NewDate(2025, 1, 1), "a", Money{Cents: 1}, " ", false, 0, StatusPaid), ErrEmptyCategory},
		{"bad status", NewExpense("ana", NewDate(2025, 1, 1), "a", Money{Cents: 1}, "c", false, 0, ExpenseStatus("maybe")), ErrInvalidStatus},
		{"recurrence too low", NewExpense("ana", NewDate(2025, 1, 1), "a", Money{Cents: 1}, "c", true, 0, StatusUnpaid), ErrInvalidRecurrence},
		{"recurrence too high", NewExpense("ana", NewDate(2025, 1, 1), "a", Money{Cents: 1}, "c", true, 61, StatusUnpaid), ErrInvalidRecurrence},
		{"bad plan", NewIncome("ana", NewDate(2025, 1, 1), "a", Money{Cents: 1}, "c", "p", "b", PaymentPlan("9x"), nil), ErrInvalidPlan},
	}
	for _, tc := range bads {
		err := tc.tx.Validate()
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if tc.want != nil && !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestTransactionValidateKindMismatch(t *testing.T) {
	tx := NewIncome("ana", NewDate(2025, 1, 1), "a", Money{Cents: 1}, "c", "p", "b", PlanSingle, nil)
	tx.Expense = &ExpenseDetails{Status: StatusPaid}
	if err := tx.Validate(); !errors.Is(err, ErrKindMismatch) {
		t.Fatalf("expected kind mismatch, got %v", err)
	}

	tx = NewExpense("ana", NewDate(2025, 1, 1), "a", Money{Cents: 1}, "c", false, 0, StatusPaid)
	tx.Expense = nil
	if err := tx.Validate(); !errors.Is(err, ErrKindMismatch) {
		t.Fatalf("expected kind mismatch, got %v", err)
	}

	tx.Kind = TransactionKind("transfer")
	if err := tx.Validate(); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected unknown kind, got %v", err)
	}
}

func TestInstallmentDateCountMustMatchPlan(t *testing.T) {
	tx := NewIncome("ana", NewDate(2025, 1, 1), "a", Money{Cents: 100}, "c", "p", "b", PaymentPlan("4x"), []Date{NewDate(2025, 1, 1)})
	if err := tx.Validate(); !errors.Is(err, ErrInstallmentDates) {
		t.Fatalf("expected installment mismatch, got %v", err)
	}
	tx = NewIncome("ana", NewDate(2025, 1, 1), "a", Money{Cents: 100}, "c", "p", "b", PlanSingle, nil)
	tx.Income.InstallmentDates = []Date{NewDate(2025, 2, 1)}
	if err := tx.Validate(); !errors.Is(err, ErrInstallmentDates) {
		t.Fatalf("expected installment mismatch for single plan, got %v", err)
	}
}

func TestGoalValidate(t *testing.T) {
	good := Goal{
		Owner:       "ana",
		Description: "trip",
		Target:      Money{Cents: 500000},
		Category:    "Travel",
		DueDate:     NewDate(2026, 6, 1),
		Status:      GoalInProgress,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bad := good
	bad.Target = Money{}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected invalid target, got %v", err)
	}

	bad = good
	bad.Current = Money{Cents: -1}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}

	bad = good
	bad.Status = GoalStatus("done")
	if err := bad.Validate(); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}
}

func TestGoalCompleteAndProgress(t *testing.T) {
	g := Goal{
		Owner:       "ana",
		Description: "car",
		Target:      Money{Cents: 100000},
		Category:    "Car",
		DueDate:     NewDate(2026, 1, 1),
		Status:      GoalInProgress,
	}
	if err := g.AddProgress(Money{Cents: 40000}); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if g.Current.Cents != 40000 {
		t.Fatalf("expected 40000, got %d", g.Current.Cents)
	}
	if err := g.AddProgress(Money{Cents: 0}); !errors.Is(err, ErrInvalidProgress) {
		t.Fatalf("expected invalid progress, got %v", err)
	}
	// Progress may pass the target without flipping the status.
	if err := g.AddProgress(Money{Cents: 90000}); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if g.Status != GoalInProgress {
		t.Fatalf("status must stay in progress, got %s", g.Status)
	}

	g.Complete()
	if g.Status != GoalCompleted || g.Current != g.Target {
		t.Fatalf("complete must pin current to target, got %+v", g)
	}
}
