package memory

import (
	"context"
	"errors"
	"testing"

	"finanze/internal/core"
	"finanze/internal/records"
)

func newExpense(owner string, cents int64) core.Transaction {
	return core.NewExpense(owner, core.NewDate(2024, 1, 10), "expense", core.Money{Cents: cents}, "Groceries", false, 0, core.StatusUnpaid)
}

func newGoal(owner string) core.Goal {
	return core.Goal{
		Owner: owner, Description: "trip", Target: core.Money{Cents: 100000},
		Category: "Travel", DueDate: core.NewDate(2026, 1, 1), Status: core.GoalInProgress,
	}
}

func TestAppendAssignsMonotonicIDs(t *testing.T) {
	s := New()
	ctx := context.Background()

	id1, err := s.AppendTransaction(ctx, newExpense("ana", 100))
	if err != nil || id1 != 1 {
		t.Fatalf("expected id 1, got %d (err=%v)", id1, err)
	}
	id2, _ := s.AppendTransaction(ctx, newExpense("ana", 200))
	if id2 != 2 {
		t.Fatalf("expected id 2, got %d", id2)
	}

	// Deleting the newest row must not free its id for reuse.
	if err := s.DeleteTransaction(ctx, "ana", id2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	id3, _ := s.AppendTransaction(ctx, newExpense("ana", 300))
	if id3 != 3 {
		t.Fatalf("deleted id was reused: got %d", id3)
	}
}

func TestAppendRejectsInvalid(t *testing.T) {
	s := New()
	bad := newExpense("ana", 0)
	if _, err := s.AppendTransaction(context.Background(), bad); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
}

func TestOwnerScoping(t *testing.T) {
	s := New()
	ctx := context.Background()
	idA, _ := s.AppendTransaction(ctx, newExpense("ana", 100))
	s.AppendTransaction(ctx, newExpense("bruno", 200))

	list, err := s.ListTransactions(ctx, "ana")
	if err != nil || len(list) != 1 || list[0].Owner != "ana" {
		t.Fatalf("owner scoping broken: %+v (err=%v)", list, err)
	}

	// Another owner can neither read nor mutate the row.
	if _, err := s.GetTransaction(ctx, "bruno", idA); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("cross-owner get must fail, got %v", err)
	}
	if err := s.DeleteTransaction(ctx, "bruno", idA); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("cross-owner delete must fail, got %v", err)
	}
}

func TestUpdateAppliesPatchOnly(t *testing.T) {
	s := New()
	ctx := context.Background()
	id, _ := s.AppendTransaction(ctx, newExpense("ana", 4500))

	desc := "groceries week 2"
	status := core.StatusPaid
	err := s.UpdateTransaction(ctx, "ana", id, core.TransactionPatch{Description: &desc, Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := s.GetTransaction(ctx, "ana", id)
	if got.Description != desc || got.Expense.Status != core.StatusPaid {
		t.Fatalf("patch not applied: %+v", got)
	}
	if got.Amount.Cents != 4500 || got.Category != "Groceries" {
		t.Fatalf("untouched fields changed: %+v", got)
	}

	if err := s.UpdateTransaction(ctx, "ana", 999, core.TransactionPatch{Description: &desc}); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStoredRowsAreIsolatedFromCallers(t *testing.T) {
	s := New()
	ctx := context.Background()
	tx := core.NewIncome("ana", core.NewDate(2024, 1, 10), "sale", core.Money{Cents: 30000}, "Product Sale", "Client", "MainBank", core.PaymentPlan("3x"), nil)
	id, err := s.AppendTransaction(ctx, tx)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	// Mutating the caller's copy must not reach the store.
	tx.Income.InstallmentDates[0] = core.NewDate(1999, 1, 1)

	got, _ := s.GetTransaction(ctx, "ana", id)
	if got.Income.InstallmentDates[0].Year() == 1999 {
		t.Fatalf("stored row aliases caller memory")
	}
	// And mutating a returned copy must not reach the store either.
	got.Income.Payer = "changed"
	again, _ := s.GetTransaction(ctx, "ana", id)
	if again.Income.Payer != "Client" {
		t.Fatalf("returned row aliases stored memory")
	}
}

func TestGoalLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()

	id, err := s.AppendGoal(ctx, newGoal("ana"))
	if err != nil || id != 1 {
		t.Fatalf("append goal: id=%d err=%v", id, err)
	}

	if err := s.AddGoalProgress(ctx, "ana", id, core.Money{Cents: 25000}); err != nil {
		t.Fatalf("progress: %v", err)
	}
	g, _ := s.GetGoal(ctx, "ana", id)
	if g.Current.Cents != 25000 || g.Status != core.GoalInProgress {
		t.Fatalf("unexpected goal state: %+v", g)
	}

	if err := s.CompleteGoal(ctx, "ana", id); err != nil {
		t.Fatalf("complete: %v", err)
	}
	g, _ = s.GetGoal(ctx, "ana", id)
	if g.Status != core.GoalCompleted || g.Current != g.Target {
		t.Fatalf("completion must pin current to target: %+v", g)
	}

	if err := s.DeleteGoal(ctx, "ana", id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetGoal(ctx, "ana", id); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if id2, _ := s.AppendGoal(ctx, newGoal("ana")); id2 != 2 {
		t.Fatalf("deleted goal id was reused: got %d", id2)
	}
}

func TestUserStore(t *testing.T) {
	s := New()
	ctx := context.Background()

	u := core.User{Username: "ana", PasswordHash: "$2a$10$fake"}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.CreateUser(ctx, u); !errors.Is(err, records.ErrUserExists) {
		t.Fatalf("expected user exists, got %v", err)
	}

	got, err := s.FindUser(ctx, "ana")
	if err != nil || got.PasswordHash != u.PasswordHash {
		t.Fatalf("find: %+v err=%v", got, err)
	}
	if _, err := s.FindUser(ctx, "missing"); !errors.Is(err, records.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func TestSeedAdvancesCounters(t *testing.T) {
	s := New()
	tx := newExpense("ana", 100)
	tx.ID = 7
	g := newGoal("ana")
	g.ID = 3
	s.Seed([]core.Transaction{tx}, []core.Goal{g})

	id, _ := s.AppendTransaction(context.Background(), newExpense("ana", 200))
	if id != 8 {
		t.Fatalf("expected id 8 after seeding id 7, got %d", id)
	}
	gid, _ := s.AppendGoal(context.Background(), newGoal("ana"))
	if gid != 4 {
		t.Fatalf("expected goal id 4 after seeding id 3, got %d", gid)
	}
}
