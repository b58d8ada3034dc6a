package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestNewFromFiles(t *testing.T) {
	dir := t.TempDir()
	seed := `{
		"users": [{"username": "ana", "password_hash": "$2a$10$x"}],
		"transactions": [
			{"id": 3, "owner": "ana", "kind": "income", "date": "2025-02-01",
			 "description": "salary", "amount_cents": 250000, "category": "Salary",
			 "payer": "Acme", "bank": "N26", "plan": "single"},
			{"id": 7, "owner": "ana", "kind": "expense", "date": "2025-02-03",
			 "description": "rent", "amount_cents": 95000, "category": "Housing",
			 "status": "paid"},
			{"id": 8, "owner": "ana", "kind": "expense", "date": "bad-date",
			 "description": "broken", "amount_cents": 100, "category": "Other"}
		],
		"goals": [
			{"id": 2, "owner": "ana", "description": "emergency fund",
			 "target_cents": 500000, "current_cents": 100000,
			 "category": "Savings", "due_date": "2026-01-01"}
		]
	}`
	if err := os.WriteFile(filepath.Join(dir, "records.json"), []byte(seed), 0644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	store := NewFromFiles(dir)
	ctx := context.Background()

	txs, err := store.ListTransactions(ctx, "ana")
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("loaded %d transactions, want 2 (bad row skipped)", len(txs))
	}

	goals, err := store.ListGoals(ctx, "ana")
	if err != nil {
		t.Fatalf("ListGoals() error = %v", err)
	}
	if len(goals) != 1 || goals[0].Current.Cents != 100000 {
		t.Fatalf("goals = %+v", goals)
	}

	if _, err := store.FindUser(ctx, "ana"); err != nil {
		t.Fatalf("FindUser() error = %v", err)
	}

	// Counters sit past the largest seeded ids.
	id, err := store.AppendTransaction(ctx, txs[0])
	if err != nil {
		t.Fatalf("AppendTransaction() error = %v", err)
	}
	if id != 8 {
		t.Fatalf("next id = %d, want 8", id)
	}
}

func TestNewFromFilesMissingDir(t *testing.T) {
	store := NewFromFiles(filepath.Join(t.TempDir(), "nope"))
	txs, err := store.ListTransactions(context.Background(), "ana")
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("expected empty store, got %d rows", len(txs))
	}
}
