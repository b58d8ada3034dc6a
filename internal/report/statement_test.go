package report

import (
	"bytes"
	"testing"

	"finanze/internal/core"
)

func TestWriteMonthlyStatement(t *testing.T) {
	txs := []core.Transaction{
		incomeOn(core.NewDate(2024, 1, 15), 250000),
		expenseOn(core.NewDate(2024, 1, 20), 4500, core.StatusPaid),
		expenseOn(core.NewDate(2024, 1, 25), 12000, core.StatusUnpaid),
		// Outside the month, must not break rendering
		incomeOn(core.NewDate(2024, 2, 1), 99900),
	}
	goals := []core.Goal{
		{ID: 1, Owner: "ana", Description: "Vacanze", Target: core.Money{Cents: 100000}, Category: "Travel", Current: core.Money{Cents: 25000}, Status: core.GoalInProgress},
		{ID: 2, Owner: "ana", Description: "Fondo emergenze", Target: core.Money{Cents: 50000}, Category: "Emergency Fund", Current: core.Money{Cents: 50000}, Status: core.GoalCompleted},
	}

	var buf bytes.Buffer
	if err := WriteMonthlyStatement(&buf, "ana", YearMonth{2024, 1}, txs, goals); err != nil {
		t.Fatalf("WriteMonthlyStatement: %v", err)
	}

	out := buf.Bytes()
	if !bytes.HasPrefix(out, []byte("%PDF-")) {
		t.Fatalf("output does not look like a PDF, starts with %q", out[:min(8, len(out))])
	}
	if len(out) < 1000 {
		t.Fatalf("suspiciously small PDF: %d bytes", len(out))
	}
}

func TestWriteMonthlyStatementEmptyMonth(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMonthlyStatement(&buf, "ana", YearMonth{2024, 6}, nil, nil); err != nil {
		t.Fatalf("WriteMonthlyStatement on empty data: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatal("empty-month statement is not a PDF")
	}
}

func TestMonthLabel(t *testing.T) {
	if got := MonthLabel(YearMonth{2025, 3}); got != "Marzo 2025" {
		t.Errorf("MonthLabel = %q, want %q", got, "Marzo 2025")
	}
	if got := MonthLabel(YearMonth{2025, 13}); got != "2025-13" {
		t.Errorf("MonthLabel out of range = %q, want fallback", got)
	}
}
