package memory

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"finanze/internal/core"
)

const seedFileName = "records.json"

// Seed file layout. Amounts are integer cents, dates YYYY-MM-DD.
type (
	seedFile struct {
		Users        []seedUser        `json:"users"`
		Transactions []seedTransaction `json:"transactions"`
		Goals        []seedGoal        `json:"goals"`
	}

	seedUser struct {
		Username     string `json:"username"`
		PasswordHash string `json:"password_hash"`
	}

	seedTransaction struct {
		ID               int64    `json:"id"`
		Owner            string   `json:"owner"`
		Kind             string   `json:"kind"`
		Date             string   `json:"date"`
		Description      string   `json:"description"`
		AmountCents      int64    `json:"amount_cents"`
		Category         string   `json:"category"`
		Payer            string   `json:"payer,omitempty"`
		Bank             string   `json:"bank,omitempty"`
		Plan             string   `json:"plan,omitempty"`
		InstallmentDates []string `json:"installment_dates,omitempty"`
		Recurring        bool     `json:"recurring,omitempty"`
		RecurrenceCount  int      `json:"recurrence_count,omitempty"`
		Status           string   `json:"status,omitempty"`
	}

	seedGoal struct {
		ID           int64  `json:"id"`
		Owner        string `json:"owner"`
		Description  string `json:"description"`
		TargetCents  int64  `json:"target_cents"`
		CurrentCents int64  `json:"current_cents"`
		Category     string `json:"category"`
		DueDate      string `json:"due_date"`
		Status       string `json:"status,omitempty"`
	}
)

// NewFromFiles builds a store seeded from dataDir/records.json. A missing
// or unreadable file yields an empty store; individual bad rows are
// skipped with a warning so one typo does not blank the whole demo set.
func NewFromFiles(dataDir string) *Store {
	store := New()

	path := filepath.Join(dataDir, seedFileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read seed file", "path", path, "error", err)
		}
		return store
	}

	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		slog.Warn("failed to parse seed file", "path", path, "error", err)
		return store
	}

	for _, u := range seed.Users {
		store.users[u.Username] = core.User{
			Username:     u.Username,
			PasswordHash: u.PasswordHash,
			CreatedAt:    time.Now().UTC(),
		}
	}

	var txs []core.Transaction
	for _, row := range seed.Transactions {
		t, err := row.toTransaction()
		if err != nil {
			slog.Warn("skipping seed transaction", "id", row.ID, "error", err)
			continue
		}
		txs = append(txs, t)
	}

	var goals []core.Goal
	for _, row := range seed.Goals {
		g, err := row.toGoal()
		if err != nil {
			slog.Warn("skipping seed goal", "id", row.ID, "error", err)
			continue
		}
		goals = append(goals, g)
	}

	store.Seed(txs, goals)
	slog.Info("loaded seed data",
		"path", path,
		"users", len(seed.Users),
		"transactions", len(txs),
		"goals", len(goals))
	return store
}

func (row seedTransaction) toTransaction() (core.Transaction, error) {
	date, err := parseSeedDate(row.Date)
	if err != nil {
		return core.Transaction{}, err
	}

	t := core.Transaction{
		ID:          row.ID,
		Owner:       row.Owner,
		Date:        date,
		Description: row.Description,
		Amount:      core.Money{Cents: row.AmountCents},
		Kind:        core.TransactionKind(row.Kind),
		Category:    row.Category,
	}

	switch t.Kind {
	case core.KindIncome:
		income := &core.IncomeDetails{
			Payer: row.Payer,
			Bank:  row.Bank,
			Plan:  core.PaymentPlan(row.Plan),
		}
		if income.Plan == "" {
			income.Plan = core.PlanSingle
		}
		for _, v := range row.InstallmentDates {
			d, err := parseSeedDate(v)
			if err != nil {
				return core.Transaction{}, err
			}
			income.InstallmentDates = append(income.InstallmentDates, d)
		}
		t.Income = income
	case core.KindExpense:
		status := core.ExpenseStatus(row.Status)
		if status == "" {
			status = core.StatusUnpaid
		}
		t.Expense = &core.ExpenseDetails{
			Recurring:       row.Recurring,
			RecurrenceCount: row.RecurrenceCount,
			Status:          status,
		}
	}

	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func (row seedGoal) toGoal() (core.Goal, error) {
	due, err := parseSeedDate(row.DueDate)
	if err != nil {
		return core.Goal{}, err
	}

	g := core.Goal{
		ID:          row.ID,
		Owner:       row.Owner,
		Description: row.Description,
		Target:      core.Money{Cents: row.TargetCents},
		Category:    row.Category,
		DueDate:     due,
		Current:     core.Money{Cents: row.CurrentCents},
		Status:      core.GoalStatus(row.Status),
	}
	if g.Status == "" {
		g.Status = core.GoalInProgress
	}

	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

func parseSeedDate(s string) (core.Date, error) {
	ts, err := time.Parse("2006-01-02", s)
	if err != nil {
		return core.Date{}, err
	}
	return core.DateOf(ts), nil
}
