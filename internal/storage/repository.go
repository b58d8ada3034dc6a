// Package storage provides the SQLite persistence layer.
//
// Dates are stored as YYYY-MM-DD text, amounts as integer cents. The
// income and expense specific columns are nullable; exactly one group is
// populated per row, matching the transaction kind. Identifiers come from
// AUTOINCREMENT so a deleted row's id is never handed out again.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"finanze/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// ErrDuplicateUser reports an insert that collided with an existing username.
var ErrDuplicateUser = fmt.Errorf("duplicate user")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// DB exposes the underlying handle for health checks.
func (r *SQLiteRepository) DB() *sql.DB {
	return r.db
}

const transactionColumns = `id, owner, kind, tx_date, description, amount_cents, category,
	payer, bank, payment_plan, installment_dates, recurring, recurrence_count, status`

func (r *SQLiteRepository) InsertTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	cols, err := splitDetails(t)
	if err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (owner, kind, tx_date, description, amount_cents, category,
			payer, bank, payment_plan, installment_dates, recurring, recurrence_count, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Owner, string(t.Kind), t.Date.Format(dateLayout), t.Description, t.Amount.Cents, t.Category,
		cols.payer, cols.bank, cols.plan, cols.installments, cols.recurring, cols.recurrenceCount, cols.status,
	)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted transaction id: %w", err)
	}

	slog.InfoContext(ctx, "transaction saved",
		"id", id,
		"owner", t.Owner,
		"kind", t.Kind,
		"amount_cents", t.Amount.Cents,
	)
	return id, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, owner string, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = ? AND owner = ?`,
		id, owner,
	)

	t, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, owner string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE owner = ?
		ORDER BY tx_date DESC, id DESC`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			slog.WarnContext(ctx, "skipping unreadable transaction row", "owner", owner, "error", err)
			continue
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// ListAllTransactions returns every transaction regardless of owner.
// The mirror worker walks this during reconciliation.
func (r *SQLiteRepository) ListAllTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list all transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			slog.WarnContext(ctx, "skipping unreadable transaction row", "error", err)
			continue
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list all transactions: %w", err)
	}
	return txs, nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	cols, err := splitDetails(t)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET tx_date = ?, description = ?, amount_cents = ?, category = ?,
			payer = ?, bank = ?, payment_plan = ?, installment_dates = ?,
			recurring = ?, recurrence_count = ?, status = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND owner = ?`,
		t.Date.Format(dateLayout), t.Description, t.Amount.Cents, t.Category,
		cols.payer, cols.bank, cols.plan, cols.installments,
		cols.recurring, cols.recurrenceCount, cols.status,
		t.ID, t.Owner,
	)
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("update transaction %d: %w", t.ID, err)
	} else if n == 0 {
		return fmt.Errorf("update transaction %d: %w", t.ID, sql.ErrNoRows)
	}

	slog.InfoContext(ctx, "transaction updated", "id", t.ID, "owner", t.Owner)
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, owner string, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND owner = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	} else if n == 0 {
		return fmt.Errorf("delete transaction %d: %w", id, sql.ErrNoRows)
	}

	slog.InfoContext(ctx, "transaction deleted", "id", id, "owner", owner)
	return nil
}

func (r *SQLiteRepository) InsertGoal(ctx context.Context, g core.Goal) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO goals (owner, description, target_cents, current_cents, category, due_date, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.Owner, g.Description, g.Target.Cents, g.Current.Cents, g.Category, g.DueDate.Format(dateLayout), string(g.Status),
	)
	if err != nil {
		return 0, fmt.Errorf("insert goal: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted goal id: %w", err)
	}

	slog.InfoContext(ctx, "goal saved", "id", id, "owner", g.Owner, "target_cents", g.Target.Cents)
	return id, nil
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, owner string, id int64) (core.Goal, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner, description, target_cents, current_cents, category, due_date, status
		FROM goals
		WHERE id = ? AND owner = ?`,
		id, owner,
	)

	g, err := scanGoal(row)
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal %d: %w", id, err)
	}
	return g, nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context, owner string) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner, description, target_cents, current_cents, category, due_date, status
		FROM goals
		WHERE owner = ?
		ORDER BY due_date ASC, id ASC`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			slog.WarnContext(ctx, "skipping unreadable goal row", "owner", owner, "error", err)
			continue
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

// ListAllGoals returns every goal regardless of owner, for the mirror
// worker's reconciliation pass.
func (r *SQLiteRepository) ListAllGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner, description, target_cents, current_cents, category, due_date, status
		FROM goals
		ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list all goals: %w", err)
	}
	defer rows.Close()

	var goals []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			slog.WarnContext(ctx, "skipping unreadable goal row", "error", err)
			continue
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list all goals: %w", err)
	}
	return goals, nil
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.Goal) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE goals
		SET description = ?, target_cents = ?, current_cents = ?, category = ?, due_date = ?, status = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND owner = ?`,
		g.Description, g.Target.Cents, g.Current.Cents, g.Category, g.DueDate.Format(dateLayout), string(g.Status),
		g.ID, g.Owner,
	)
	if err != nil {
		return fmt.Errorf("update goal %d: %w", g.ID, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("update goal %d: %w", g.ID, err)
	} else if n == 0 {
		return fmt.Errorf("update goal %d: %w", g.ID, sql.ErrNoRows)
	}

	slog.InfoContext(ctx, "goal updated", "id", g.ID, "owner", g.Owner)
	return nil
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, owner string, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ? AND owner = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("delete goal %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("delete goal %d: %w", id, err)
	} else if n == 0 {
		return fmt.Errorf("delete goal %d: %w", id, sql.ErrNoRows)
	}

	slog.InfoContext(ctx, "goal deleted", "id", id, "owner", owner)
	return nil
}

func (r *SQLiteRepository) InsertUser(ctx context.Context, u core.User) error {
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (username, password_hash, created_at)
		VALUES (?, ?, ?)`,
		u.Username, u.PasswordHash, createdAt.Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("insert user %q: %w", u.Username, ErrDuplicateUser)
		}
		return fmt.Errorf("insert user %q: %w", u.Username, err)
	}

	slog.InfoContext(ctx, "user created", "username", u.Username)
	return nil
}

func (r *SQLiteRepository) FindUser(ctx context.Context, username string) (core.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT username, password_hash, created_at
		FROM users
		WHERE username = ?`,
		username,
	)

	var u core.User
	var createdAt string
	if err := row.Scan(&u.Username, &u.PasswordHash, &createdAt); err != nil {
		return core.User{}, fmt.Errorf("find user %q: %w", username, err)
	}
	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		u.CreatedAt = ts
	}
	return u, nil
}

// detailColumns carries the nullable transaction columns. Fields stay nil
// for whichever detail group the kind does not use.
type detailColumns struct {
	payer           any
	bank            any
	plan            any
	installments    any
	recurring       any
	recurrenceCount any
	status          any
}

func splitDetails(t core.Transaction) (detailColumns, error) {
	var cols detailColumns
	switch t.Kind {
	case core.KindIncome:
		if t.Income == nil {
			return cols, fmt.Errorf("income transaction without income details: %w", core.ErrKindMismatch)
		}
		cols.payer = t.Income.Payer
		cols.bank = t.Income.Bank
		cols.plan = string(t.Income.Plan)
		if len(t.Income.InstallmentDates) > 0 {
			encoded, err := encodeDates(t.Income.InstallmentDates)
			if err != nil {
				return cols, err
			}
			cols.installments = encoded
		}
	case core.KindExpense:
		if t.Expense == nil {
			return cols, fmt.Errorf("expense transaction without expense details: %w", core.ErrKindMismatch)
		}
		cols.recurring = boolToInt(t.Expense.Recurring)
		cols.recurrenceCount = t.Expense.RecurrenceCount
		cols.status = string(t.Expense.Status)
	default:
		return cols, fmt.Errorf("%w: %q", core.ErrUnknownKind, t.Kind)
	}
	return cols, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s rowScanner) (core.Transaction, error) {
	var (
		t            core.Transaction
		kind, txDate string
		payer        sql.NullString
		bank         sql.NullString
		plan         sql.NullString
		installments sql.NullString
		recurring    sql.NullInt64
		recurrence   sql.NullInt64
		status       sql.NullString
	)

	err := s.Scan(
		&t.ID, &t.Owner, &kind, &txDate, &t.Description, &t.Amount.Cents, &t.Category,
		&payer, &bank, &plan, &installments, &recurring, &recurrence, &status,
	)
	if err != nil {
		return core.Transaction{}, err
	}

	date, err := parseDate(txDate)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Date = date
	t.Kind = core.TransactionKind(kind)

	switch t.Kind {
	case core.KindIncome:
		income := &core.IncomeDetails{
			Payer: payer.String,
			Bank:  bank.String,
			Plan:  core.PaymentPlan(plan.String),
		}
		if income.Plan == "" {
			income.Plan = core.PlanSingle
		}
		if installments.Valid && installments.String != "" {
			dates, err := decodeDates(installments.String)
			if err != nil {
				return core.Transaction{}, err
			}
			income.InstallmentDates = dates
		}
		t.Income = income
	case core.KindExpense:
		expense := &core.ExpenseDetails{
			Recurring:       recurring.Valid && recurring.Int64 != 0,
			RecurrenceCount: int(recurrence.Int64),
			Status:          core.ExpenseStatus(status.String),
		}
		if expense.Status == "" {
			expense.Status = core.StatusUnpaid
		}
		t.Expense = expense
	default:
		return core.Transaction{}, fmt.Errorf("%w: %q", core.ErrUnknownKind, kind)
	}

	return t, nil
}

func scanGoal(s rowScanner) (core.Goal, error) {
	var (
		g       core.Goal
		dueDate string
		status  string
	)

	err := s.Scan(&g.ID, &g.Owner, &g.Description, &g.Target.Cents, &g.Current.Cents, &g.Category, &dueDate, &status)
	if err != nil {
		return core.Goal{}, err
	}

	due, err := parseDate(dueDate)
	if err != nil {
		return core.Goal{}, err
	}
	g.DueDate = due
	g.Status = core.GoalStatus(status)
	if g.Status == "" {
		g.Status = core.GoalInProgress
	}
	return g, nil
}

func parseDate(s string) (core.Date, error) {
	ts, err := time.Parse(dateLayout, s)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return core.DateOf(ts), nil
}

func encodeDates(dates []core.Date) (string, error) {
	raw := make([]string, len(dates))
	for i, d := range dates {
		raw[i] = d.Format(dateLayout)
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("encode installment dates: %w", err)
	}
	return string(encoded), nil
}

func decodeDates(s string) ([]core.Date, error) {
	var raw []string
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("decode installment dates: %w", err)
	}
	dates := make([]core.Date, len(raw))
	for i, v := range raw {
		d, err := parseDate(v)
		if err != nil {
			return nil, err
		}
		dates[i] = d
	}
	return dates, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
