// Package adapters bridges the SQLite stack to the records ports so the
// HTTP handlers stay backend agnostic.
package adapters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"finanze/internal/core"
	"finanze/internal/records"
	"finanze/internal/services"
	"finanze/internal/storage"
)

// SQLiteAdapter reads straight from the repository and routes every
// mutation through RecordService so the mirror worker hears about it.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.RecordService
}

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.RecordService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

var (
	_ records.TransactionReader = (*SQLiteAdapter)(nil)
	_ records.TransactionWriter = (*SQLiteAdapter)(nil)
	_ records.GoalReader        = (*SQLiteAdapter)(nil)
	_ records.GoalWriter        = (*SQLiteAdapter)(nil)
	_ records.UserStore         = (*SQLiteAdapter)(nil)
)

func (a *SQLiteAdapter) ListTransactions(ctx context.Context, owner string) ([]core.Transaction, error) {
	return a.storage.ListTransactions(ctx, owner)
}

func (a *SQLiteAdapter) GetTransaction(ctx context.Context, owner string, id int64) (core.Transaction, error) {
	t, err := a.storage.GetTransaction(ctx, owner, id)
	if err != nil {
		return core.Transaction{}, notFoundOr(err)
	}
	return t, nil
}

func (a *SQLiteAdapter) AppendTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	return a.service.CreateTransaction(ctx, t)
}

func (a *SQLiteAdapter) UpdateTransaction(ctx context.Context, owner string, id int64, patch core.TransactionPatch) error {
	current, err := a.storage.GetTransaction(ctx, owner, id)
	if err != nil {
		return notFoundOr(err)
	}

	updated, err := patch.Apply(current)
	if err != nil {
		return err
	}
	return a.service.UpdateTransaction(ctx, updated)
}

func (a *SQLiteAdapter) DeleteTransaction(ctx context.Context, owner string, id int64) error {
	if err := a.service.DeleteTransaction(ctx, owner, id); err != nil {
		return notFoundOr(err)
	}
	return nil
}

func (a *SQLiteAdapter) ListGoals(ctx context.Context, owner string) ([]core.Goal, error) {
	return a.storage.ListGoals(ctx, owner)
}

func (a *SQLiteAdapter) GetGoal(ctx context.Context, owner string, id int64) (core.Goal, error) {
	g, err := a.storage.GetGoal(ctx, owner, id)
	if err != nil {
		return core.Goal{}, notFoundOr(err)
	}
	return g, nil
}

func (a *SQLiteAdapter) AppendGoal(ctx context.Context, g core.Goal) (int64, error) {
	if g.Status == "" {
		g.Status = core.GoalInProgress
	}
	if err := g.Validate(); err != nil {
		return 0, err
	}
	return a.service.CreateGoal(ctx, g)
}

func (a *SQLiteAdapter) UpdateGoal(ctx context.Context, owner string, id int64, patch core.GoalPatch) error {
	current, err := a.storage.GetGoal(ctx, owner, id)
	if err != nil {
		return notFoundOr(err)
	}

	updated, err := patch.Apply(current)
	if err != nil {
		return err
	}
	return a.service.UpdateGoal(ctx, updated)
}

func (a *SQLiteAdapter) AddGoalProgress(ctx context.Context, owner string, id int64, amount core.Money) error {
	current, err := a.storage.GetGoal(ctx, owner, id)
	if err != nil {
		return notFoundOr(err)
	}

	if err := current.AddProgress(amount); err != nil {
		return err
	}
	return a.service.UpdateGoal(ctx, current)
}

func (a *SQLiteAdapter) CompleteGoal(ctx context.Context, owner string, id int64) error {
	current, err := a.storage.GetGoal(ctx, owner, id)
	if err != nil {
		return notFoundOr(err)
	}

	current.Complete()
	return a.service.UpdateGoal(ctx, current)
}

func (a *SQLiteAdapter) DeleteGoal(ctx context.Context, owner string, id int64) error {
	if err := a.service.DeleteGoal(ctx, owner, id); err != nil {
		return notFoundOr(err)
	}
	return nil
}

func (a *SQLiteAdapter) CreateUser(ctx context.Context, u core.User) error {
	err := a.storage.InsertUser(ctx, u)
	if errors.Is(err, storage.ErrDuplicateUser) {
		return fmt.Errorf("user %q: %w", u.Username, records.ErrUserExists)
	}
	return err
}

func (a *SQLiteAdapter) FindUser(ctx context.Context, username string) (core.User, error) {
	u, err := a.storage.FindUser(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("user %q: %w", username, records.ErrUserNotFound)
	}
	return u, err
}

func notFoundOr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%v: %w", err, records.ErrNotFound)
	}
	return err
}
