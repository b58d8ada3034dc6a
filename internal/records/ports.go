// Package records defines the ports every storage backend implements.
// Backends validate on write and scope every call to the owner; the
// aggregation engine never learns which backend produced a record list.
package records

import (
	"context"
	"errors"

	"finanze/internal/core"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// Ports for outbound adapters.
type (
	TransactionReader interface {
		// ListTransactions returns every transaction owned by owner.
		ListTransactions(ctx context.Context, owner string) ([]core.Transaction, error)
		// GetTransaction returns one transaction or ErrNotFound.
		GetTransaction(ctx context.Context, owner string, id int64) (core.Transaction, error)
	}

	TransactionWriter interface {
		// AppendTransaction stores a validated transaction and returns the
		// assigned id. Ids grow monotonically and are never reassigned
		// after a delete.
		AppendTransaction(ctx context.Context, t core.Transaction) (int64, error)
		// UpdateTransaction applies a field-level patch.
		UpdateTransaction(ctx context.Context, owner string, id int64, patch core.TransactionPatch) error
		// DeleteTransaction removes the record for good.
		DeleteTransaction(ctx context.Context, owner string, id int64) error
	}

	GoalReader interface {
		ListGoals(ctx context.Context, owner string) ([]core.Goal, error)
		GetGoal(ctx context.Context, owner string, id int64) (core.Goal, error)
	}

	GoalWriter interface {
		AppendGoal(ctx context.Context, g core.Goal) (int64, error)
		UpdateGoal(ctx context.Context, owner string, id int64, patch core.GoalPatch) error
		// AddGoalProgress moves the goal's current amount up by amount.
		AddGoalProgress(ctx context.Context, owner string, id int64, amount core.Money) error
		// CompleteGoal marks the goal reached and pins current to target.
		CompleteGoal(ctx context.Context, owner string, id int64) error
		DeleteGoal(ctx context.Context, owner string, id int64) error
	}

	UserStore interface {
		// CreateUser stores a new account; ErrUserExists on a taken name.
		CreateUser(ctx context.Context, u core.User) error
		// FindUser returns the stored account or ErrUserNotFound.
		FindUser(ctx context.Context, username string) (core.User, error)
	}

	// Mirror is the write surface the mirror worker uses on a secondary
	// copy. Upserts preserve the id the primary store assigned; removes
	// are idempotent.
	Mirror interface {
		UpsertTransaction(ctx context.Context, t core.Transaction) error
		RemoveTransaction(ctx context.Context, id int64) error
		UpsertGoal(ctx context.Context, g core.Goal) error
		RemoveGoal(ctx context.Context, id int64) error
	}
)
