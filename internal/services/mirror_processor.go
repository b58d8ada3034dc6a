package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"finanze/internal/amqp"
	"finanze/internal/records"
	"finanze/internal/storage"
)

// MirrorProcessor applies record change events to a secondary copy,
// normally a Google Sheets spreadsheet. The database stays the source
// of truth: on every event the processor re-reads the row and pushes
// the current state, so replayed or out-of-order deliveries converge.
type MirrorProcessor struct {
	storage *storage.SQLiteRepository
	mirror  records.Mirror
}

func NewMirrorProcessor(storage *storage.SQLiteRepository, mirror records.Mirror) *MirrorProcessor {
	return &MirrorProcessor{
		storage: storage,
		mirror:  mirror,
	}
}

// HandleRecordChange processes a single change event. Returning an
// error requeues the message.
func (p *MirrorProcessor) HandleRecordChange(ctx context.Context, msg *amqp.RecordChangeMessage) error {
	slog.InfoContext(ctx, "processing record change",
		"event_id", msg.EventID,
		"entity", msg.Entity,
		"op", msg.Op,
		"id", msg.ID)

	switch msg.Entity {
	case amqp.EntityTransaction:
		return p.mirrorTransaction(ctx, msg)
	case amqp.EntityGoal:
		return p.mirrorGoal(ctx, msg)
	default:
		return fmt.Errorf("unknown entity %q in event %s", msg.Entity, msg.EventID)
	}
}

func (p *MirrorProcessor) mirrorTransaction(ctx context.Context, msg *amqp.RecordChangeMessage) error {
	if msg.Op == amqp.OpDeleted {
		if err := p.mirror.RemoveTransaction(ctx, msg.ID); err != nil {
			return fmt.Errorf("remove mirrored transaction %d: %w", msg.ID, err)
		}
		return nil
	}

	t, err := p.storage.GetTransaction(ctx, msg.Owner, msg.ID)
	if errors.Is(err, sql.ErrNoRows) {
		// The row vanished between the event and now. Removing keeps
		// the mirror consistent with the database.
		slog.WarnContext(ctx, "transaction gone before mirroring, removing from mirror",
			"id", msg.ID, "owner", msg.Owner)
		if err := p.mirror.RemoveTransaction(ctx, msg.ID); err != nil {
			return fmt.Errorf("remove mirrored transaction %d: %w", msg.ID, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction %d from storage: %w", msg.ID, err)
	}

	if err := p.mirror.UpsertTransaction(ctx, t); err != nil {
		return fmt.Errorf("mirror transaction %d: %w", msg.ID, err)
	}
	return nil
}

func (p *MirrorProcessor) mirrorGoal(ctx context.Context, msg *amqp.RecordChangeMessage) error {
	if msg.Op == amqp.OpDeleted {
		if err := p.mirror.RemoveGoal(ctx, msg.ID); err != nil {
			return fmt.Errorf("remove mirrored goal %d: %w", msg.ID, err)
		}
		return nil
	}

	g, err := p.storage.GetGoal(ctx, msg.Owner, msg.ID)
	if errors.Is(err, sql.ErrNoRows) {
		slog.WarnContext(ctx, "goal gone before mirroring, removing from mirror",
			"id", msg.ID, "owner", msg.Owner)
		if err := p.mirror.RemoveGoal(ctx, msg.ID); err != nil {
			return fmt.Errorf("remove mirrored goal %d: %w", msg.ID, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("get goal %d from storage: %w", msg.ID, err)
	}

	if err := p.mirror.UpsertGoal(ctx, g); err != nil {
		return fmt.Errorf("mirror goal %d: %w", msg.ID, err)
	}
	return nil
}

// Reconcile pushes every database row to the mirror. It runs at worker
// startup and on a slow timer to recover from missed events or worker
// downtime. Per-row failures are logged and skipped so one bad row
// cannot stall the rest.
func (p *MirrorProcessor) Reconcile(ctx context.Context) error {
	txs, err := p.storage.ListAllTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions for reconcile: %w", err)
	}
	goals, err := p.storage.ListAllGoals(ctx)
	if err != nil {
		return fmt.Errorf("list goals for reconcile: %w", err)
	}

	successCount := 0
	errorCount := 0

	for _, t := range txs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.mirror.UpsertTransaction(ctx, t); err != nil {
			slog.ErrorContext(ctx, "failed to reconcile transaction",
				"id", t.ID, "owner", t.Owner, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	for _, g := range goals {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.mirror.UpsertGoal(ctx, g); err != nil {
			slog.ErrorContext(ctx, "failed to reconcile goal",
				"id", g.ID, "owner", g.Owner, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "reconcile completed",
		"total", len(txs)+len(goals),
		"mirrored", successCount,
		"errors", errorCount)

	if errorCount > 0 {
		return fmt.Errorf("reconcile finished with %d failed rows", errorCount)
	}
	return nil
}
