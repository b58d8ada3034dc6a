// Package services orchestrates writes across SQLite and AMQP. Every
// mutation lands in SQLite first; the change notification is best effort,
// so a dead broker never fails a request.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"finanze/internal/amqp"
	"finanze/internal/core"
	"finanze/internal/storage"
)

// RecordService wraps the repository's mutations and tells the mirror
// worker about each one.
type RecordService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewRecordService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *RecordService {
	return &RecordService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

func (s *RecordService) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	id, err := s.storage.InsertTransaction(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("save transaction: %w", err)
	}

	s.publish(ctx, amqp.NewRecordChangeMessage(amqp.EntityTransaction, amqp.OpCreated, t.Owner, id))
	return id, nil
}

func (s *RecordService) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := s.storage.UpdateTransaction(ctx, t); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	s.publish(ctx, amqp.NewRecordChangeMessage(amqp.EntityTransaction, amqp.OpUpdated, t.Owner, t.ID))
	return nil
}

func (s *RecordService) DeleteTransaction(ctx context.Context, owner string, id int64) error {
	if err := s.storage.DeleteTransaction(ctx, owner, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.publish(ctx, amqp.NewRecordChangeMessage(amqp.EntityTransaction, amqp.OpDeleted, owner, id))
	return nil
}

func (s *RecordService) CreateGoal(ctx context.Context, g core.Goal) (int64, error) {
	id, err := s.storage.InsertGoal(ctx, g)
	if err != nil {
		return 0, fmt.Errorf("save goal: %w", err)
	}

	s.publish(ctx, amqp.NewRecordChangeMessage(amqp.EntityGoal, amqp.OpCreated, g.Owner, id))
	return id, nil
}

func (s *RecordService) UpdateGoal(ctx context.Context, g core.Goal) error {
	if err := s.storage.UpdateGoal(ctx, g); err != nil {
		return fmt.Errorf("update goal: %w", err)
	}

	s.publish(ctx, amqp.NewRecordChangeMessage(amqp.EntityGoal, amqp.OpUpdated, g.Owner, g.ID))
	return nil
}

func (s *RecordService) DeleteGoal(ctx context.Context, owner string, id int64) error {
	if err := s.storage.DeleteGoal(ctx, owner, id); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}

	s.publish(ctx, amqp.NewRecordChangeMessage(amqp.EntityGoal, amqp.OpDeleted, owner, id))
	return nil
}

// publish never fails the caller. The record is already saved locally and
// the worker converges from the database on the next message.
func (s *RecordService) publish(ctx context.Context, msg *amqp.RecordChangeMessage) {
	if s.amqpClient == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping change notification",
			"entity", msg.Entity, "op", msg.Op, "id", msg.ID)
		return
	}

	if err := s.amqpClient.PublishRecordChange(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "failed to publish change notification",
			"entity", msg.Entity, "op", msg.Op, "id", msg.ID, "error", err)
	}
}

// Close closes both storage and AMQP connections.
func (s *RecordService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close record service: %v", errs)
	}

	return nil
}
