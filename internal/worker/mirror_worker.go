// Package worker runs the background process that keeps the Google
// Sheets copy in step with the SQLite database.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"finanze/internal/amqp"
	"finanze/internal/services"
)

// MirrorWorkerConfig holds configuration for the mirror worker.
type MirrorWorkerConfig struct {
	// ReconcileInterval is how often to run a full reconcile pass on
	// top of the startup one (default: 1h).
	ReconcileInterval time.Duration
}

// DefaultMirrorWorkerConfig returns sensible defaults.
func DefaultMirrorWorkerConfig() MirrorWorkerConfig {
	return MirrorWorkerConfig{
		ReconcileInterval: 1 * time.Hour,
	}
}

// MirrorWorker consumes record change events and hands them to the
// mirror processor. A periodic reconcile pass covers events lost while
// the worker or the broker was down.
type MirrorWorker struct {
	client    *amqp.Client
	processor *services.MirrorProcessor
	config    MirrorWorkerConfig

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	doneCh  chan struct{}
}

func NewMirrorWorker(client *amqp.Client, processor *services.MirrorProcessor, config MirrorWorkerConfig) *MirrorWorker {
	return &MirrorWorker{
		client:    client,
		processor: processor,
		config:    config,
	}
}

// Start begins consuming. Returns an error if already running.
func (w *MirrorWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("mirror worker is already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	w.running = true
	w.cancel = cancel
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.runLoop(runCtx)

	slog.InfoContext(ctx, "mirror worker started",
		"reconcile_interval", w.config.ReconcileInterval)

	return nil
}

// Stop gracefully stops the worker and waits for completion.
func (w *MirrorWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	cancel, doneCh := w.cancel, w.doneCh
	w.mu.Unlock()

	cancel()

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "mirror worker stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "mirror worker stop timed out")
		return ctx.Err()
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	return nil
}

// IsRunning returns whether the worker is currently running.
func (w *MirrorWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *MirrorWorker) runLoop(ctx context.Context) {
	defer close(w.doneCh)

	// Catch up on anything missed while the worker was down before
	// switching to event-driven mirroring.
	if err := w.processor.Reconcile(ctx); err != nil && ctx.Err() == nil {
		slog.WarnContext(ctx, "startup reconcile failed", "error", err)
	}

	go w.reconcileLoop(ctx)

	handler := func(msg *amqp.RecordChangeMessage) error {
		return w.processor.HandleRecordChange(ctx, msg)
	}
	if err := w.client.ConsumeRecordChanges(ctx, handler); err != nil && ctx.Err() == nil {
		slog.ErrorContext(ctx, "record change consumer stopped", "error", err)
	}
}

func (w *MirrorWorker) reconcileLoop(ctx context.Context) {
	ticker := time.NewTicker(w.config.ReconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.processor.Reconcile(ctx); err != nil && ctx.Err() == nil {
				slog.WarnContext(ctx, "periodic reconcile failed", "error", err)
			}
		}
	}
}
