package worker

import (
	"context"
	"testing"
	"time"
)

func TestDefaultMirrorWorkerConfig(t *testing.T) {
	config := DefaultMirrorWorkerConfig()
	if config.ReconcileInterval != 1*time.Hour {
		t.Errorf("expected ReconcileInterval 1h, got %v", config.ReconcileInterval)
	}
}

func TestMirrorWorker_IsRunning(t *testing.T) {
	w := NewMirrorWorker(nil, nil, DefaultMirrorWorkerConfig())
	if w.IsRunning() {
		t.Error("worker should not be running initially")
	}
}

func TestMirrorWorker_StartTwice(t *testing.T) {
	w := NewMirrorWorker(nil, nil, DefaultMirrorWorkerConfig())

	w.mu.Lock()
	w.running = true
	w.mu.Unlock()

	if err := w.Start(context.Background()); err == nil {
		t.Error("expected error when starting already running worker")
	}
}

func TestMirrorWorker_StopNotRunning(t *testing.T) {
	w := NewMirrorWorker(nil, nil, DefaultMirrorWorkerConfig())

	if err := w.Stop(context.Background()); err != nil {
		t.Errorf("Stop should not error when not running: %v", err)
	}
}
