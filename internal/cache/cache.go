// Package cache provides the in-process caches used by the HTTP
// layer: a generic TTL store with LRU eviction and a manager that
// sweeps expired entries in the background.
package cache

import (
	"log/slog"
	"time"
)

// Cache is the read/write surface shared by caches in this package.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, val T)
	Delete(key string)
	Size() int
}

// Cleaner is implemented by caches whose expired entries can be
// swept eagerly instead of waiting for the next access.
type Cleaner interface {
	CleanExpired() int
}

// Manager owns the background sweep for a set of caches.
type Manager struct {
	cleaners []Cleaner
	started  bool
	stop     chan struct{}
	done     chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Register adds c to the sweep set. Must not be called after
// StartCleanup.
func (m *Manager) Register(c Cleaner) {
	m.cleaners = append(m.cleaners, c)
}

// StartCleanup sweeps all registered caches every interval until
// Stop is called.
func (m *Manager) StartCleanup(interval time.Duration) {
	m.started = true
	go func() {
		defer close(m.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				removed := 0
				for _, c := range m.cleaners {
					removed += c.CleanExpired()
				}
				if removed > 0 {
					slog.Debug("cache cleanup removed expired entries", "count", removed)
				}
			case <-m.stop:
				return
			}
		}
	}()
}

// Stop ends the sweep goroutine and waits for it to exit. Without a
// prior StartCleanup it is a no-op.
func (m *Manager) Stop() {
	if !m.started {
		return
	}
	close(m.stop)
	<-m.done
}
