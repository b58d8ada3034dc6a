package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRUCache is a fixed-capacity cache. Every entry carries the same
// TTL; reads refresh recency but never the expiry.
type LRUCache[T any] struct {
	mu    sync.Mutex
	cap   int
	ttl   time.Duration
	byKey map[string]*list.Element
	order *list.List // front = most recently used
}

type entry[T any] struct {
	key string
	val T
	exp time.Time
}

var _ Cache[int] = (*LRUCache[int])(nil)

// NewLRUCache returns a cache holding at most maxSize entries, each
// valid for ttl after the write that stored it.
func NewLRUCache[T any](maxSize int, ttl time.Duration) *LRUCache[T] {
	return &LRUCache[T]{
		cap:   maxSize,
		ttl:   ttl,
		byKey: make(map[string]*list.Element),
		order: list.New(),
	}
}

// Get returns the cached value for key. Expired entries are dropped
// on access and reported as missing.
func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.byKey[key]
	if !ok {
		return zero, false
	}
	ent := elem.Value.(*entry[T])
	if time.Now().After(ent.exp) {
		c.dropLocked(elem)
		return zero, false
	}
	c.order.MoveToFront(elem)
	return ent.val, true
}

// Set stores val under key, restarting its TTL. When the cache is
// full the least recently used entry makes room.
func (c *LRUCache[T]) Set(key string, val T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent := &entry[T]{key: key, val: val, exp: time.Now().Add(c.ttl)}
	if elem, ok := c.byKey[key]; ok {
		elem.Value = ent
		c.order.MoveToFront(elem)
		return
	}
	c.byKey[key] = c.order.PushFront(ent)
	for c.order.Len() > c.cap {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.dropLocked(oldest)
	}
}

// Delete removes key if present.
func (c *LRUCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.byKey[key]; ok {
		c.dropLocked(elem)
	}
}

// CleanExpired removes every entry past its expiry and reports how
// many were dropped.
func (c *LRUCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for elem := c.order.Front(); elem != nil; {
		next := elem.Next()
		if now.After(elem.Value.(*entry[T]).exp) {
			c.dropLocked(elem)
			removed++
		}
		elem = next
	}
	return removed
}

// Size reports the number of entries currently held, expired or not.
func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byKey)
}

func (c *LRUCache[T]) dropLocked(elem *list.Element) {
	delete(c.byKey, elem.Value.(*entry[T]).key)
	c.order.Remove(elem)
}
