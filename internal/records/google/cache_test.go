package google

import (
	"testing"
	"time"
)

func TestCacheHitWithinTTL(t *testing.T) {
	c := &Client{cacheValidDuration: 10 * time.Minute}

	values := [][]interface{}{{"1", "ana", "expense"}}
	c.cachePut("Transactions!A:N", values)

	got, ok := c.cacheGet("Transactions!A:N")
	if !ok {
		t.Fatal("cacheGet() missed immediately after cachePut()")
	}
	if len(got) != 1 {
		t.Fatalf("cached values = %d rows, want 1", len(got))
	}
}

func TestCacheExpiration(t *testing.T) {
	c := &Client{cacheValidDuration: 50 * time.Millisecond}

	c.cachePut("Transactions!A:N", [][]interface{}{{"1"}})

	time.Sleep(80 * time.Millisecond)

	if _, ok := c.cacheGet("Transactions!A:N"); ok {
		t.Error("cacheGet() hit after TTL expired")
	}
}

func TestCacheInitialState(t *testing.T) {
	c := &Client{cacheValidDuration: 2 * time.Minute}

	if _, ok := c.cacheGet("Transactions!A:N"); ok {
		t.Error("fresh client should have no cached values")
	}
	if time.Now().Before(c.cacheExpiresAt) {
		t.Error("initial cacheExpiresAt should be in the past (expired)")
	}
}

func TestInvalidateRowCache(t *testing.T) {
	c := &Client{cacheValidDuration: 10 * time.Minute}

	c.cachePut("Transactions!A:N", [][]interface{}{{"1"}})
	c.cachePut("Goals!A:H", [][]interface{}{{"2"}})

	c.InvalidateRowCache()

	if _, ok := c.cacheGet("Transactions!A:N"); ok {
		t.Error("transactions cache should be gone after invalidation")
	}
	if _, ok := c.cacheGet("Goals!A:H"); ok {
		t.Error("goals cache should be gone after invalidation")
	}
	if time.Now().Before(c.cacheExpiresAt) {
		t.Error("cacheExpiresAt should be reset after invalidation")
	}
}

func TestCacheKeysAreIndependent(t *testing.T) {
	c := &Client{cacheValidDuration: 10 * time.Minute}

	c.cachePut("Transactions!A:N", [][]interface{}{{"tx"}})

	if _, ok := c.cacheGet("Goals!A:H"); ok {
		t.Error("goal range should not be served from the transaction entry")
	}
}

func TestCacheMutexProtection(t *testing.T) {
	c := &Client{cacheValidDuration: 2 * time.Minute}

	done := make(chan struct{})

	go func() {
		for i := 0; i < 100; i++ {
			c.cachePut("Transactions!A:N", [][]interface{}{{i}})
		}
		done <- struct{}{}
	}()

	go func() {
		for i := 0; i < 100; i++ {
			c.cacheGet("Transactions!A:N")
		}
		done <- struct{}{}
	}()

	go func() {
		for i := 0; i < 50; i++ {
			c.InvalidateRowCache()
			time.Sleep(time.Millisecond)
		}
		done <- struct{}{}
	}()

	<-done
	<-done
	<-done
}
