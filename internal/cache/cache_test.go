// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestCacheBasicOperations(t *testing.T) {
	c := newCache(time.Minute, time.Now)

	c.Set("key1", "value1")
	value, exists := c.Get("key1")
	if !exists {
		t.Fatal("Get(key1) exists = false, want true")
	}
	if value != "value1" {
		t.Errorf("Get(key1) = %v, want value1", value)
	}

	if _, exists := c.Get("key2"); exists {
		t.Error("Get(key2) exists = true, want false")
	}
}

func TestCacheExpiration(t *testing.T) {
	clock := newFakeClock()
	c := newCache(time.Minute, clock.Now)

	c.Set("key1", "value1")
	clock.Advance(59 * time.Second)
	if _, ok := c.Get("key1"); !ok {
		t.Fatal("entry expired before its TTL")
	}

	clock.Advance(time.Second)
	if _, ok := c.Get("key1"); ok {
		t.Error("entry still present at its expiry instant")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after lazy eviction", c.Len())
	}

	stats := c.GetStats()
	if stats.Evictions != 1 || stats.Misses != 1 || stats.Hits != 1 {
		t.Errorf("stats = %+v, want 1 hit, 1 miss, 1 eviction", stats)
	}
}

func TestCacheSetWithTTL(t *testing.T) {
	clock := newFakeClock()
	c := newCache(time.Minute, clock.Now)

	c.SetWithTTL("short", 1, 10*time.Second)
	c.Set("long", 2)
	c.SetWithTTL("never", 3, 0)

	clock.Advance(30 * time.Second)

	if _, ok := c.Get("short"); ok {
		t.Error("short TTL entry survived")
	}
	if _, ok := c.Get("long"); !ok {
		t.Error("default TTL entry expired early")
	}
	if _, ok := c.Get("never"); ok {
		t.Error("zero TTL entry was stored")
	}
}

func TestCacheOverwriteRefreshesExpiry(t *testing.T) {
	clock := newFakeClock()
	c := newCache(time.Minute, clock.Now)

	c.Set("k", "old")
	clock.Advance(50 * time.Second)
	c.Set("k", "new")
	clock.Advance(50 * time.Second)

	v, ok := c.Get("k")
	if !ok || v != "new" {
		t.Errorf("Get(k) = %v, %v, want new, true", v, ok)
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	c := newCache(time.Minute, time.Now)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	c.Delete("a")
	c.Delete("missing")
	if _, ok := c.Get("a"); ok {
		t.Error("Get(a) after Delete exists = true")
	}
	if got := c.GetStats().Evictions; got != 1 {
		t.Errorf("Evictions after Delete = %d, want 1", got)
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
	stats := c.GetStats()
	if stats.Evictions != 3 || stats.TotalKeys != 0 {
		t.Errorf("stats after Clear = %+v, want 3 evictions and 0 keys", stats)
	}
}

func TestCacheCleanup(t *testing.T) {
	clock := newFakeClock()
	c := newCache(time.Minute, clock.Now)

	c.SetWithTTL("a", 1, 10*time.Second)
	c.SetWithTTL("b", 2, 10*time.Second)
	c.Set("c", 3)

	clock.Advance(20 * time.Second)
	if got := c.cleanup(); got != 2 {
		t.Errorf("cleanup() = %d, want 2", got)
	}

	stats := c.GetStats()
	if stats.TotalKeys != 1 {
		t.Errorf("TotalKeys = %d, want 1", stats.TotalKeys)
	}
	if !stats.LastCleanup.Equal(clock.Now()) {
		t.Errorf("LastCleanup = %v, want %v", stats.LastCleanup, clock.Now())
	}
}

func TestCacheCleanupLoopStops(t *testing.T) {
	clock := newFakeClock()
	c := newCache(time.Minute, clock.Now)
	c.SetWithTTL("a", 1, time.Second)
	clock.Advance(2 * time.Second)

	done := make(chan struct{})
	go func() {
		c.cleanupLoop(5 * time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for c.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if c.Len() != 0 {
		t.Error("sweeper never removed the expired entry")
	}

	c.Close()
	c.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanupLoop did not return after Close")
	}
}

func TestCacheHitRate(t *testing.T) {
	tests := []struct {
		name   string
		hits   int
		misses int
		want   float64
	}{
		{"no lookups", 0, 0, 0},
		{"only misses", 0, 4, 0},
		{"only hits", 3, 0, 100},
		{"mixed", 3, 1, 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCache(time.Minute, time.Now)
			c.Set("hit", true)
			for i := 0; i < tt.hits; i++ {
				c.Get("hit")
			}
			for i := 0; i < tt.misses; i++ {
				c.Get("miss")
			}
			if got := c.HitRate(); got != tt.want {
				t.Errorf("HitRate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCacheConcurrency(t *testing.T) {
	c := New(time.Minute)
	defer c.Close()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", i%20)
				c.Set(key, g)
				c.Get(key)
				if i%50 == 0 {
					c.Delete(key)
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 20 {
		t.Errorf("Len() = %d, want at most 20", c.Len())
	}
}

func BenchmarkCacheGet(b *testing.B) {
	c := newCache(time.Minute, time.Now)
	c.Set("similar:m1", "value")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("similar:m1")
	}
}
