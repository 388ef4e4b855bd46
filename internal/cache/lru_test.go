// WhereTo - Companion-Aware Venue Recommendations
// Copyright 2026 Ali Turkarslan
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AliTurkarslan/whereto

package cache

import (
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestLRU_BasicOperations(t *testing.T) {
	t.Parallel()

	c := NewLRU[int](3, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	for key, want := range map[string]int{"a": 1, "b": 2, "c": 3} {
		got, ok := c.Get(key)
		if !ok || got != want {
			t.Errorf("Get(%q) = %d, %v; want %d, true", key, got, ok, want)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}

	c.Set("a", 10)
	if got, _ := c.Get("a"); got != 10 {
		t.Errorf("Get(a) after update = %d, want 10", got)
	}
	if !c.Remove("a") {
		t.Error("Remove(a) = false, want true")
	}
	if _, ok := c.Get("a"); ok {
		t.Error("Get(a) after Remove should miss")
	}
}

func TestLRU_Eviction(t *testing.T) {
	t.Parallel()

	c := NewLRU[string](3, time.Minute)
	c.Set("a", "A")
	c.Set("b", "B")
	c.Set("c", "C")

	// Touch a so b becomes least recently used.
	c.Get("a")
	c.Set("d", "D")

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("expected %q to be present", key)
		}
	}
}

func TestLRU_Expiration(t *testing.T) {
	t.Parallel()

	c := NewLRU[float64](10, time.Minute)
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("short", 1)
	c.SetWithTTL("long", 2, time.Hour)

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("short"); ok {
		t.Error("short entry should have expired")
	}
	if v, ok := c.Get("long"); !ok || v != 2 {
		t.Errorf("Get(long) = %v, %v; want 2, true", v, ok)
	}

	c.SetWithTTL("gone", 3, time.Second)
	now = now.Add(time.Minute)
	if removed := c.CleanupExpired(); removed != 1 {
		t.Errorf("CleanupExpired() = %d, want 1", removed)
	}
	if c.Len() != 1 {
		t.Errorf("Len() after cleanup = %d, want 1", c.Len())
	}
}

func TestLRU_Defaults(t *testing.T) {
	t.Parallel()

	c := NewLRU[int](0, 0)
	if c.capacity != 10000 {
		t.Errorf("capacity = %d, want 10000", c.capacity)
	}
	if c.ttl != 5*time.Minute {
		t.Errorf("ttl = %v, want 5m", c.ttl)
	}
}

func TestLRU_Concurrent(t *testing.T) {
	t.Parallel()

	c := NewLRU[int](100, time.Minute)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := strconv.Itoa((g*500 + i) % 150)
				c.Set(key, i)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 100 {
		t.Errorf("Len() = %d, exceeds capacity 100", c.Len())
	}
}
