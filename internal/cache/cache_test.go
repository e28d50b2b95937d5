package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStoreGetMissing tests Get on an absent key
func TestStoreGetMissing(t *testing.T) {
	store := NewStore("test", time.Hour)
	defer store.Clear()

	_, found := store.Get("fixture:42")
	assert.False(t, found)
}

// TestStoreSetAndGet tests a fresh entry round-trip
func TestStoreSetAndGet(t *testing.T) {
	store := NewStore("test", time.Hour)
	defer store.Clear()

	store.Set("fixture:42", "payload")

	value, found := store.Get("fixture:42")
	require.True(t, found)
	assert.Equal(t, "payload", value)
}

// TestStoreExpiryReportsAbsent tests that Get honors the TTL
func TestStoreExpiryReportsAbsent(t *testing.T) {
	now := time.Unix(1700000000, 0)
	store := NewStoreWithClock("test", time.Minute, func() time.Time { return now })
	defer store.Clear()

	store.Set("odds:42", 1.85)

	// Fresh within TTL
	_, found := store.Get("odds:42")
	assert.True(t, found)

	// Advance past the TTL
	now = now.Add(2 * time.Minute)
	_, found = store.Get("odds:42")
	assert.False(t, found, "expired entry must report absent on Get")
}

// TestStoreGetStaleAfterExpiry tests the failure-fallback stale path
func TestStoreGetStaleAfterExpiry(t *testing.T) {
	now := time.Unix(1700000000, 0)
	storedAt := now
	store := NewStoreWithClock("test", time.Minute, func() time.Time { return now })
	defer store.Clear()

	store.Set("fixtures:2026-08-31", []int{1, 2, 3})

	now = now.Add(time.Hour)

	value, at, found := store.GetStale("fixtures:2026-08-31")
	require.True(t, found, "stale entry must remain retrievable")
	assert.Equal(t, []int{1, 2, 3}, value)
	assert.Equal(t, storedAt, at)
}

// TestStoreOverwriteReplacesEntry tests overwrite-on-set semantics
func TestStoreOverwriteReplacesEntry(t *testing.T) {
	store := NewStore("test", time.Hour)
	defer store.Clear()

	store.Set("k", "old")
	store.Set("k", "new")

	value, found := store.Get("k")
	require.True(t, found)
	assert.Equal(t, "new", value)
	assert.Equal(t, 1, store.ItemCount())
}

// TestStoreStats tests hit/miss accounting
func TestStoreStats(t *testing.T) {
	store := NewStore("test", time.Hour)
	defer store.Clear()

	store.Set("k", 1)
	store.Get("k")
	store.Get("absent")

	hits, misses, ratio := store.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
	assert.InDelta(t, 0.5, ratio, 1e-9)
}

// TestStoreConcurrentAccess tests that concurrent readers and writers are safe
func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore("test", time.Hour)
	defer store.Clear()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			store.Set(fmt.Sprintf("k%d", n%5), n)
		}(i)
		go func(n int) {
			defer wg.Done()
			store.Get(fmt.Sprintf("k%d", n%5))
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, store.ItemCount(), 5)
}

// TestStoreStatsConcurrentWithTraffic tests that stat reads are safe while
// pipeline traffic is mutating the counters, as the readiness endpoint does
func TestStoreStatsConcurrentWithTraffic(t *testing.T) {
	store := NewStore("test", time.Hour)
	defer store.Clear()

	store.Set("k", 1)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.Get("k")
			store.Get("absent")
		}()
		go func() {
			defer wg.Done()
			store.Stats()
		}()
	}
	wg.Wait()

	hits, misses, _ := store.Stats()
	assert.Equal(t, uint64(20), hits)
	assert.Equal(t, uint64(20), misses)
}
