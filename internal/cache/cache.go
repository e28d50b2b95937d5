// Package cache provides TTL caching for upstream provider responses.
package cache

import (
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/pitchside/internal/metrics"
)

// Entry wraps a cached value with the time it was stored. Entries are never
// mutated in place, only replaced wholesale on Set.
type Entry struct {
	Value    interface{}
	StoredAt time.Time
}

// Store is a single-TTL key/value cache. Expired entries stay retrievable
// through GetStale, which is used only as an upstream-failure fallback.
type Store struct {
	name      string
	cache     *cache.Cache
	ttl       time.Duration
	clock     func() time.Time
	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// NewStore creates a cache store with one TTL. Entries are kept without
// internal expiry so the stale path can still read them; freshness is
// evaluated against the recorded StoredAt on every Get.
func NewStore(name string, ttl time.Duration) *Store {
	return &Store{
		name:  name,
		cache: cache.New(cache.NoExpiration, 0),
		ttl:   ttl,
		clock: time.Now,
	}
}

// NewStoreWithClock creates a store with an injected clock for tests.
func NewStoreWithClock(name string, ttl time.Duration, clock func() time.Time) *Store {
	s := NewStore(name, ttl)
	s.clock = clock
	return s
}

// Get returns the cached value for key if it is still fresh.
func (s *Store) Get(key string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if raw, found := s.cache.Get(key); found {
		entry := raw.(Entry)
		if s.clock().Sub(entry.StoredAt) < s.ttl {
			s.hitCount++
			s.updateMetrics()
			return entry.Value, true
		}
	}

	s.missCount++
	s.updateMetrics()
	return nil, false
}

// GetStale returns the cached value regardless of freshness, with its age.
// Callers use this only after an upstream fetch has failed.
func (s *Store) GetStale(key string) (interface{}, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if raw, found := s.cache.Get(key); found {
		entry := raw.(Entry)
		return entry.Value, entry.StoredAt, true
	}
	return nil, time.Time{}, false
}

// Set stores a value under key, replacing any previous entry. Last writer
// wins on concurrent refresh; refreshes are idempotent re-fetches of the
// same upstream truth.
func (s *Store) Set(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Set(key, Entry{Value: value, StoredAt: s.clock()}, cache.NoExpiration)
}

// Clear flushes the store and resets counters.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Flush()
	s.hitCount = 0
	s.missCount = 0
}

// Stats returns hit/miss counts and the hit ratio.
func (s *Store) Stats() (hits, misses uint64, ratio float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statsLocked()
}

// statsLocked computes the counters and ratio. Caller holds the lock.
func (s *Store) statsLocked() (hits, misses uint64, ratio float64) {
	hits = s.hitCount
	misses = s.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of entries, fresh or stale.
func (s *Store) ItemCount() int {
	return s.cache.ItemCount()
}

// updateMetrics publishes the hit ratio gauge. Caller holds the lock.
func (s *Store) updateMetrics() {
	_, _, ratio := s.statsLocked()
	metrics.CacheHitRatio.WithLabelValues(s.name).Set(ratio)
}
