// Package cache provides in-memory ports.CacheStore implementations.
package cache

import (
	"context"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ahrav/go-fairaudit/internal/domain"
	"github.com/ahrav/go-fairaudit/internal/ports"
)

var _ ports.CacheStore = (*LRUStore)(nil)

type entry struct {
	report    domain.Report
	expiresAt time.Time
}

// LRUStore is a size-bounded report cache with optional per-entry expiry.
// When full, the least recently used report is evicted. It is safe for
// concurrent use.
type LRUStore struct {
	cache   *lru.Cache[string, entry]
	metrics ports.MetricsCollector
	now     func() time.Time

	hits    atomic.Uint64
	misses  atomic.Uint64
	evicted atomic.Uint64
}

// NewLRUStore creates a store holding at most size reports. metrics may be
// nil; when set, every lookup is counted as a hit or miss.
func NewLRUStore(size int, metrics ports.MetricsCollector) (*LRUStore, error) {
	s := &LRUStore{metrics: metrics, now: time.Now}
	c, err := lru.NewWithEvict[string, entry](size, func(string, entry) {
		s.evicted.Add(1)
	})
	if err != nil {
		return nil, ports.NewCacheError("", "New", err)
	}
	s.cache = c
	return s, nil
}

// Get returns a copy of the report stored under key if it exists and has not
// expired. Expired entries are removed on access.
func (s *LRUStore) Get(ctx context.Context, key string) (domain.Report, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Report{}, false, ports.NewCacheError(key, "Get", err)
	}

	e, ok := s.cache.Get(key)
	if ok && !e.expiresAt.IsZero() && s.now().After(e.expiresAt) {
		s.cache.Remove(key)
		ok = false
	}
	if !ok {
		s.misses.Add(1)
		s.record("miss")
		return domain.Report{}, false, nil
	}

	s.hits.Add(1)
	s.record("hit")
	return e.report.Clone(), true, nil
}

// Set stores a copy of report under key. A zero expiration keeps the entry
// until it is evicted.
func (s *LRUStore) Set(ctx context.Context, key string, report domain.Report, expiration time.Duration) error {
	if err := ctx.Err(); err != nil {
		return ports.NewCacheError(key, "Set", err)
	}

	e := entry{report: report.Clone()}
	if expiration > 0 {
		e.expiresAt = s.now().Add(expiration)
	}
	s.cache.Add(key, e)
	return nil
}

// Delete removes key from the store.
func (s *LRUStore) Delete(_ context.Context, key string) error {
	s.cache.Remove(key)
	return nil
}

// Clear removes every entry.
func (s *LRUStore) Clear(_ context.Context) error {
	s.cache.Purge()
	return nil
}

// Len returns the number of stored reports, including expired ones not yet
// accessed.
func (s *LRUStore) Len() int { return s.cache.Len() }

// Stats reports cache effectiveness counters.
type Stats struct {
	Hits    uint64  `json:"hits"`
	Misses  uint64  `json:"misses"`
	Evicted uint64  `json:"evicted"`
	Size    int     `json:"size"`
	HitRate float64 `json:"hit_rate"`
}

// Stats returns current cache statistics.
func (s *LRUStore) Stats() Stats {
	hits, misses := s.hits.Load(), s.misses.Load()
	hitRate := 0.0
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return Stats{
		Hits:    hits,
		Misses:  misses,
		Evicted: s.evicted.Load(),
		Size:    s.cache.Len(),
		HitRate: hitRate,
	}
}

func (s *LRUStore) record(event string) {
	if s.metrics != nil {
		s.metrics.RecordCounter("cache_events_total", 1, map[string]string{"event": event})
	}
}
