package cache

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/model"
)

// Stages distinguish ticker snapshots from OHLCV series in the key space.
const (
	StageOHLCV  = "ohlcv"
	StageTicker = "ticker"
)

// Key identifies one cached fetch.
type Key struct {
	Asset     string
	Timeframe model.Timeframe
	Limit     int
	Stage     string
}

func (k Key) String() string {
	return fmt.Sprintf("%s|%s|%s|%d", k.Stage, k.Asset, k.Timeframe, k.Limit)
}

// Clock returns the current time.
type Clock func() time.Time

type entry[V any] struct {
	value     V
	fetchedAt time.Time
}

// Cache is a read-through memo whose entries expire strictly by age.
// Concurrent misses on the same key share a single fetch.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[Key]entry[V]
	group   singleflight.Group
	now     Clock
	metrics *metrics.Metrics
}

// New creates a Cache. A nil clock means time.Now.
func New[V any](clock Clock, m *metrics.Metrics) *Cache[V] {
	if clock == nil {
		clock = time.Now
	}
	return &Cache[V]{
		entries: make(map[Key]entry[V]),
		now:     clock,
		metrics: m,
	}
}

// GetOrFetch returns the cached value for key when younger than ttl; otherwise
// it calls fetch, stores the result (empty results included) and returns it.
// A value returned together with an error is handed back but not stored.
func (c *Cache[V]) GetOrFetch(key Key, ttl time.Duration, fetch func() (V, error)) V {
	if v, ok := c.lookup(key, ttl); ok {
		c.metrics.CacheLookup(key.Stage, true)
		return v
	}

	fetched := false
	v, _, _ := c.group.Do(key.String(), func() (interface{}, error) {
		// a concurrent caller may have filled the entry while we waited
		if v, ok := c.lookup(key, ttl); ok {
			return v, nil
		}
		fetched = true
		v, err := fetch()
		if err == nil {
			c.store(key, v)
		}
		return v, nil
	})
	// callers that joined an in-flight fetch count as hits
	c.metrics.CacheLookup(key.Stage, !fetched)
	return v.(V)
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache[V]) lookup(key Key, ttl time.Duration) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.fetchedAt) >= ttl {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *Cache[V]) store(key Key, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: v, fetchedAt: c.now()}
}
