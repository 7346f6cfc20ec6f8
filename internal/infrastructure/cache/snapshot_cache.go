// Package cache holds the in-process snapshot cache. The whole dataset is
// swapped atomically; readers never observe a partially refreshed snapshot.
package cache

import (
	"sync"
	"time"

	"github.com/datascientist-hue/live-dashboard/internal/domain/sales"
)

// SnapshotCache caches one immutable dataset per source with a TTL. A stale
// entry is reported as a miss so the caller refreshes; the stale value stays
// available through GetStale for serve-while-refreshing.
type SnapshotCache struct {
	mu      sync.RWMutex
	entries map[string]snapshotEntry
	ttl     time.Duration
	now     func() time.Time
}

type snapshotEntry struct {
	dataset  *sales.Dataset
	storedAt time.Time
}

// NewSnapshotCache creates a cache with the given TTL. A non-positive TTL
// means entries never expire.
func NewSnapshotCache(ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		entries: make(map[string]snapshotEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached dataset for a source if present and fresh.
func (c *SnapshotCache) Get(source string) (*sales.Dataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[source]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(e.storedAt) > c.ttl {
		return nil, false
	}
	return e.dataset, true
}

// GetStale returns the cached dataset even if expired. Used to keep serving
// the previous snapshot while a refresh is failing.
func (c *SnapshotCache) GetStale(source string) (*sales.Dataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[source]
	if !ok {
		return nil, false
	}
	return e.dataset, true
}

// Put stores a dataset, replacing any previous snapshot for the source.
func (c *SnapshotCache) Put(source string, ds *sales.Dataset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[source] = snapshotEntry{dataset: ds, storedAt: c.now()}
}

// Invalidate drops the entry for a source.
func (c *SnapshotCache) Invalidate(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, source)
}
