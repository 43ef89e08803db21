package resolver

import (
	"sync"
	"time"

	"groovecall/internal/core"
)

// queryCache holds resolved search results keyed by normalized query text.
// When the cache grows past capacity it is cleared wholesale rather than
// evicted entry by entry: search traffic is bursty and repetitive, so a
// periodic cold start is cheaper than bookkeeping an eviction order.
type queryCache struct {
	mu       sync.RWMutex
	capacity int
	ttl      time.Duration
	entries  map[string]cachedTrack
}

type cachedTrack struct {
	track     *core.ResolvedTrack
	expiresAt time.Time
}

func newQueryCache(capacity int, ttl time.Duration) *queryCache {
	return &queryCache{
		capacity: capacity,
		ttl:      ttl,
		entries:  make(map[string]cachedTrack),
	}
}

// Get returns the cached track for key, or nil when missing or expired.
// Expired entries are dropped on read.
func (c *queryCache) Get(key string) *core.ResolvedTrack {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil
	}
	return entry.track
}

func (c *queryCache) Put(key string, track *core.ResolvedTrack) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.capacity {
		c.entries = make(map[string]cachedTrack)
	}
	c.entries[key] = cachedTrack{
		track:     track,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *queryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
