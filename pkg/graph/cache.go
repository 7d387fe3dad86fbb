package graph

import (
	"sync"
	"sync/atomic"
	"time"
)

// resultCache memoizes analytics results keyed by algorithm name plus
// parameter tuple. Entries outlive graph mutations on purpose: a hit
// returns the ranks computed against the snapshot current at compute
// time, even if the graph has changed since.
//
// Entries expire after the configured TTL, evicted lazily on probe; a TTL
// of zero disables expiration.
type resultCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

type cacheEntry struct {
	value     any
	expiresAt time.Time
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

// get probes the cache, counting the probe as a hit or a miss.
func (c *resultCache) get(key string) (any, bool) {
	c.mu.RLock()
	ent, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && (c.ttl == 0 || time.Now().Before(ent.expiresAt)) {
		c.hits.Add(1)
		return ent.value, true
	}
	if ok {
		// Expired: drop it now rather than waiting for overwrite.
		c.mu.Lock()
		if cur, still := c.entries[key]; still && !time.Now().Before(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
	}
	c.misses.Add(1)
	return nil, false
}

// put stores value under key, restarting its TTL.
func (c *resultCache) put(key string, value any) {
	ent := cacheEntry{value: value}
	if c.ttl > 0 {
		ent.expiresAt = time.Now().Add(c.ttl)
	}
	c.mu.Lock()
	c.entries[key] = ent
	c.mu.Unlock()
}

func (c *resultCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
