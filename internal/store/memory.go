package store

import (
	"context"
	"sync"
	"time"
)

// sweepThreshold triggers an opportunistic scan for expired entries during
// writes once the map grows past this size. There is no background sweeper;
// expiry is otherwise lazy on read.
const sweepThreshold = 4096

type entry struct {
	value     []byte
	createdAt time.Time
	expiresAt time.Time
}

// MemoryCache is the default process-wide cache: a TTL map with
// last-writer-wins semantics. A stale or duplicated write only costs an extra
// external call, so the locking here exists purely to keep the map safe for
// concurrent requests, not to order writers.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a fresher write may have landed.
		if cur, ok := c.entries[key]; ok && c.now().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, ErrCacheMiss
	}
	return e.value, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := c.now()
	c.mu.Lock()
	c.entries[key] = entry{
		value:     value,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
	if len(c.entries) > sweepThreshold {
		for k, e := range c.entries {
			if now.After(e.expiresAt) {
				delete(c.entries, k)
			}
		}
	}
	c.mu.Unlock()
	return nil
}

// Len reports the number of entries including not-yet-swept expired ones.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
