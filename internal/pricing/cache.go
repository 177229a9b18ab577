// Package pricing resolves a token's USD price at or near a timestamp
// through a tiered source strategy with hour-bucket caching.
package pricing

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"
)

// Cache stores resolved prices keyed by (mint, hour bucket). A cached
// price of 0 means "confirmed unknown" and is served like any other
// hit, which is what stops a token with no discoverable price from
// re-triggering every resolver tier on each request.
type Cache interface {
	// Get returns the cached price and whether the key was present.
	Get(ctx context.Context, mint string, hourBucket int64) (float64, bool)

	// Set stores a price. Concurrent writers racing on the same key are
	// harmless; the values are equivalent.
	Set(ctx context.Context, mint string, hourBucket int64, price float64)
}

// Default LRU cache sizing.
const (
	DefaultCacheEntries = 100_000
	DefaultCacheTTL     = 24 * time.Hour
)

// cacheKey builds the map key for a (mint, hour bucket) pair.
func cacheKey(mint string, hourBucket int64) string {
	return fmt.Sprintf("%s|%d", mint, hourBucket)
}

// lruEntry is one cached price with its insertion time.
type lruEntry struct {
	key      string
	price    float64
	storedAt time.Time
}

// LRUCache is a bounded in-process Cache with TTL expiry.
type LRUCache struct {
	maxEntries int
	ttl        time.Duration

	mu    sync.Mutex
	ll    *list.List // front = most recently used
	items map[string]*list.Element

	now func() time.Time
}

// NewLRUCache creates an LRU cache. Non-positive maxEntries or ttl
// fall back to the defaults.
func NewLRUCache(maxEntries int, ttl time.Duration) *LRUCache {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheEntries
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &LRUCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		ll:         list.New(),
		items:      make(map[string]*list.Element),
		now:        time.Now,
	}
}

var _ Cache = (*LRUCache)(nil)

// Get implements Cache.
func (c *LRUCache) Get(_ context.Context, mint string, hourBucket int64) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[cacheKey(mint, hourBucket)]
	if !ok {
		return 0, false
	}

	entry := el.Value.(*lruEntry)
	if c.now().Sub(entry.storedAt) > c.ttl {
		c.ll.Remove(el)
		delete(c.items, entry.key)
		return 0, false
	}

	c.ll.MoveToFront(el)
	return entry.price, true
}

// Set implements Cache.
func (c *LRUCache) Set(_ context.Context, mint string, hourBucket int64, price float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(mint, hourBucket)
	if el, ok := c.items[key]; ok {
		entry := el.Value.(*lruEntry)
		entry.price = price
		entry.storedAt = c.now()
		c.ll.MoveToFront(el)
		return
	}

	el := c.ll.PushFront(&lruEntry{key: key, price: price, storedAt: c.now()})
	c.items[key] = el

	for c.ll.Len() > c.maxEntries {
		oldest := c.ll.Back()
		if oldest == nil {
			break
		}
		c.ll.Remove(oldest)
		delete(c.items, oldest.Value.(*lruEntry).key)
	}
}

// Len returns the number of cached entries, expired or not.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
