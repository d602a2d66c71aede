package cache

import (
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps predictions in memory with a per-entry TTL
type MemoryCache struct {
	cache  *gocache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemoryCache creates a new memory cache
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves a label from the cache
func (c *MemoryCache) Get(key string) (string, bool) {
	if val, found := c.cache.Get(key); found {
		if label, ok := val.(string); ok {
			c.hits.Add(1)
			return label, true
		}
	}
	c.misses.Add(1)
	return "", false
}

// Set stores a label with the default TTL
func (c *MemoryCache) Set(key, label string) {
	c.cache.Set(key, label, gocache.DefaultExpiration)
}

// Delete removes a label from the cache
func (c *MemoryCache) Delete(key string) {
	c.cache.Delete(key)
}

// Clear removes all labels from the cache
func (c *MemoryCache) Clear() {
	c.cache.Flush()
}

// Len counts cached entries, expired ones included until cleanup runs
func (c *MemoryCache) Len() int {
	return c.cache.ItemCount()
}

// Stats reports hits and misses since creation
func (c *MemoryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
