package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache holds serialized analysis results for the life of the process.
// Entries are copied in and out, so a caller editing a returned result never
// changes what the next analysis of the same document receives.
type MemoryCache struct {
	results *gocache.Cache
}

// NewMemoryCache creates a memory cache whose entries expire after
// defaultTTL unless Set is given a TTL of its own. Expired results are
// evicted every cleanupInterval.
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		results: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get returns a copy of the result stored under an analysis key
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	val, found := c.results.Get(key)
	if !found {
		return nil, false
	}
	data, ok := val.([]byte)
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

// Set stores a result; a zero ttl uses the cache default
func (c *MemoryCache) Set(key string, result []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	c.results.Set(key, append([]byte(nil), result...), ttl)
	return nil
}

// Delete drops one result
func (c *MemoryCache) Delete(key string) error {
	c.results.Delete(key)
	return nil
}

// Clear drops every result
func (c *MemoryCache) Clear() error {
	c.results.Flush()
	return nil
}

// Len returns the number of stored results, including expired ones not yet evicted
func (c *MemoryCache) Len() int {
	return c.results.ItemCount()
}
