package catalog

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/tillgreens/microfarm/internal/domain"
)

// CacheSchemaVersion is the current version of the cache schema
// Increment this when the cached data structure changes to auto-invalidate old entries
const CacheSchemaVersion = "1.0"

// cachedResolution wraps a resolved variety with version metadata
type cachedResolution struct {
	Version  string         `json:"version"`
	Variety  domain.Variety `json:"variety"`
	CachedAt time.Time      `json:"cached_at"`
}

// resolveCache memoizes fuzzy variety resolutions. Fuzzy matching scans
// the whole catalog per query, and planning resolves the same handful of
// names over and over.
type resolveCache struct {
	lru *expirable.LRU[string, *cachedResolution]
}

// newResolveCache creates a resolution cache with the given size and TTL
func newResolveCache(size int, ttl time.Duration) *resolveCache {
	return &resolveCache{
		lru: expirable.NewLRU[string, *cachedResolution](size, nil, ttl),
	}
}

// Get retrieves a resolution from the cache.
// Returns (variety, true) if found and version matches.
func (c *resolveCache) Get(key string) (domain.Variety, bool) {
	entry, found := c.lru.Get(key)
	if !found {
		return domain.Variety{}, false
	}
	if entry.Version != CacheSchemaVersion {
		c.lru.Remove(key)
		return domain.Variety{}, false
	}
	return entry.Variety, true
}

// Set stores a resolution with the current schema version
func (c *resolveCache) Set(key string, v domain.Variety) {
	c.lru.Add(key, &cachedResolution{
		Version:  CacheSchemaVersion,
		Variety:  v,
		CachedAt: time.Now(),
	})
}

// Clear removes all entries, used after a catalog reload
func (c *resolveCache) Clear() {
	c.lru.Purge()
}
