package store

import (
	"context"
	"sync"
	"time"

	"github.com/liamcoop/learningplan/learning"
)

// InMemoryCatalogCache is a process-local CatalogCache.
// Thread-safe for concurrent access
type InMemoryCatalogCache struct {
	catalog  []learning.IncentiveDefinition
	cachedAt time.Time
	config   CacheConfig
	now      func() time.Time
	mu       sync.RWMutex
	isValid  bool
}

// NewInMemoryCatalogCache creates a new in-memory catalog cache
func NewInMemoryCatalogCache(config CacheConfig) *InMemoryCatalogCache {
	return &InMemoryCatalogCache{
		config: config,
		now:    time.Now,
	}
}

// Get returns a copy of the cached catalog
func (c *InMemoryCatalogCache) Get(_ context.Context) ([]learning.IncentiveDefinition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.freshLocked() {
		return nil, false
	}

	catalogCopy := make([]learning.IncentiveDefinition, len(c.catalog))
	copy(catalogCopy, c.catalog)
	return catalogCopy, true
}

// Set stores a copy of catalog
func (c *InMemoryCatalogCache) Set(_ context.Context, catalog []learning.IncentiveDefinition) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.catalog = make([]learning.IncentiveDefinition, len(catalog))
	copy(c.catalog, catalog)
	c.cachedAt = c.now()
	c.isValid = true
}

// Invalidate clears the cache
func (c *InMemoryCatalogCache) Invalidate(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.isValid = false
	c.catalog = nil
}

// IsValid returns true if the cache holds an unexpired catalog
func (c *InMemoryCatalogCache) IsValid(_ context.Context) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.freshLocked()
}

func (c *InMemoryCatalogCache) freshLocked() bool {
	if !c.isValid {
		return false
	}
	if c.config.TTL > 0 {
		return c.now().Sub(c.cachedAt) <= c.config.TTL
	}
	return true
}
