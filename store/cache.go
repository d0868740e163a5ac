package store

import (
	"context"
	"time"

	"github.com/liamcoop/learningplan/learning"
)

// CatalogCache caches the full incentive catalog.
// This allows swapping between in-memory and Redis implementations.
type CatalogCache interface {
	// Get returns the cached catalog, or false on a miss or expiry
	Get(ctx context.Context) ([]learning.IncentiveDefinition, bool)

	// Set stores the catalog
	Set(ctx context.Context, catalog []learning.IncentiveDefinition)

	// Invalidate clears the cache, forcing a reload on next Get
	Invalidate(ctx context.Context)

	// IsValid returns true if the cache currently holds a catalog
	IsValid(ctx context.Context) bool
}

// CacheConfig holds configuration for cache behavior
type CacheConfig struct {
	// TTL is the time-to-live for the cached catalog.
	// Set to 0 for no expiration (manual invalidation only)
	TTL time.Duration
}

// DefaultCacheConfig returns the default catalog cache settings
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL: 5 * time.Minute,
	}
}
