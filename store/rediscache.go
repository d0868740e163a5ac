package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/liamcoop/learningplan/internal/logger"
	"github.com/liamcoop/learningplan/learning"
)

// catalogKey holds the JSON-encoded incentive catalog.
const catalogKey = "learningplan:catalog:incentives"

// RedisCatalogCache shares the catalog across instances through Redis.
// Redis failures are logged and reported as cache misses.
type RedisCatalogCache struct {
	client *redis.Client
	config CacheConfig
}

// NewRedisCatalogCache constructs a Redis-backed catalog cache.
func NewRedisCatalogCache(client *redis.Client, config CacheConfig) *RedisCatalogCache {
	return &RedisCatalogCache{
		client: client,
		config: config,
	}
}

func (c *RedisCatalogCache) Get(ctx context.Context) ([]learning.IncentiveDefinition, bool) {
	raw, err := c.client.Get(ctx, catalogKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		logger.Warn("catalog cache read failed", "error", err)
		return nil, false
	}

	var catalog []learning.IncentiveDefinition
	if err := json.Unmarshal(raw, &catalog); err != nil {
		logger.Warn("catalog cache entry is corrupt", "error", err)
		return nil, false
	}
	return catalog, true
}

// Set writes the catalog with the configured TTL. A zero TTL keeps the key
// until Invalidate.
func (c *RedisCatalogCache) Set(ctx context.Context, catalog []learning.IncentiveDefinition) {
	if catalog == nil {
		catalog = []learning.IncentiveDefinition{}
	}
	raw, err := json.Marshal(catalog)
	if err != nil {
		logger.Warn("catalog cache encode failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, catalogKey, raw, c.config.TTL).Err(); err != nil {
		logger.Warn("catalog cache write failed", "error", err)
	}
}

func (c *RedisCatalogCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, catalogKey).Err(); err != nil {
		logger.Warn("catalog cache invalidate failed", "error", err)
	}
}

func (c *RedisCatalogCache) IsValid(ctx context.Context) bool {
	n, err := c.client.Exists(ctx, catalogKey).Result()
	if err != nil {
		return false
	}
	return n == 1
}
