package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/GTDGit/drapery_api/internal/models"
)

const inventoryKey = "inventory:all"

// InventorySnapshot is the cached full inventory list.
type InventorySnapshot struct {
	Items    []models.CatalogItem `json:"items"`
	CachedAt time.Time            `json:"cachedAt"`
}

// InventoryCache stores the unfiltered inventory under a single key.
type InventoryCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewInventoryCache creates a new InventoryCache.
func NewInventoryCache(redis *RedisClient, ttl time.Duration) *InventoryCache {
	return &InventoryCache{redis: redis, ttl: ttl}
}

// Get returns the cached inventory or ErrMiss.
func (c *InventoryCache) Get(ctx context.Context) (*InventorySnapshot, error) {
	raw, err := c.redis.Get(ctx, inventoryKey)
	if err != nil {
		return nil, err
	}
	var snap InventorySnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal inventory: %w", err)
	}
	return &snap, nil
}

// Set stores items with the configured TTL.
func (c *InventoryCache) Set(ctx context.Context, items []models.CatalogItem) error {
	snap := InventorySnapshot{Items: items, CachedAt: time.Now()}
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal inventory: %w", err)
	}
	return c.redis.Set(ctx, inventoryKey, string(raw), c.ttl)
}

// Invalidate drops the cached inventory.
func (c *InventoryCache) Invalidate(ctx context.Context) error {
	return c.redis.Delete(ctx, inventoryKey)
}
