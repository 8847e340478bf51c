package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/GTDGit/drapery_api/internal/models"
)

// RecentCache keeps each user's recently selected items as one JSON list.
// It satisfies selection.RecentStore. Keys never expire: the list is
// bounded by the tracker, not by time.
type RecentCache struct {
	redis *RedisClient
}

// NewRecentCache creates a new RecentCache.
func NewRecentCache(redis *RedisClient) *RecentCache {
	return &RecentCache{redis: redis}
}

func (c *RecentCache) key(owner string) string {
	return fmt.Sprintf("recent:user:%s", owner)
}

// LoadRecent returns owner's list, newest first. A missing key is an empty list.
func (c *RecentCache) LoadRecent(ctx context.Context, owner string) ([]models.RecentSelection, error) {
	raw, err := c.redis.Get(ctx, c.key(owner))
	if errors.Is(err, ErrMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeRecent(raw)
}

// SaveRecent replaces owner's list.
func (c *RecentCache) SaveRecent(ctx context.Context, owner string, list []models.RecentSelection) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal recent list: %w", err)
	}
	return c.redis.Set(ctx, c.key(owner), string(raw), 0)
}

// ClearRecent drops owner's list.
func (c *RecentCache) ClearRecent(ctx context.Context, owner string) error {
	return c.redis.Delete(ctx, c.key(owner))
}

// decodeRecent parses a stored list. Corrupt data reads as empty so a bad
// write never locks a user out of the panel.
func decodeRecent(raw string) ([]models.RecentSelection, error) {
	var list []models.RecentSelection
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, nil
	}
	return list, nil
}
