// Package cache keeps hot per-tenant lookups in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/repository"
)

const categoryKeyPrefix = "support-desk:categories:"

// CategoryNames is a cache-aside view of each organization's category names.
// Redis failures degrade to reading the store directly.
type CategoryNames struct {
	client *redis.Client
	repo   repository.CategoryRepository
	ttl    time.Duration
	logger *zap.Logger
}

// NewCategoryNames builds the cache. A nil client disables caching.
func NewCategoryNames(client *redis.Client, repo repository.CategoryRepository, ttl time.Duration, logger *zap.Logger) *CategoryNames {
	return &CategoryNames{client: client, repo: repo, ttl: ttl, logger: logger}
}

// Get returns the category names of organizationID.
func (c *CategoryNames) Get(ctx context.Context, organizationID string) ([]string, error) {
	if c.client == nil || c.ttl <= 0 {
		return c.repo.ListNames(ctx, organizationID)
	}

	key := categoryKeyPrefix + organizationID
	cached, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var names []string
		if jsonErr := json.Unmarshal(cached, &names); jsonErr == nil {
			return names, nil
		}
		c.logger.Warn("discarding corrupt category cache entry", zap.String("organization_id", organizationID))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("category cache read failed", zap.Error(err))
	}

	names, err := c.repo.ListNames(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(names); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("category cache write failed", zap.Error(err))
		}
	}
	return names, nil
}

// Invalidate drops the cached names of organizationID.
func (c *CategoryNames) Invalidate(ctx context.Context, organizationID string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, categoryKeyPrefix+organizationID).Err(); err != nil {
		c.logger.Warn("category cache invalidation failed", zap.Error(err))
	}
}
