package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	cacheKeyPrefix = "repositories_cache:"

	// CacheTTL bounds how long a fetched package index is served before a
	// refresh is required.
	CacheTTL = time.Hour
)

// Cache stores fetched package indexes in Redis, one key per repository.
type Cache struct {
	client *redis.Client
}

// NewCache creates a Redis-backed package metadata cache.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Put stores the package list for a repository with the cache TTL.
func (c *Cache) Put(ctx context.Context, id uuid.UUID, packages []Package) error {
	data, err := json.Marshal(packages)
	if err != nil {
		return fmt.Errorf("encode package index: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(id), data, CacheTTL).Err(); err != nil {
		return fmt.Errorf("cache package index: %w", err)
	}
	return nil
}

// Get returns the cached package list, or (nil, false, nil) on a miss.
func (c *Cache) Get(ctx context.Context, id uuid.UUID) ([]Package, bool, error) {
	data, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read package index: %w", err)
	}

	var packages []Package
	if err := json.Unmarshal(data, &packages); err != nil {
		// A corrupt entry is a miss, the next refresh overwrites it.
		return nil, false, nil
	}
	return packages, true, nil
}

// Exists reports whether a repository has a live cache entry.
func (c *Cache) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := c.client.Exists(ctx, cacheKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("probe package index: %w", err)
	}
	return n == 1, nil
}

// Invalidate drops the cache entry of a repository.
func (c *Cache) Invalidate(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		return fmt.Errorf("drop package index: %w", err)
	}
	return nil
}

func cacheKey(id uuid.UUID) string {
	return cacheKeyPrefix + id.String()
}
