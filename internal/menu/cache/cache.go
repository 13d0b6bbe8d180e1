package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ms-barpos/internal/models"

	"github.com/go-redis/redis/v8"
)

const catalogKey = "menu:catalog"

// CatalogCache keeps a JSON copy of the whole menu in Redis.
type CatalogCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CatalogCache{Client: client, TTL: ttl}
}

// Get returns the cached items; ok is false on a miss.
func (c *CatalogCache) Get(ctx context.Context) ([]models.MenuItem, bool, error) {
	raw, err := c.Client.Get(ctx, catalogKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var items []models.MenuItem
	if err := json.Unmarshal(raw, &items); err != nil {
		// corrupt entry, treat as a miss so it gets rewritten
		return nil, false, nil
	}
	return items, true, nil
}

func (c *CatalogCache) Set(ctx context.Context, items []models.MenuItem) error {
	if items == nil {
		items = []models.MenuItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, catalogKey, raw, c.TTL).Err()
}

func (c *CatalogCache) Invalidate(ctx context.Context) error {
	return c.Client.Del(ctx, catalogKey).Err()
}
