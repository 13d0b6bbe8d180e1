package cache

import (
	"context"
	"testing"
	"time"

	"ms-barpos/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func TestCatalogCacheRoundTrip(t *testing.T) {
	mr, client := setupTestRedis(t)
	c := NewCatalogCache(client, time.Minute)
	ctx := context.Background()

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	items := []models.MenuItem{{ID: "beer", Name: "Beer", Price: 500, Type: models.DrinkAlcoholic}}
	require.NoError(t, c.Set(ctx, items))
	assert.Equal(t, time.Minute, mr.TTL(catalogKey))

	got, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "beer", got[0].ID)

	require.NoError(t, c.Invalidate(ctx))
	_, ok, err = c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCatalogCacheEmptyCatalogIsAHit(t *testing.T) {
	_, client := setupTestRedis(t)
	c := NewCatalogCache(client, 0)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, nil))
	got, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestCatalogCacheCorruptEntry(t *testing.T) {
	mr, client := setupTestRedis(t)
	c := NewCatalogCache(client, time.Minute)
	require.NoError(t, mr.Set(catalogKey, "{not json"))

	_, ok, err := c.Get(context.Background())
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestCatalogCacheExpiry(t *testing.T) {
	mr, client := setupTestRedis(t)
	c := NewCatalogCache(client, time.Second)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, []models.MenuItem{{ID: "beer"}}))
	mr.FastForward(2 * time.Second)

	_, ok, err := c.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
