package db_test

import (
	"context"
	"testing"

	"ms-barpos/internal/database/dbtest"
	"ms-barpos/internal/menu/db"
	"ms-barpos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *db.DB {
	return &db.DB{Bun: dbtest.New(t)}
}

func TestCreateAndGetItem(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	item := &models.MenuItem{ID: "beer", Name: "Beer", Price: 500, Type: models.DrinkAlcoholic, CreatedAt: 1, UpdatedAt: 1}
	require.NoError(t, store.CreateItem(ctx, item))

	got, err := store.GetItem(ctx, "beer")
	require.NoError(t, err)
	assert.Equal(t, "Beer", got.Name)
	assert.Equal(t, int64(500), got.Price)
	assert.Equal(t, models.DrinkAlcoholic, got.Type)
	assert.False(t, got.Archived)

	exists, err := store.ItemExists(ctx, "beer")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = store.GetItem(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListItemsHidesArchived(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.CreateItem(ctx, &models.MenuItem{ID: "wine", Name: "Wine", Price: 600, Type: models.DrinkAlcoholic}))
	require.NoError(t, store.CreateItem(ctx, &models.MenuItem{ID: "cola", Name: "Cola", Price: 200, Type: models.DrinkNonAlcoholic}))
	require.NoError(t, store.CreateItem(ctx, &models.MenuItem{ID: "old", Name: "Absinthe", Price: 900, Type: models.DrinkAlcoholic, Archived: true}))

	active, err := store.ListItems(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Cola", active[0].Name)
	assert.Equal(t, "Wine", active[1].Name)

	all, err := store.ListItems(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	n, err := store.CountItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestUpdateAndDeleteItem(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	item := &models.MenuItem{ID: "beer", Name: "Beer", Price: 500, Type: models.DrinkAlcoholic}
	require.NoError(t, store.CreateItem(ctx, item))

	item.Price = 550
	item.Archived = true
	require.NoError(t, store.UpdateItem(ctx, item))

	got, err := store.GetItem(ctx, "beer")
	require.NoError(t, err)
	assert.Equal(t, int64(550), got.Price)
	assert.True(t, got.Archived)

	require.NoError(t, store.DeleteItem(ctx, "beer"))
	assert.ErrorIs(t, store.DeleteItem(ctx, "beer"), models.ErrNotFound)
	assert.ErrorIs(t, store.UpdateItem(ctx, item), models.ErrNotFound)
}
