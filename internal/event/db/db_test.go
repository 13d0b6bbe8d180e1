package db_test

import (
	"context"
	"testing"

	"ms-barpos/internal/database/dbtest"
	"ms-barpos/internal/event/db"
	"ms-barpos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEvent(id string, createdAt int64) *models.Event {
	return &models.Event{ID: id, Name: "Event " + id, Status: models.EventActive, StartDate: createdAt, CreatedAt: createdAt}
}

func TestCreateIfNoneActive(t *testing.T) {
	store := &db.DB{Bun: dbtest.New(t)}
	ctx := context.Background()

	_, err := store.GetActive(ctx)
	assert.ErrorIs(t, err, models.ErrNoActiveEvent)

	ev, created, err := store.CreateIfNoneActive(ctx, newEvent("e1", 1))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "e1", ev.ID)

	ev, created, err = store.CreateIfNoneActive(ctx, newEvent("e2", 2))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "e1", ev.ID)

	all, err := store.ListEvents(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCompleteActive(t *testing.T) {
	store := &db.DB{Bun: dbtest.New(t)}
	ctx := context.Background()

	_, err := store.CompleteActive(ctx, models.EventStats{}, 5)
	assert.ErrorIs(t, err, models.ErrNoActiveEvent)

	_, _, err = store.CreateIfNoneActive(ctx, newEvent("e1", 1))
	require.NoError(t, err)

	stats := models.EventStats{
		TotalCustomers: 4, TotalDrinks: 3, AlcoholicDrinks: 2, NonAlcoholicDrinks: 1,
		ParticipantRevenue: 4000, DrinkRevenue: 1200, TotalRevenue: 5200,
		DrinkBreakdown: models.DrinkBreakdown{"beer": {ItemName: "Beer", Quantity: 2, TotalRevenue: 1000}},
	}
	done, err := store.CompleteActive(ctx, stats, 99)
	require.NoError(t, err)
	assert.Equal(t, models.EventCompleted, done.Status)

	got, err := store.GetEvent(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, models.EventCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, int64(99), *got.CompletedAt)
	assert.Equal(t, int64(3), got.TotalOrders)
	assert.Equal(t, int64(5200), got.TotalRevenue)
	assert.Equal(t, stats, got.FrozenStats())

	_, err = store.GetActive(ctx)
	assert.ErrorIs(t, err, models.ErrNoActiveEvent)

	// a new active event may start once the old one is closed
	_, created, err := store.CreateIfNoneActive(ctx, newEvent("e2", 2))
	require.NoError(t, err)
	assert.True(t, created)

	history, err := store.ListEvents(ctx, models.EventCompleted)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "e1", history[0].ID)

	all, err := store.ListEvents(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "e2", all[0].ID)
}

func TestGetEventNotFound(t *testing.T) {
	store := &db.DB{Bun: dbtest.New(t)}
	_, err := store.GetEvent(context.Background(), "nope")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
