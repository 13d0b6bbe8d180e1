package analytics_test

import (
	"context"
	"errors"
	"testing"

	"ms-barpos/internal/aggregation"
	"ms-barpos/internal/analytics"
	"ms-barpos/internal/database/dbtest"
	"ms-barpos/internal/event"
	eventdb "ms-barpos/internal/event/db"
	"ms-barpos/internal/logger"
	"ms-barpos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type staticCatalog models.Catalog

func (c staticCatalog) Catalog(ctx context.Context) (models.Catalog, error) {
	return models.Catalog(c), nil
}

var catalog = staticCatalog{
	"beer": {ID: "beer", Name: "Beer", Price: 500, Type: models.DrinkAlcoholic},
	"cola": {ID: "cola", Name: "Cola", Price: 200, Type: models.DrinkNonAlcoholic},
}

type env struct {
	bun     *bun.DB
	events  *event.EventService
	service *analytics.Service
	eventID string
}

// setup seeds the reference scenario: A (3 guests; 2×beer, 1×cola) and
// B (1 guest; a cancelled order of 5×beer).
func setup(t *testing.T) *env {
	ctx := context.Background()
	bunDB := dbtest.New(t)
	log := logger.Nop()

	events := event.NewEventService(&eventdb.DB{Bun: bunDB}, nil, nil, log, "Event")
	ev, err := events.EnsureActive(ctx)
	require.NoError(t, err)

	insert := func(model interface{}) {
		_, err := bunDB.NewInsert().Model(model).Exec(ctx)
		require.NoError(t, err)
	}
	insert(&models.Customer{ID: "a", Name: "A", EventID: ev.ID, GuestCount: 3, CreatedAt: 1})
	insert(&models.Customer{ID: "b", Name: "B", EventID: ev.ID, GuestCount: 1, CreatedAt: 2})
	insert(&models.Order{ID: "o1", CustomerID: "a", EventID: ev.ID, Status: models.StatusServed, CreatedAt: 3, UpdatedAt: 3,
		Items: []models.OrderItem{{ID: "i1", ItemID: "beer", Name: "Beer", Quantity: 2}, {ID: "i2", ItemID: "cola", Name: "Cola", Quantity: 1}}})
	insert(&models.Order{ID: "o2", CustomerID: "b", EventID: ev.ID, Status: models.StatusCancelled, CreatedAt: 4, UpdatedAt: 4,
		Items: []models.OrderItem{{ID: "i3", ItemID: "beer", Name: "Beer", Quantity: 5}}})

	svc := analytics.NewService(analytics.NewDB(bunDB), events, catalog, log)
	events.Stats = svc
	return &env{bun: bunDB, events: events, service: svc, eventID: ev.ID}
}

func TestEventStatsScenario(t *testing.T) {
	e := setup(t)

	stats, err := e.service.EventStats(context.Background(), e.eventID, aggregation.Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalCustomers)
	assert.Equal(t, int64(4000), stats.ParticipantRevenue)
	assert.Equal(t, int64(3), stats.TotalDrinks)
	assert.Equal(t, int64(2), stats.AlcoholicDrinks)
	assert.Equal(t, int64(1), stats.NonAlcoholicDrinks)
	assert.Equal(t, int64(1200), stats.DrinkRevenue)
	assert.Equal(t, int64(5200), stats.TotalRevenue)
	assert.Equal(t, models.DrinkBreakdownEntry{ItemName: "Beer", Quantity: 2, TotalRevenue: 1000}, stats.DrinkBreakdown["beer"])
	assert.Equal(t, models.DrinkBreakdownEntry{ItemName: "Cola", Quantity: 1, TotalRevenue: 200}, stats.DrinkBreakdown["cola"])
}

func TestOpenTabsExcludePaid(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.bun.NewUpdate().Model((*models.Customer)(nil)).Set("paid = ?", true).Where("id = ?", "a").Exec(ctx)
	require.NoError(t, err)

	open, err := e.service.OpenTabsStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), open.Stats.TotalCustomers)
	assert.Equal(t, int64(1000), open.Stats.TotalRevenue)

	all, err := e.service.ActiveStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, e.eventID, all.Event.ID)
	assert.Equal(t, int64(5200), all.Stats.TotalRevenue)
}

func TestCloseFreezesStats(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	closed, err := e.events.Close(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.EventCompleted, closed.Status)
	assert.Equal(t, int64(5200), closed.TotalRevenue)
	assert.Equal(t, int64(3), closed.TotalOrders)

	// later writes never change a completed event's figures
	_, err = e.bun.NewInsert().Model(&models.Order{ID: "late", CustomerID: "a", EventID: e.eventID, Status: models.StatusPending,
		Items: []models.OrderItem{{ID: "i9", ItemID: "beer", Name: "Beer", Quantity: 10}}}).Exec(ctx)
	require.NoError(t, err)

	stats, err := e.service.EventStats(ctx, e.eventID, aggregation.Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(5200), stats.TotalRevenue)
	assert.Equal(t, int64(2), stats.DrinkBreakdown["beer"].Quantity)

	summary, err := e.service.ActiveStats(ctx)
	require.NoError(t, err)
	assert.Nil(t, summary.Event)
	assert.Zero(t, summary.Stats.TotalRevenue)
}

func TestCustomerTotal(t *testing.T) {
	e := setup(t)

	total, err := e.service.CustomerTotal(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, int64(4200), total)

	total, err = e.service.CustomerTotal(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), total)

	_, err = e.service.CustomerTotal(context.Background(), "ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUnknownEvent(t *testing.T) {
	e := setup(t)
	_, err := e.service.EventStats(context.Background(), "missing", aggregation.Options{})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

// MockDBLayer lets the live tracker tests fail the store on demand.
type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) GetCustomersByEventID(ctx context.Context, eventID string) ([]models.Customer, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Customer), args.Error(1)
}

func (m *MockDBLayer) GetOrdersByEventID(ctx context.Context, eventID string) ([]models.Order, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockDBLayer) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockDBLayer) GetOrdersByCustomerID(ctx context.Context, customerID string) ([]models.Order, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

type activeEvent struct{ id string }

func (a activeEvent) Get(ctx context.Context, id string) (*models.Event, error) {
	if id != a.id {
		return nil, models.ErrNotFound
	}
	return &models.Event{ID: a.id, Status: models.EventActive}, nil
}

func (a activeEvent) Active(ctx context.Context) (*models.Event, error) {
	return &models.Event{ID: a.id, Status: models.EventActive}, nil
}

type recorder struct {
	updates []models.StatsUpdate
}

func (r *recorder) Emit(u models.StatsUpdate) { r.updates = append(r.updates, u) }

func TestLiveKeepsLastKnownGoodOnFailure(t *testing.T) {
	ctx := context.Background()
	db := new(MockDBLayer)
	out := &recorder{}
	live := analytics.NewLive(analytics.NewService(db, activeEvent{id: "ev1"}, catalog, logger.Nop()), out, logger.Nop())

	db.On("GetCustomersByEventID", ctx, "ev1").Return([]models.Customer{{ID: "a", GuestCount: 2}}, nil).Once()
	db.On("GetOrdersByEventID", ctx, "ev1").Return([]models.Order{{ID: "o1", CustomerID: "a", Status: models.StatusPending,
		Items: []models.OrderItem{{ItemID: "beer", Quantity: 1}}}}, nil).Once()

	require.NoError(t, live.HandleChange(ctx, models.Change{Kind: models.ChangeOrderCreated, EventID: "ev1"}))
	require.Len(t, out.updates, 1)
	assert.False(t, out.updates[0].Stale)
	assert.Equal(t, int64(2500), out.updates[0].Stats.TotalRevenue)

	db.On("GetCustomersByEventID", ctx, "ev1").Return(nil, errors.New("connection reset")).Once()

	require.NoError(t, live.HandleChange(ctx, models.Change{Kind: models.ChangeOrderCreated, EventID: "ev1"}))
	require.Len(t, out.updates, 2)
	failed := out.updates[1]
	assert.True(t, failed.Stale)
	assert.Contains(t, failed.Error, "connection reset")
	assert.Equal(t, int64(2500), failed.Stats.TotalRevenue)

	snap, ok := live.Snapshot("ev1")
	require.True(t, ok)
	assert.True(t, snap.Stale)
	assert.Equal(t, int64(2500), snap.Stats.TotalRevenue)
}

func TestLiveMenuChangeRefreshesActiveEvent(t *testing.T) {
	ctx := context.Background()
	db := new(MockDBLayer)
	out := &recorder{}
	live := analytics.NewLive(analytics.NewService(db, activeEvent{id: "ev1"}, catalog, logger.Nop()), out, logger.Nop())

	db.On("GetCustomersByEventID", ctx, "ev1").Return([]models.Customer{}, nil)
	db.On("GetOrdersByEventID", ctx, "ev1").Return([]models.Order{}, nil)

	require.NoError(t, live.PublishChange(ctx, models.Change{Kind: models.ChangeMenuChanged, EntityID: "beer"}))
	require.Len(t, out.updates, 1)
	assert.Equal(t, "ev1", out.updates[0].EventID)
}
