package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ms-barpos/internal/database/dbtest"
	"ms-barpos/internal/event/db"
	eventredis "ms-barpos/internal/event/redis"
	"ms-barpos/internal/logger"
	"ms-barpos/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStats struct {
	mock.Mock
}

func (m *MockStats) LiveStats(ctx context.Context, eventID string) (models.EventStats, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(models.EventStats), args.Error(1)
}

type recordingPublisher struct {
	mu      sync.Mutex
	changes []models.Change
}

func (p *recordingPublisher) PublishChange(ctx context.Context, c models.Change) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, c)
	return nil
}

func (p *recordingPublisher) kinds() []models.ChangeKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []models.ChangeKind
	for _, c := range p.changes {
		out = append(out, c.Kind)
	}
	return out
}

func newTestService(t *testing.T, lock Locker) (*EventService, *db.DB, *recordingPublisher) {
	store := &db.DB{Bun: dbtest.New(t)}
	pub := &recordingPublisher{}
	return NewEventService(store, lock, pub, logger.Nop(), "Friday Bar"), store, pub
}

func TestEnsureActiveCreatesOnce(t *testing.T) {
	s, store, pub := newTestService(t, nil)
	ctx := context.Background()

	first, err := s.EnsureActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Friday Bar", first.Name)
	assert.Equal(t, models.EventActive, first.Status)

	second, err := s.EnsureActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	all, err := store.ListEvents(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, []models.ChangeKind{models.ChangeEventCreated}, pub.kinds())
}

func TestEnsureActiveConcurrentCallers(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	for name, lock := range map[string]Locker{
		"local": NewLocalLock(),
		"redis": eventredis.NewCreateLock(client, 5*time.Second),
	} {
		t.Run(name, func(t *testing.T) {
			s, store, _ := newTestService(t, lock)
			ctx := context.Background()

			var wg sync.WaitGroup
			ids := make([]string, 10)
			for i := range ids {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					ev, err := s.EnsureActive(ctx)
					if assert.NoError(t, err) {
						ids[i] = ev.ID
					}
				}(i)
			}
			wg.Wait()

			for _, id := range ids {
				assert.Equal(t, ids[0], id)
			}
			all, err := store.ListEvents(ctx, models.EventActive)
			require.NoError(t, err)
			assert.Len(t, all, 1)
		})
	}
}

func TestCreate(t *testing.T) {
	s, store, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := s.Create(ctx, "   ")
	assert.ErrorIs(t, err, models.ErrValidation)

	ev, err := s.Create(ctx, "Summer Party")
	require.NoError(t, err)
	assert.Equal(t, "Summer Party", ev.Name)

	_, err = s.Create(ctx, "Second Party")
	assert.ErrorIs(t, err, models.ErrActiveEventExists)

	all, err := store.ListEvents(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Summer Party", all[0].Name)
}

func TestCompleteActiveWithoutEvent(t *testing.T) {
	s, store, pub := newTestService(t, nil)
	ctx := context.Background()

	_, err := s.CompleteActive(ctx, models.EventStats{TotalRevenue: 10})
	assert.ErrorIs(t, err, models.ErrNoActiveEvent)

	all, err := store.ListEvents(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, pub.kinds())
}

func TestClose(t *testing.T) {
	s, _, pub := newTestService(t, nil)
	ctx := context.Background()
	stats := new(MockStats)
	s.Stats = stats

	ev, err := s.EnsureActive(ctx)
	require.NoError(t, err)

	final := models.EventStats{TotalCustomers: 2, ParticipantRevenue: 2000, TotalRevenue: 2500, DrinkRevenue: 500, TotalDrinks: 1, AlcoholicDrinks: 1,
		DrinkBreakdown: models.DrinkBreakdown{"beer-lager": {ItemName: "Lager Beer", Quantity: 1, TotalRevenue: 500}}}
	stats.On("LiveStats", ctx, ev.ID).Return(final, nil)

	done, err := s.Close(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.EventCompleted, done.Status)
	assert.Equal(t, final, done.FrozenStats())
	assert.Equal(t, int64(1), done.TotalOrders)

	history, err := s.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, ev.ID, history[0].ID)

	_, err = s.Active(ctx)
	assert.ErrorIs(t, err, models.ErrNoActiveEvent)
	assert.Equal(t, []models.ChangeKind{models.ChangeEventCreated, models.ChangeEventCompleted}, pub.kinds())
}

func TestCloseStatsFailureLeavesEventActive(t *testing.T) {
	s, _, _ := newTestService(t, nil)
	ctx := context.Background()
	stats := new(MockStats)
	s.Stats = stats

	ev, err := s.EnsureActive(ctx)
	require.NoError(t, err)
	stats.On("LiveStats", ctx, ev.ID).Return(models.EventStats{}, errors.New("db gone"))

	_, err = s.Close(ctx)
	assert.Error(t, err)

	active, err := s.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, ev.ID, active.ID)
}

func TestLocalLock(t *testing.T) {
	l := NewLocalLock()
	ctx := context.Background()

	token, ok, err := l.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, _ = l.Acquire(ctx)
	assert.False(t, ok)

	require.NoError(t, l.Release(ctx, "stale"))
	_, ok, _ = l.Acquire(ctx)
	assert.False(t, ok)

	require.NoError(t, l.Release(ctx, token))
	_, ok, _ = l.Acquire(ctx)
	assert.True(t, ok)
}
