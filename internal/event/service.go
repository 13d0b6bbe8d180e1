package event

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ms-barpos/internal/logger"
	"ms-barpos/internal/models"
	"ms-barpos/internal/utils"
)

type DBLayer interface {
	GetActive(ctx context.Context) (*models.Event, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	ListEvents(ctx context.Context, status models.EventStatus) ([]models.Event, error)
	CreateIfNoneActive(ctx context.Context, ev *models.Event) (*models.Event, bool, error)
	CompleteActive(ctx context.Context, stats models.EventStats, at int64) (*models.Event, error)
}

type Locker interface {
	Acquire(ctx context.Context) (string, bool, error)
	Release(ctx context.Context, token string) error
}

type ChangePublisher interface {
	PublishChange(ctx context.Context, change models.Change) error
}

// StatsSource computes live statistics for an event that is still running.
type StatsSource interface {
	LiveStats(ctx context.Context, eventID string) (models.EventStats, error)
}

const (
	lockAttempts = 20
	lockBackoff  = 50 * time.Millisecond
)

type EventService struct {
	DB          DBLayer
	Lock        Locker
	Publisher   ChangePublisher
	Stats       StatsSource
	Logger      *logger.Logger
	DefaultName string
	now         func() time.Time
}

func NewEventService(db DBLayer, lock Locker, publisher ChangePublisher, log *logger.Logger, defaultName string) *EventService {
	if lock == nil {
		lock = NewLocalLock()
	}
	if strings.TrimSpace(defaultName) == "" {
		defaultName = "Event"
	}
	return &EventService{DB: db, Lock: lock, Publisher: publisher, Logger: log, DefaultName: defaultName, now: time.Now}
}

func (s *EventService) Active(ctx context.Context) (*models.Event, error) {
	return s.DB.GetActive(ctx)
}

func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	return s.DB.GetEvent(ctx, id)
}

func (s *EventService) List(ctx context.Context) ([]models.Event, error) {
	return s.DB.ListEvents(ctx, "")
}

// History lists completed events with their frozen stats, newest first.
func (s *EventService) History(ctx context.Context) ([]models.Event, error) {
	return s.DB.ListEvents(ctx, models.EventCompleted)
}

// EnsureActive returns the active event, creating a default one when none
// exists. Concurrent callers always end up with the same event.
func (s *EventService) EnsureActive(ctx context.Context) (*models.Event, error) {
	ev, err := s.DB.GetActive(ctx)
	if err == nil {
		return ev, nil
	}
	if !errors.Is(err, models.ErrNoActiveEvent) {
		return nil, err
	}

	ev, created, err := s.createLocked(ctx, s.DefaultName)
	if err != nil {
		return nil, err
	}
	if created {
		s.Logger.LogEvent("AUTO_CREATE", ev.ID, fmt.Sprintf("No active event, started %q", ev.Name))
	}
	return ev, nil
}

// Create starts a named event; it fails while another event is active.
func (s *EventService) Create(ctx context.Context, name string) (*models.Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: event name is required", models.ErrValidation)
	}

	ev, created, err := s.createLocked(ctx, name)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, fmt.Errorf("%w: %s is still running", models.ErrActiveEventExists, ev.Name)
	}
	s.Logger.LogEvent("CREATE", ev.ID, fmt.Sprintf("Started %q", ev.Name))
	return ev, nil
}

// CompleteActive closes the active event with stats as its frozen snapshot.
func (s *EventService) CompleteActive(ctx context.Context, stats models.EventStats) (*models.Event, error) {
	ev, err := s.DB.CompleteActive(ctx, stats, s.now().UnixMilli())
	if err != nil {
		return nil, err
	}
	closedAt := "now"
	if ev.CompletedAt != nil {
		closedAt = utils.MillisToTime(*ev.CompletedAt).Format(time.RFC3339)
	}
	s.Logger.LogEvent("COMPLETE", ev.ID, fmt.Sprintf("Closed at %s with total revenue ¥%d", closedAt, ev.TotalRevenue))
	s.publish(ctx, models.ChangeEventCompleted, ev.ID)
	return ev, nil
}

// Close computes the current all-customer stats and completes the active event.
func (s *EventService) Close(ctx context.Context) (*models.Event, error) {
	if s.Stats == nil {
		return nil, errors.New("event service has no stats source")
	}
	active, err := s.DB.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.Stats.LiveStats(ctx, active.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute final stats: %w", err)
	}
	return s.CompleteActive(ctx, stats)
}

func (s *EventService) createLocked(ctx context.Context, name string) (*models.Event, bool, error) {
	token, locked, err := s.acquire(ctx)
	if err != nil {
		return nil, false, err
	}
	if locked {
		defer func() {
			if err := s.Lock.Release(context.Background(), token); err != nil {
				s.Logger.Warn("EVENT", fmt.Sprintf("Failed to release create lock: %v", err))
			}
		}()
	} else {
		s.Logger.Warn("EVENT", "Create lock busy, relying on the single-active index")
	}

	now := s.now().UnixMilli()
	ev := &models.Event{
		ID:             utils.GenerateID(),
		Name:           name,
		Status:         models.EventActive,
		StartDate:      now,
		CreatedAt:      now,
		DrinkBreakdown: models.DrinkBreakdown{},
	}
	got, created, err := s.DB.CreateIfNoneActive(ctx, ev)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.publish(ctx, models.ChangeEventCreated, got.ID)
	}
	return got, created, nil
}

// acquire retries the create lock for about a second.
func (s *EventService) acquire(ctx context.Context) (string, bool, error) {
	for i := 0; i < lockAttempts; i++ {
		token, ok, err := s.Lock.Acquire(ctx)
		if err != nil {
			s.Logger.Warn("EVENT", fmt.Sprintf("Create lock unavailable: %v", err))
			return "", false, nil
		}
		if ok {
			return token, true, nil
		}
		select {
		case <-ctx.Done():
			return "", false, ctx.Err()
		case <-time.After(lockBackoff):
		}
	}
	return "", false, nil
}

func (s *EventService) publish(ctx context.Context, kind models.ChangeKind, eventID string) {
	if s.Publisher == nil {
		return
	}
	change := models.Change{Kind: kind, EventID: eventID, EntityID: eventID, OccurredAt: s.now().UnixMilli()}
	if err := s.Publisher.PublishChange(ctx, change); err != nil {
		s.Logger.Error("EVENT", fmt.Sprintf("Failed to publish %s: %v", kind, err))
	}
}
