package analytics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ms-barpos/internal/aggregation"
	"ms-barpos/internal/logger"
	"ms-barpos/internal/models"
)

// Broadcaster fans stats updates out to display surfaces.
type Broadcaster interface {
	Emit(update models.StatsUpdate)
}

// Live keeps the last known good stats per event and recomputes them on
// every change notification.
type Live struct {
	Stats   *Service
	Emitter Broadcaster
	Logger  *logger.Logger

	mu   sync.Mutex
	last map[string]models.StatsUpdate
	now  func() time.Time
}

func NewLive(stats *Service, emitter Broadcaster, log *logger.Logger) *Live {
	return &Live{
		Stats:   stats,
		Emitter: emitter,
		Logger:  log,
		last:    make(map[string]models.StatsUpdate),
		now:     time.Now,
	}
}

// PublishChange lets the tracker stand in for the change feed when Kafka is
// disabled: writes are applied in-process.
func (l *Live) PublishChange(ctx context.Context, change models.Change) error {
	return l.HandleChange(ctx, change)
}

// HandleChange recomputes the stats of the event a change touched. Menu
// changes carry no event and refresh the active one.
func (l *Live) HandleChange(ctx context.Context, change models.Change) error {
	eventID := change.EventID
	if eventID == "" {
		ev, err := l.Stats.Events.Active(ctx)
		if errors.Is(err, models.ErrNoActiveEvent) {
			return nil
		}
		if err != nil {
			return err
		}
		eventID = ev.ID
	}
	l.Refresh(ctx, eventID)
	return nil
}

// Refresh recomputes one event and broadcasts the result. On failure the
// previous stats are kept, marked stale, and broadcast with the error.
func (l *Live) Refresh(ctx context.Context, eventID string) models.StatsUpdate {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats, err := l.Stats.EventStats(ctx, eventID, aggregation.Options{})
	at := l.now().UnixMilli()

	var update models.StatsUpdate
	if err != nil {
		l.Logger.Error("ANALYTICS", fmt.Sprintf("Stats refresh for %s failed, keeping last known: %v", eventID, err))
		prev := l.last[eventID]
		update = models.StatsUpdate{
			EventID: eventID,
			Stats:   cloneStats(prev.Stats),
			Stale:   true,
			Error:   err.Error(),
			At:      at,
		}
		prev.Stale = true
		l.last[eventID] = prev
	} else {
		update = models.StatsUpdate{EventID: eventID, Stats: stats, At: at}
		l.last[eventID] = models.StatsUpdate{EventID: eventID, Stats: cloneStats(stats), At: at}
	}

	if l.Emitter != nil {
		l.Emitter.Emit(update)
	}
	return update
}

// Snapshot returns the last broadcast stats of an event.
func (l *Live) Snapshot(eventID string) (models.StatsUpdate, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, ok := l.last[eventID]
	if ok {
		u.Stats = cloneStats(u.Stats)
	}
	return u, ok
}

func cloneStats(s models.EventStats) models.EventStats {
	s.DrinkBreakdown = s.DrinkBreakdown.Clone()
	return s
}
