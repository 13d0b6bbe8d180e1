package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ms-barpos/internal/aggregation"
	"ms-barpos/internal/logger"
	"ms-barpos/internal/models"
)

type DBLayer interface {
	GetCustomersByEventID(ctx context.Context, eventID string) ([]models.Customer, error)
	GetOrdersByEventID(ctx context.Context, eventID string) ([]models.Order, error)
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	GetOrdersByCustomerID(ctx context.Context, customerID string) ([]models.Order, error)
}

type EventReader interface {
	Get(ctx context.Context, id string) (*models.Event, error)
	Active(ctx context.Context) (*models.Event, error)
}

type CatalogSource interface {
	Catalog(ctx context.Context) (models.Catalog, error)
}

// Service handles analytics operations
type Service struct {
	DB     DBLayer
	Events EventReader
	Menu   CatalogSource
	Logger *logger.Logger
}

// NewService creates a new analytics service
func NewService(db DBLayer, events EventReader, menu CatalogSource, log *logger.Logger) *Service {
	return &Service{DB: db, Events: events, Menu: menu, Logger: log}
}

// EventSummary pairs an event with its statistics. Event is nil when no
// event is running.
type EventSummary struct {
	Event *models.Event     `json:"event"`
	Stats models.EventStats `json:"stats"`
}

// EventStats returns the frozen snapshot of a completed event, or freshly
// computed stats for a running one.
func (s *Service) EventStats(ctx context.Context, eventID string, opts aggregation.Options) (models.EventStats, error) {
	ev, err := s.Events.Get(ctx, eventID)
	if err != nil {
		return models.EventStats{}, err
	}
	if ev.Status == models.EventCompleted {
		return ev.FrozenStats(), nil
	}
	return s.compute(ctx, eventID, opts)
}

// LiveStats computes all-customer stats regardless of the event's status.
func (s *Service) LiveStats(ctx context.Context, eventID string) (models.EventStats, error) {
	return s.compute(ctx, eventID, aggregation.Options{})
}

// ActiveStats reports on the active event; zeros when none is running.
func (s *Service) ActiveStats(ctx context.Context) (*EventSummary, error) {
	return s.activeSummary(ctx, aggregation.Options{})
}

// OpenTabsStats reports on the unpaid customers of the active event.
func (s *Service) OpenTabsStats(ctx context.Context) (*EventSummary, error) {
	return s.activeSummary(ctx, aggregation.Options{ExcludePaid: true})
}

// CustomerTotal returns the amount due on one tab.
func (s *Service) CustomerTotal(ctx context.Context, customerID string) (int64, error) {
	c, err := s.DB.GetCustomer(ctx, customerID)
	if err != nil {
		return 0, err
	}
	orders, err := s.DB.GetOrdersByCustomerID(ctx, customerID)
	if err != nil {
		return 0, fmt.Errorf("failed to load orders for %s: %w", customerID, err)
	}
	catalog, err := s.Menu.Catalog(ctx)
	if err != nil {
		return 0, err
	}
	return aggregation.CustomerTotal(*c, orders, catalog), nil
}

func (s *Service) activeSummary(ctx context.Context, opts aggregation.Options) (*EventSummary, error) {
	ev, err := s.Events.Active(ctx)
	if errors.Is(err, models.ErrNoActiveEvent) {
		return &EventSummary{Stats: models.EventStats{DrinkBreakdown: models.DrinkBreakdown{}}}, nil
	}
	if err != nil {
		return nil, err
	}
	stats, err := s.compute(ctx, ev.ID, opts)
	if err != nil {
		return nil, err
	}
	return &EventSummary{Event: ev, Stats: stats}, nil
}

// compute loads one consistent snapshot of the event (two batched queries
// plus the catalog) and folds it through the aggregation engine.
func (s *Service) compute(ctx context.Context, eventID string, opts aggregation.Options) (models.EventStats, error) {
	customers, err := s.DB.GetCustomersByEventID(ctx, eventID)
	if err != nil {
		return models.EventStats{}, fmt.Errorf("failed to load customers for %s: %w", eventID, err)
	}
	orders, err := s.DB.GetOrdersByEventID(ctx, eventID)
	if err != nil {
		return models.EventStats{}, fmt.Errorf("failed to load orders for %s: %w", eventID, err)
	}
	catalog, err := s.Menu.Catalog(ctx)
	if err != nil {
		return models.EventStats{}, err
	}

	report := aggregation.Compute(aggregation.Input{
		Customers:        customers,
		OrdersByCustomer: aggregation.GroupByCustomer(orders),
		Catalog:          catalog,
	}, opts)

	if report.CatalogEmpty && len(orders) > 0 {
		s.Logger.Warn("ANALYTICS", fmt.Sprintf("Menu catalog is empty, every drink of %s priced at fallback", eventID))
	} else if len(report.MissingItemIDs) > 0 {
		s.Logger.Warn("ANALYTICS", fmt.Sprintf("Items missing from menu, priced at fallback: %s", strings.Join(report.MissingItemIDs, ", ")))
	}
	return report.Stats, nil
}
