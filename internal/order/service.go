package order

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
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus, at int64) error
	ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error)
	ListByStatus(ctx context.Context, eventID string, statuses []models.OrderStatus) ([]models.Order, error)
}

type CustomerReader interface {
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
}

type CatalogSource interface {
	Catalog(ctx context.Context) (models.Catalog, error)
}

type ActiveEventSource interface {
	Active(ctx context.Context) (*models.Event, error)
}

type DismissedStore interface {
	Dismiss(ctx context.Context, eventID, orderID string) error
	Dismissed(ctx context.Context, eventID string) (map[string]struct{}, error)
}

type ChangePublisher interface {
	PublishChange(ctx context.Context, change models.Change) error
}

type OrderService struct {
	DB        DBLayer
	Customers CustomerReader
	Menu      CatalogSource
	Events    ActiveEventSource
	Dismissed DismissedStore
	Publisher ChangePublisher
	Logger    *logger.Logger
	now       func() time.Time
}

func NewOrderService(db DBLayer, customers CustomerReader, menu CatalogSource, events ActiveEventSource,
	dismissed DismissedStore, publisher ChangePublisher, log *logger.Logger) *OrderService {
	if dismissed == nil {
		dismissed = NewLocalDismissedStore()
	}
	return &OrderService{
		DB:        db,
		Customers: customers,
		Menu:      menu,
		Events:    events,
		Dismissed: dismissed,
		Publisher: publisher,
		Logger:    log,
		now:       time.Now,
	}
}

// ---------------- ORDERS ----------------

// MergeLines validates requested lines and folds repeated items into one
// line, keeping first-seen order.
func MergeLines(lines []models.OrderLine) ([]models.OrderLine, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: an order needs at least one item", models.ErrValidation)
	}
	var merged []models.OrderLine
	index := map[string]int{}
	for _, l := range lines {
		id := strings.TrimSpace(l.ItemID)
		if id == "" {
			return nil, fmt.Errorf("%w: item id is required", models.ErrValidation)
		}
		if l.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity for %s must be at least 1", models.ErrValidation, id)
		}
		if i, ok := index[id]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[id] = len(merged)
		merged = append(merged, models.OrderLine{ItemID: id, Quantity: l.Quantity})
	}
	return merged, nil
}

// PlaceOrder records a new Pending order on an unpaid tab of the active event.
func (s *OrderService) PlaceOrder(ctx context.Context, customerID string, lines []models.OrderLine) (*models.Order, error) {
	merged, err := MergeLines(lines)
	if err != nil {
		return nil, err
	}

	customer, err := s.Customers.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer.Paid {
		return nil, fmt.Errorf("%w: %s", models.ErrAlreadyPaid, customer.Name)
	}

	active, err := s.Events.Active(ctx)
	if err != nil {
		return nil, err
	}
	if active.ID != customer.EventID {
		return nil, fmt.Errorf("%w: tab %s belongs to a closed event", models.ErrConflict, customer.Name)
	}

	catalog, err := s.Menu.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(merged))
	for _, l := range merged {
		menuItem, ok := catalog[l.ItemID]
		if !ok || menuItem.Archived {
			return nil, fmt.Errorf("%w: menu item %s is not available", models.ErrValidation, l.ItemID)
		}
		items = append(items, models.OrderItem{
			ID:       utils.GenerateID(),
			ItemID:   l.ItemID,
			Name:     menuItem.Name,
			Quantity: l.Quantity,
		})
	}

	now := s.now().UnixMilli()
	order := &models.Order{
		ID:           utils.GenerateID(),
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		EventID:      customer.EventID,
		Items:        items,
		Status:       models.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.DB.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.Logger.LogOrder("PLACE", order.ID, fmt.Sprintf("%d line(s) for %s", len(items), customer.Name))
	s.publish(ctx, models.ChangeOrderCreated, order)
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return s.DB.GetOrderByID(ctx, id)
}

// ListByCustomer returns a tab's orders, newest first.
func (s *OrderService) ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	if _, err := s.Customers.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	return s.DB.ListByCustomer(ctx, customerID)
}

// UpdateStatus applies one state machine step.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, to models.OrderStatus) (*models.Order, error) {
	if !ValidStatus(to) {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, to)
	}
	order, err := s.DB.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(order.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, order.Status, to)
	}

	now := s.now().UnixMilli()
	if err := s.DB.UpdateStatus(ctx, id, order.Status, to, now); err != nil {
		return nil, err
	}
	s.Logger.LogOrder("STATUS", id, fmt.Sprintf("%s -> %s", order.Status, to))

	order.Status = to
	order.UpdatedAt = now
	s.publish(ctx, models.ChangeOrderStatusChanged, order)
	return order, nil
}

func (s *OrderService) CancelOrder(ctx context.Context, id string) (*models.Order, error) {
	return s.UpdateStatus(ctx, id, models.StatusCancelled)
}

// ---------------- BAR BOARD ----------------

// Board lists open orders of the active event, oldest first, minus the ones
// dismissed from the board.
func (s *OrderService) Board(ctx context.Context) ([]models.Order, error) {
	active, err := s.Events.Active(ctx)
	if errors.Is(err, models.ErrNoActiveEvent) {
		return []models.Order{}, nil
	}
	if err != nil {
		return nil, err
	}

	orders, err := s.DB.ListByStatus(ctx, active.ID, OpenStatuses)
	if err != nil {
		return nil, err
	}
	dismissed, err := s.Dismissed.Dismissed(ctx, active.ID)
	if err != nil {
		s.Logger.Warn("KITCHEN", fmt.Sprintf("Could not load dismissed orders, showing all: %v", err))
		dismissed = nil
	}

	board := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if _, hidden := dismissed[o.ID]; hidden {
			continue
		}
		board = append(board, o)
	}
	return board, nil
}

// Dismiss hides an order from the bar board without touching the order.
func (s *OrderService) Dismiss(ctx context.Context, orderID string) error {
	order, err := s.DB.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if err := s.Dismissed.Dismiss(ctx, order.EventID, order.ID); err != nil {
		return fmt.Errorf("failed to dismiss order %s: %w", orderID, err)
	}
	s.Logger.LogOrder("DISMISS", orderID, "hidden from bar board")
	return nil
}

func (s *OrderService) publish(ctx context.Context, kind models.ChangeKind, order *models.Order) {
	if s.Publisher == nil {
		return
	}
	change := models.Change{Kind: kind, EventID: order.EventID, EntityID: order.ID, OccurredAt: s.now().UnixMilli()}
	if err := s.Publisher.PublishChange(ctx, change); err != nil {
		s.Logger.Error("ORDER", fmt.Sprintf("Failed to publish %s for %s: %v", kind, order.ID, err))
	}
}
