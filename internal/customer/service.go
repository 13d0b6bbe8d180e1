package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ms-barpos/internal/aggregation"
	"ms-barpos/internal/customer/qrcode"
	"ms-barpos/internal/logger"
	"ms-barpos/internal/models"
	"ms-barpos/internal/utils"
)

type DBLayer interface {
	CreateCustomer(ctx context.Context, c *models.Customer) error
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, id string, apply func(c *models.Customer) error) (*models.Customer, error)
	ListByEvent(ctx context.Context, eventID string, unpaidOnly bool) ([]models.Customer, error)
	MarkPaid(ctx context.Context, id string, at int64) (*models.Customer, error)
}

type EventProvider interface {
	EnsureActive(ctx context.Context) (*models.Event, error)
	Active(ctx context.Context) (*models.Event, error)
}

type OrderLister interface {
	ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error)
}

type CatalogSource interface {
	Catalog(ctx context.Context) (models.Catalog, error)
}

type ChangePublisher interface {
	PublishChange(ctx context.Context, change models.Change) error
}

type CustomerService struct {
	DB        DBLayer
	Events    EventProvider
	Orders    OrderLister
	Menu      CatalogSource
	Publisher ChangePublisher
	QR        *qrcode.QRGenerator
	Logger    *logger.Logger
	now       func() time.Time
}

func NewCustomerService(db DBLayer, events EventProvider, orders OrderLister, menu CatalogSource,
	publisher ChangePublisher, qr *qrcode.QRGenerator, log *logger.Logger) *CustomerService {
	return &CustomerService{
		DB:        db,
		Events:    events,
		Orders:    orders,
		Menu:      menu,
		Publisher: publisher,
		QR:        qr,
		Logger:    log,
		now:       time.Now,
	}
}

// Register opens a tab on the active event, starting a default event if
// none is running. A missing guest count means one guest.
func (s *CustomerService) Register(ctx context.Context, name string, guestCount *int64) (*models.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: customer name is required", models.ErrValidation)
	}
	guests := int64(1)
	if guestCount != nil {
		if *guestCount < 1 {
			return nil, fmt.Errorf("%w: guest count must be at least 1", models.ErrValidation)
		}
		guests = *guestCount
	}

	ev, err := s.Events.EnsureActive(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UnixMilli()
	c := &models.Customer{
		ID:         utils.GenerateID(),
		Name:       name,
		EventID:    ev.ID,
		GuestCount: guests,
		Notes:      []models.Note{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.DB.CreateCustomer(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.Logger.LogCustomer("REGISTER", c.ID, fmt.Sprintf("%s (%d guests) on event %s", name, guests, ev.ID))
	s.publish(ctx, models.ChangeCustomerCreated, c)
	return c, nil
}

func (s *CustomerService) Get(ctx context.Context, id string) (*models.Customer, error) {
	return s.DB.GetCustomer(ctx, id)
}

func (s *CustomerService) UpdateGuestCount(ctx context.Context, id string, n int64) (*models.Customer, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: guest count must be at least 1", models.ErrValidation)
	}
	return s.update(ctx, id, "GUESTS", func(c *models.Customer) error {
		if c.Paid {
			return fmt.Errorf("%w: %s", models.ErrAlreadyPaid, c.Name)
		}
		c.GuestCount = n
		return nil
	})
}

func (s *CustomerService) AddNote(ctx context.Context, id, content string) (*models.Customer, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: note content is required", models.ErrValidation)
	}
	return s.update(ctx, id, "NOTE_ADD", func(c *models.Customer) error {
		now := s.now().UnixMilli()
		c.Notes = append(c.Notes, models.Note{ID: utils.GenerateID(), Content: content, CreatedAt: now, UpdatedAt: now})
		return nil
	})
}

func (s *CustomerService) DeleteNote(ctx context.Context, id, noteID string) (*models.Customer, error) {
	return s.update(ctx, id, "NOTE_DELETE", func(c *models.Customer) error {
		kept := make([]models.Note, 0, len(c.Notes))
		for _, n := range c.Notes {
			if n.ID != noteID {
				kept = append(kept, n)
			}
		}
		if len(kept) == len(c.Notes) {
			return fmt.Errorf("note %s: %w", noteID, models.ErrNotFound)
		}
		c.Notes = kept
		return nil
	})
}

func (s *CustomerService) update(ctx context.Context, id, action string, apply func(c *models.Customer) error) (*models.Customer, error) {
	c, err := s.DB.UpdateCustomer(ctx, id, func(c *models.Customer) error {
		if err := apply(c); err != nil {
			return err
		}
		c.UpdatedAt = s.now().UnixMilli()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Logger.LogCustomer(action, id, c.Name)
	s.publish(ctx, models.ChangeCustomerUpdated, c)
	return c, nil
}

// MarkPaid settles the tab: the customer and all of their orders are flagged
// paid together.
func (s *CustomerService) MarkPaid(ctx context.Context, id string) (*models.Customer, error) {
	c, err := s.DB.MarkPaid(ctx, id, s.now().UnixMilli())
	if err != nil {
		return nil, err
	}
	s.Logger.LogCustomer("PAID", id, c.Name)
	s.publish(ctx, models.ChangeCustomerPaid, c)
	return c, nil
}

// ListActive returns the open tabs of the active event, newest first,
// filtered by a case-insensitive name search.
func (s *CustomerService) ListActive(ctx context.Context, search string) ([]models.Customer, error) {
	ev, err := s.Events.Active(ctx)
	if errors.Is(err, models.ErrNoActiveEvent) {
		return []models.Customer{}, nil
	}
	if err != nil {
		return nil, err
	}

	customers, err := s.DB.ListByEvent(ctx, ev.ID, true)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]models.Customer, 0, len(customers))
	for _, c := range customers {
		if needle == "" || strings.Contains(strings.ToLower(c.Name), needle) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Detail returns the tab with its orders and the amount due.
func (s *CustomerService) Detail(ctx context.Context, id string) (*models.CustomerDetail, error) {
	c, err := s.DB.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	orders, err := s.Orders.ListByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	catalog, err := s.Menu.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return &models.CustomerDetail{
		Customer:   *c,
		Orders:     orders,
		TotalPrice: aggregation.CustomerTotal(*c, orders, catalog),
	}, nil
}

// TabQR renders the QR code printed on the customer's tab card.
func (s *CustomerService) TabQR(ctx context.Context, id string) ([]byte, error) {
	if s.QR == nil {
		return nil, errors.New("tab QR codes are not configured")
	}
	c, err := s.DB.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.QR.GenerateTabQR(qrcode.TabRef{CustomerID: c.ID, EventID: c.EventID})
}

func (s *CustomerService) publish(ctx context.Context, kind models.ChangeKind, c *models.Customer) {
	if s.Publisher == nil {
		return
	}
	change := models.Change{Kind: kind, EventID: c.EventID, EntityID: c.ID, OccurredAt: s.now().UnixMilli()}
	if err := s.Publisher.PublishChange(ctx, change); err != nil {
		s.Logger.Error("CUSTOMER", fmt.Sprintf("Failed to publish %s for %s: %v", kind, c.ID, err))
	}
}
