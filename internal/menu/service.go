package menu

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ms-barpos/internal/logger"
	"ms-barpos/internal/models"
	"ms-barpos/internal/utils"
)

type DBLayer interface {
	CreateItem(ctx context.Context, item *models.MenuItem) error
	GetItem(ctx context.Context, id string) (*models.MenuItem, error)
	ItemExists(ctx context.Context, id string) (bool, error)
	ListItems(ctx context.Context, includeArchived bool) ([]models.MenuItem, error)
	UpdateItem(ctx context.Context, item *models.MenuItem) error
	DeleteItem(ctx context.Context, id string) error
	CountItems(ctx context.Context) (int, error)
}

type CatalogCache interface {
	Get(ctx context.Context) ([]models.MenuItem, bool, error)
	Set(ctx context.Context, items []models.MenuItem) error
	Invalidate(ctx context.Context) error
}

type ChangePublisher interface {
	PublishChange(ctx context.Context, change models.Change) error
}

// DefaultItems is the starter menu loaded by SeedDefaults.
var DefaultItems = []models.MenuItem{
	{ID: "beer-lager", Name: "Lager Beer", Price: 500, Type: models.DrinkAlcoholic},
	{ID: "beer-ipa", Name: "IPA", Price: 500, Type: models.DrinkAlcoholic},
	{ID: "wine-red-merlot", Name: "Merlot (Red)", Price: 500, Type: models.DrinkAlcoholic},
	{ID: "wine-white-chardonnay", Name: "Chardonnay (White)", Price: 500, Type: models.DrinkAlcoholic},
	{ID: "spirit-vodka", Name: "Vodka", Price: 500, Type: models.DrinkAlcoholic},
	{ID: "spirit-gin", Name: "Gin", Price: 500, Type: models.DrinkAlcoholic},
	{ID: "soft-coke", Name: "Coca-Cola", Price: 200, Type: models.DrinkNonAlcoholic},
	{ID: "soft-juice-apple", Name: "Apple Juice", Price: 200, Type: models.DrinkNonAlcoholic},
}

type MenuService struct {
	DB        DBLayer
	Cache     CatalogCache
	Publisher ChangePublisher
	Logger    *logger.Logger
	now       func() time.Time
}

// NewMenuService wires the catalog; cache and publisher may be nil.
func NewMenuService(db DBLayer, cache CatalogCache, publisher ChangePublisher, log *logger.Logger) *MenuService {
	return &MenuService{DB: db, Cache: cache, Publisher: publisher, Logger: log, now: time.Now}
}

func (s *MenuService) Create(ctx context.Context, req models.MenuItemRequest) (*models.MenuItem, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: item name is required", models.ErrValidation)
	}
	if req.Price == nil {
		return nil, fmt.Errorf("%w: price is required", models.ErrValidation)
	}
	if *req.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", models.ErrValidation)
	}
	itemType := req.Type
	if itemType == "" {
		itemType = models.DrinkAlcoholic
	}
	if !itemType.Valid() {
		return nil, fmt.Errorf("%w: unknown drink type %q", models.ErrValidation, req.Type)
	}

	id, err := s.uniqueID(ctx, name)
	if err != nil {
		return nil, err
	}

	now := s.now().UnixMilli()
	item := &models.MenuItem{
		ID:        id,
		Name:      name,
		Price:     *req.Price,
		Type:      itemType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.DB.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create menu item: %w", err)
	}

	s.Logger.Info("MENU", fmt.Sprintf("Created menu item %s (%s, ¥%d)", item.ID, item.Name, item.Price))
	s.changed(ctx, item.ID)
	return item, nil
}

func (s *MenuService) Get(ctx context.Context, id string) (*models.MenuItem, error) {
	return s.DB.GetItem(ctx, id)
}

func (s *MenuService) Update(ctx context.Context, id string, patch models.MenuItemPatch) (*models.MenuItem, error) {
	item, err := s.DB.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: item name is required", models.ErrValidation)
		}
		item.Name = name
	}
	if patch.Price != nil {
		if *patch.Price < 0 {
			return nil, fmt.Errorf("%w: price must not be negative", models.ErrValidation)
		}
		item.Price = *patch.Price
	}
	if patch.Type != nil {
		if !patch.Type.Valid() {
			return nil, fmt.Errorf("%w: unknown drink type %q", models.ErrValidation, *patch.Type)
		}
		item.Type = *patch.Type
	}
	if patch.Archived != nil {
		item.Archived = *patch.Archived
	}
	item.UpdatedAt = s.now().UnixMilli()

	if err := s.DB.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update menu item %s: %w", id, err)
	}
	s.changed(ctx, id)
	return item, nil
}

func (s *MenuService) SetArchived(ctx context.Context, id string, archived bool) (*models.MenuItem, error) {
	return s.Update(ctx, id, models.MenuItemPatch{Archived: &archived})
}

func (s *MenuService) ToggleArchive(ctx context.Context, id string) (*models.MenuItem, error) {
	item, err := s.DB.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.SetArchived(ctx, id, !item.Archived)
}

func (s *MenuService) Delete(ctx context.Context, id string) error {
	if err := s.DB.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.Logger.Info("MENU", fmt.Sprintf("Deleted menu item %s", id))
	s.changed(ctx, id)
	return nil
}

func (s *MenuService) List(ctx context.Context, includeArchived bool) ([]models.MenuItem, error) {
	return s.DB.ListItems(ctx, includeArchived)
}

// Available lists the items that can be ordered.
func (s *MenuService) Available(ctx context.Context) ([]models.MenuItem, error) {
	return s.DB.ListItems(ctx, false)
}

// SeedDefaults loads DefaultItems into an empty catalog and reports how many were added.
func (s *MenuService) SeedDefaults(ctx context.Context) (int, error) {
	n, err := s.DB.CountItems(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.Logger.Info("MENU", fmt.Sprintf("Catalog already holds %d items, skipping defaults", n))
		return 0, nil
	}

	now := s.now().UnixMilli()
	for _, def := range DefaultItems {
		item := def
		item.CreatedAt = now
		item.UpdatedAt = now
		if err := s.DB.CreateItem(ctx, &item); err != nil {
			return 0, fmt.Errorf("failed to seed %s: %w", item.ID, err)
		}
	}
	s.Logger.Info("MENU", fmt.Sprintf("Seeded %d default menu items", len(DefaultItems)))
	s.changed(ctx, "")
	return len(DefaultItems), nil
}

// Catalog returns a private snapshot of every item, archived ones included,
// so historical orders keep their price.
func (s *MenuService) Catalog(ctx context.Context) (models.Catalog, error) {
	if s.Cache != nil {
		items, ok, err := s.Cache.Get(ctx)
		if err != nil {
			s.Logger.Warn("MENU", fmt.Sprintf("Catalog cache read failed, using database: %v", err))
		} else if ok {
			return toCatalog(items), nil
		}
	}

	items, err := s.DB.ListItems(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu catalog: %w", err)
	}
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, items); err != nil {
			s.Logger.Warn("MENU", fmt.Sprintf("Catalog cache write failed: %v", err))
		}
	}
	return toCatalog(items), nil
}

func (s *MenuService) uniqueID(ctx context.Context, name string) (string, error) {
	base := utils.Slugify(name)
	if base == "" {
		base = "item-" + utils.GenerateShortID()
	}
	id := base
	for i := 2; ; i++ {
		taken, err := s.DB.ItemExists(ctx, id)
		if err != nil {
			return "", err
		}
		if !taken {
			return id, nil
		}
		id = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *MenuService) changed(ctx context.Context, itemID string) {
	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx); err != nil {
			s.Logger.Warn("MENU", fmt.Sprintf("Catalog cache invalidation failed: %v", err))
		}
	}
	if s.Publisher == nil {
		return
	}
	change := models.Change{Kind: models.ChangeMenuChanged, EntityID: itemID, OccurredAt: s.now().UnixMilli()}
	if err := s.Publisher.PublishChange(ctx, change); err != nil {
		s.Logger.Error("MENU", fmt.Sprintf("Failed to publish menu change: %v", err))
	}
}

func toCatalog(items []models.MenuItem) models.Catalog {
	catalog := make(models.Catalog, len(items))
	for _, it := range items {
		catalog[it.ID] = it
	}
	return catalog
}

// Import adds one item per non-blank line, ids slugged from the names.
// Lines whose slug already exists are skipped. Price defaults to 500.
func (s *MenuService) Import(ctx context.Context, req models.MenuImportRequest) ([]models.MenuItem, error) {
	var names []string
	for _, line := range strings.Split(req.Names, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: at least one item name is required", models.ErrValidation)
	}

	price := int64(500)
	if req.Price != nil {
		price = *req.Price
	}

	added := []models.MenuItem{}
	for _, name := range names {
		if id := utils.Slugify(name); id != "" {
			exists, err := s.DB.ItemExists(ctx, id)
			if err != nil {
				return nil, err
			}
			if exists {
				continue
			}
		}
		item, err := s.Create(ctx, models.MenuItemRequest{Name: name, Price: &price, Type: req.Type})
		if err != nil {
			return nil, err
		}
		added = append(added, *item)
	}
	s.Logger.Info("MENU", fmt.Sprintf("Imported %d of %d menu lines", len(added), len(names)))
	return added, nil
}
