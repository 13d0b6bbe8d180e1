package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ms-barpos/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// CreateItem → insert a new menu item
func (d *DB) CreateItem(ctx context.Context, item *models.MenuItem) error {
	_, err := d.Bun.NewInsert().Model(item).Exec(ctx)
	return err
}

// GetItem → fetch one item by id
func (d *DB) GetItem(ctx context.Context, id string) (*models.MenuItem, error) {
	var item models.MenuItem
	err := d.Bun.NewSelect().
		Model(&item).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("menu item %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ItemExists reports whether an id is already taken
func (d *DB) ItemExists(ctx context.Context, id string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.MenuItem)(nil)).
		Where("id = ?", id).
		Exists(ctx)
}

// ListItems → all items sorted by name, archived ones only when asked
func (d *DB) ListItems(ctx context.Context, includeArchived bool) ([]models.MenuItem, error) {
	var items []models.MenuItem
	q := d.Bun.NewSelect().Model(&items).Order("name ASC", "id ASC")
	if !includeArchived {
		q = q.Where("archived = ?", false)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateItem → overwrite the editable columns
func (d *DB) UpdateItem(ctx context.Context, item *models.MenuItem) error {
	res, err := d.Bun.NewUpdate().
		Model(item).
		Column("name", "price", "type", "archived", "updated_at").
		Where("id = ?", item.ID).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireRow(res, item.ID)
}

// DeleteItem → hard delete; existing orders keep their denormalized copy
func (d *DB) DeleteItem(ctx context.Context, id string) error {
	res, err := d.Bun.NewDelete().
		Model((*models.MenuItem)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

// CountItems → number of items including archived ones
func (d *DB) CountItems(ctx context.Context) (int, error) {
	return d.Bun.NewSelect().Model((*models.MenuItem)(nil)).Count(ctx)
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("menu item %s: %w", id, models.ErrNotFound)
	}
	return nil
}
