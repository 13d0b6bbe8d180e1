package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ms-barpos/internal/models"

	"github.com/uptrace/bun"
)

// DB handles analytics database operations
type DB struct {
	bun *bun.DB
}

// NewDB creates a new analytics DB handler
func NewDB(db *bun.DB) *DB {
	return &DB{bun: db}
}

// GetCustomersByEventID retrieves every customer of an event, paid or not
func (db *DB) GetCustomersByEventID(ctx context.Context, eventID string) ([]models.Customer, error) {
	var customers []models.Customer
	err := db.bun.NewSelect().
		Model(&customers).
		Where("event_id = ?", eventID).
		Order("created_at ASC", "id ASC").
		Scan(ctx)

	return customers, err
}

// GetOrdersByEventID retrieves all orders of an event in one query
func (db *DB) GetOrdersByEventID(ctx context.Context, eventID string) ([]models.Order, error) {
	var orders []models.Order
	err := db.bun.NewSelect().
		Model(&orders).
		Where("event_id = ?", eventID).
		Order("created_at ASC", "id ASC").
		Scan(ctx)

	return orders, err
}

func (db *DB) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	var c models.Customer
	err := db.bun.NewSelect().Model(&c).Where("id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("customer %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetOrdersByCustomerID retrieves all orders of one tab
func (db *DB) GetOrdersByCustomerID(ctx context.Context, customerID string) ([]models.Order, error) {
	var orders []models.Order
	err := db.bun.NewSelect().
		Model(&orders).
		Where("customer_id = ?", customerID).
		Order("created_at ASC", "id ASC").
		Scan(ctx)

	return orders, err
}
