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

// ---------------- ORDERS ----------------

// CreateOrder bumps the customer's order counter and inserts the order in one
// transaction. Settled tabs are rejected with ErrAlreadyPaid.
func (d *DB) CreateOrder(ctx context.Context, order *models.Order) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Customer)(nil)).
			Set("order_count = order_count + 1").
			Set("updated_at = ?", order.CreatedAt).
			Where("id = ?", order.CustomerID).
			Where("paid = ?", false).
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			exists, err := tx.NewSelect().
				Model((*models.Customer)(nil)).
				Where("id = ?", order.CustomerID).
				Exists(ctx)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("customer %s: %w", order.CustomerID, models.ErrNotFound)
			}
			return fmt.Errorf("%w: customer %s", models.ErrAlreadyPaid, order.CustomerID)
		}

		_, err = tx.NewInsert().Model(order).Exec(ctx)
		return err
	})
}

// GetOrderByID → fetch one order by its ID
func (d *DB) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus moves an order from one status to another; it fails with
// ErrConflict when the order is no longer in the expected status.
func (d *DB) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus, at int64) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Order)(nil)).
		Set("status = ?", to).
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Where("status = ?", from).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: order %s changed concurrently", models.ErrConflict, id)
	}
	return nil
}

// ListByCustomer → a customer's orders, newest first
func (d *DB) ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Where("customer_id = ?", customerID).
		Order("created_at DESC", "id DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ListByEvent → every order of an event in one query
func (d *DB) ListByEvent(ctx context.Context, eventID string) ([]models.Order, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Where("event_id = ?", eventID).
		Order("created_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ListByStatus → an event's orders in the given statuses, oldest first
func (d *DB) ListByStatus(ctx context.Context, eventID string, statuses []models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Where("event_id = ?", eventID).
		Where("status IN (?)", bun.In(statuses)).
		Order("created_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return orders, nil
}
