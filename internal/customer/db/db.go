package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ms-barpos/internal/models"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- CUSTOMERS ----------------

func (d *DB) CreateCustomer(ctx context.Context, c *models.Customer) error {
	_, err := d.Bun.NewInsert().Model(c).Exec(ctx)
	return err
}

func (d *DB) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	return getCustomer(ctx, d.Bun, id)
}

func getCustomer(ctx context.Context, db bun.IDB, id string) (*models.Customer, error) {
	var c models.Customer
	err := db.NewSelect().Model(&c).Where("id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("customer %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateCustomer reads the customer, applies edit and writes name, guest
// count and notes back in one transaction. The row is locked on PostgreSQL.
func (d *DB) UpdateCustomer(ctx context.Context, id string, edit func(c *models.Customer) error) (*models.Customer, error) {
	var updated *models.Customer
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var c models.Customer
		q := tx.NewSelect().Model(&c).Where("id = ?", id).Limit(1)
		if d.Bun.Dialect().Name() == dialect.PG {
			q = q.For("UPDATE")
		}
		if err := q.Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("customer %s: %w", id, models.ErrNotFound)
			}
			return err
		}

		if err := edit(&c); err != nil {
			return err
		}

		if _, err := tx.NewUpdate().
			Model(&c).
			Column("name", "guest_count", "notes", "updated_at").
			WherePK().
			Exec(ctx); err != nil {
			return err
		}
		updated = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListByEvent → customers of an event, newest first
func (d *DB) ListByEvent(ctx context.Context, eventID string, unpaidOnly bool) ([]models.Customer, error) {
	var customers []models.Customer
	q := d.Bun.NewSelect().
		Model(&customers).
		Where("event_id = ?", eventID)
	if unpaidOnly {
		q = q.Where("paid = ?", false)
	}
	err := q.Order("created_at DESC", "id DESC").Scan(ctx)
	return customers, err
}

// MarkPaid flags the customer and every one of their orders as paid in a
// single transaction.
func (d *DB) MarkPaid(ctx context.Context, id string, at int64) (*models.Customer, error) {
	var paid *models.Customer
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Customer)(nil)).
			Set("paid = ?", true).
			Set("paid_at = ?", at).
			Set("updated_at = ?", at).
			Where("id = ?", id).
			Where("paid = ?", false).
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			c, err := getCustomer(ctx, tx, id)
			if err != nil {
				return err
			}
			return fmt.Errorf("%w: %s", models.ErrAlreadyPaid, c.Name)
		}

		if _, err := tx.NewUpdate().
			Model((*models.Order)(nil)).
			Set("customer_paid = ?", true).
			Where("customer_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}

		paid, err = getCustomer(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return paid, nil
}
