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

// GetActive → the single active event, ErrNoActiveEvent when there is none
func (d *DB) GetActive(ctx context.Context) (*models.Event, error) {
	return getActive(ctx, d.Bun)
}

func getActive(ctx context.Context, db bun.IDB) (*models.Event, error) {
	var ev models.Event
	err := db.NewSelect().
		Model(&ev).
		Where("status = ?", models.EventActive).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNoActiveEvent
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// GetEvent → one event by id
func (d *DB) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var ev models.Event
	err := d.Bun.NewSelect().
		Model(&ev).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// ListEvents → newest first, optionally only one status
func (d *DB) ListEvents(ctx context.Context, status models.EventStatus) ([]models.Event, error) {
	var events []models.Event
	q := d.Bun.NewSelect().Model(&events).Order("created_at DESC", "id DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return events, nil
}

// CreateIfNoneActive inserts ev unless an active event already exists, in
// which case that event is returned with created=false. The partial unique
// index on status catches writers that race past the check.
func (d *DB) CreateIfNoneActive(ctx context.Context, ev *models.Event) (*models.Event, bool, error) {
	var existing *models.Event
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		active, err := getActive(ctx, tx)
		if err == nil {
			existing = active
			return nil
		}
		if !errors.Is(err, models.ErrNoActiveEvent) {
			return err
		}
		_, err = tx.NewInsert().Model(ev).Exec(ctx)
		return err
	})
	if err != nil {
		// lost the race against another writer
		if active, getErr := d.GetActive(ctx); getErr == nil {
			return active, false, nil
		}
		return nil, false, fmt.Errorf("failed to create event: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}
	return ev, true, nil
}

// CompleteActive flips the active event to completed and stores the frozen
// stats in the same conditional update.
func (d *DB) CompleteActive(ctx context.Context, stats models.EventStats, at int64) (*models.Event, error) {
	active, err := d.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	active.Status = models.EventCompleted
	active.EndDate = &at
	active.CompletedAt = &at
	active.Freeze(stats)

	res, err := d.Bun.NewUpdate().
		Model(active).
		Column("status", "end_date", "completed_at",
			"total_customers", "total_orders", "total_drinks",
			"alcoholic_drinks", "non_alcoholic_drinks",
			"participant_revenue", "drink_revenue", "total_revenue", "drink_breakdown").
		Where("id = ?", active.ID).
		Where("status = ?", models.EventActive).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to complete event %s: %w", active.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, models.ErrNoActiveEvent
	}
	return active, nil
}
