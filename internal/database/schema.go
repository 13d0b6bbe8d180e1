package database

import (
	"context"
	"fmt"

	"ms-barpos/internal/models"

	"github.com/uptrace/bun"
)

var tables = []interface{}{
	(*models.MenuItem)(nil),
	(*models.Event)(nil),
	(*models.Customer)(nil),
	(*models.Order)(nil),
}

var indexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS events_single_active ON events (status) WHERE status = 'active'`,
	`CREATE INDEX IF NOT EXISTS customers_event_id ON customers (event_id)`,
	`CREATE INDEX IF NOT EXISTS orders_event_id ON orders (event_id)`,
	`CREATE INDEX IF NOT EXISTS orders_customer_id ON orders (customer_id)`,
}

// CreateSchema builds every table straight from the bun models. SQLite
// deployments and tests use it; PostgreSQL goes through the SQL migrations.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	for _, model := range tables {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// DropSchema removes every table, used by cmd/migrate reset.
func DropSchema(ctx context.Context, db bun.IDB) error {
	for i := len(tables) - 1; i >= 0; i-- {
		if _, err := db.NewDropTable().Model(tables[i]).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("drop table for %T: %w", tables[i], err)
		}
	}
	return nil
}
