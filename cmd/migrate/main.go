// Command migrate manages the bar POS schema.
//
//	migrate up     apply schema migrations (and seed data when DB_SEED_DATA=true)
//	migrate down   roll every migration back
//	migrate reset  drop and recreate the schema
//	migrate seed   load the default menu plus a demo event with two tabs
//	migrate topics create the Kafka change topics and list what the broker has
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"ms-barpos/internal/config"
	"ms-barpos/internal/database"
	"ms-barpos/internal/database/migrations"
	"ms-barpos/internal/event"
	eventdb "ms-barpos/internal/event/db"
	"ms-barpos/internal/kafka"
	"ms-barpos/internal/logger"
	"ms-barpos/internal/menu"
	menudb "ms-barpos/internal/menu/db"
	"ms-barpos/internal/models"
	orderdb "ms-barpos/internal/order/db"
	"ms-barpos/internal/utils"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.NewWithWriter(os.Stdout)

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	ctx := context.Background()
	if command == "topics" {
		if err := topics(ctx, cfg.Kafka, log); err != nil {
			log.Fatal("KAFKA", err.Error())
		}
		return
	}

	bunDB, err := database.Open(cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	switch command {
	case "up":
		err = up(ctx, cfg.Database, bunDB, log)
	case "down":
		err = down(ctx, cfg.Database, bunDB, log)
	case "reset":
		if err = down(ctx, cfg.Database, bunDB, log); err == nil {
			err = up(ctx, cfg.Database, bunDB, log)
		}
	case "seed":
		err = seed(ctx, bunDB, log)
	default:
		err = fmt.Errorf("unknown command %q (want up, down, reset, seed or topics)", command)
	}
	if err != nil {
		log.Fatal("MIGRATION", err.Error())
	}
	log.Info("MIGRATION", fmt.Sprintf("✅ %s done", command))
}

func up(ctx context.Context, cfg config.DatabaseConfig, bunDB *bun.DB, log *logger.Logger) error {
	if cfg.Driver == "sqlite" {
		return database.CreateSchema(ctx, bunDB)
	}
	runner := migrations.NewRunner(bunDB, migrations.MigrateOptions{
		MigrationsDir: cfg.MigrationsDir,
		SeedData:      cfg.SeedData,
	}, log)
	defer runner.Close()
	return runner.RunMigrations()
}

func down(ctx context.Context, cfg config.DatabaseConfig, bunDB *bun.DB, log *logger.Logger) error {
	if cfg.Driver == "sqlite" {
		return database.DropSchema(ctx, bunDB)
	}
	runner := migrations.NewRunner(bunDB, migrations.MigrateOptions{MigrationsDir: cfg.MigrationsDir}, log)
	defer runner.Close()
	return runner.MigrateDown()
}

func topics(ctx context.Context, cfg config.KafkaConfig, log *logger.Logger) error {
	if err := kafka.EnsureTopicsExist(ctx, cfg.Brokers, cfg.Topics.All(), log); err != nil {
		return err
	}
	existing, err := kafka.ListTopics(ctx, cfg.Brokers)
	if err != nil {
		return err
	}
	for _, t := range existing {
		log.LogKafka("TOPIC", t, "present")
	}
	return nil
}

// seed loads the default menu and a demo event, then writes two tabs with
// one order each straight through the stores.
func seed(ctx context.Context, bunDB *bun.DB, log *logger.Logger) error {
	menuService := menu.NewMenuService(&menudb.DB{Bun: bunDB}, nil, nil, log)
	if _, err := menuService.SeedDefaults(ctx); err != nil {
		return err
	}

	events := event.NewEventService(&eventdb.DB{Bun: bunDB}, nil, nil, log, "Demo Night")
	ev, err := events.EnsureActive(ctx)
	if err != nil {
		return err
	}

	tabs := []struct {
		name   string
		guests int64
		items  []models.OrderItem
	}{
		{"Aki", 3, []models.OrderItem{{ItemID: "beer-lager", Name: "Lager Beer", Quantity: 2}, {ItemID: "soft-coke", Name: "Coca-Cola", Quantity: 1}}},
		{"Ben", 1, []models.OrderItem{{ItemID: "wine-red-merlot", Name: "Merlot (Red)", Quantity: 1}}},
	}

	orders := &orderdb.DB{Bun: bunDB}
	now := utils.Millis(time.Now())
	for _, tab := range tabs {
		c := &models.Customer{
			ID:         utils.GenerateID(),
			Name:       tab.name,
			EventID:    ev.ID,
			GuestCount: tab.guests,
			Notes:      []models.Note{},
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if _, err := bunDB.NewInsert().Model(c).Exec(ctx); err != nil {
			return fmt.Errorf("seed customer %s: %w", tab.name, err)
		}
		for i := range tab.items {
			tab.items[i].ID = utils.GenerateID()
		}
		if err := orders.CreateOrder(ctx, &models.Order{
			ID:           utils.GenerateID(),
			CustomerID:   c.ID,
			CustomerName: c.Name,
			EventID:      ev.ID,
			Items:        tab.items,
			Status:       models.StatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}); err != nil {
			return fmt.Errorf("seed order for %s: %w", tab.name, err)
		}
		log.LogCustomer("SEED", c.ID, tab.name)
	}
	return nil
}
