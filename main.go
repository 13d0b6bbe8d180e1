package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ms-barpos/internal/analytics"
	analytics_api "ms-barpos/internal/analytics/api"
	"ms-barpos/internal/config"
	"ms-barpos/internal/customer"
	"ms-barpos/internal/customer/customer_api"
	customerdb "ms-barpos/internal/customer/db"
	"ms-barpos/internal/customer/qrcode"
	"ms-barpos/internal/database"
	"ms-barpos/internal/database/migrations"
	"ms-barpos/internal/event"
	eventdb "ms-barpos/internal/event/db"
	"ms-barpos/internal/event/event_api"
	eventredis "ms-barpos/internal/event/redis"
	"ms-barpos/internal/kafka"
	"ms-barpos/internal/logger"
	"ms-barpos/internal/menu"
	"ms-barpos/internal/menu/cache"
	menudb "ms-barpos/internal/menu/db"
	"ms-barpos/internal/menu/menu_api"
	"ms-barpos/internal/models"
	"ms-barpos/internal/order"
	orderdb "ms-barpos/internal/order/db"
	"ms-barpos/internal/order/order_api"
	orderredis "ms-barpos/internal/order/redis"
	"ms-barpos/internal/sse"
	"ms-barpos/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
)

type changePublisher interface {
	PublishChange(ctx context.Context, change models.Change) error
}

func connectRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	if !cfg.Enabled {
		log.Warn("REDIS", "Redis disabled, using in-process locks and no catalog cache")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("REDIS", fmt.Sprintf("Redis unreachable at %s, continuing without it: %v", cfg.Addr, err))
		client.Close()
		return nil
	}
	log.Info("REDIS", fmt.Sprintf("✅ Redis connection successful to %s (DB: %d)", cfg.Addr, cfg.DB))
	return client
}

func prepareSchema(ctx context.Context, cfg config.DatabaseConfig, bunDB *bun.DB, menuService *menu.MenuService, log *logger.Logger) error {
	if !cfg.AutoMigrate {
		log.Info("MIGRATION", "Auto-migrate disabled")
		return nil
	}
	if cfg.Driver == "sqlite" {
		if err := database.CreateSchema(ctx, bunDB); err != nil {
			return err
		}
		log.LogDatabase("CREATE_SCHEMA", "all", "SQLite schema ready")
		if cfg.SeedData {
			if _, err := menuService.SeedDefaults(ctx); err != nil {
				return err
			}
		}
		return nil
	}

	runner := migrations.NewRunner(bunDB, migrations.MigrateOptions{
		MigrationsDir: cfg.MigrationsDir,
		SeedData:      cfg.SeedData,
	}, log)
	defer runner.Close()
	return runner.RunMigrations()
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println(".env file not found, using environment variables")
	}
	cfg := config.Load()

	log := logger.NewLogger(cfg.App.LogDir)
	defer log.Close()
	log.Info("APP", "Starting bar POS service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bunDB, err := database.Open(cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	redisClient := connectRedis(ctx, cfg.Redis, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	var (
		catalogCache menu.CatalogCache
		createLock   event.Locker
		dismissed    order.DismissedStore
	)
	if redisClient != nil {
		catalogCache = cache.NewCatalogCache(redisClient, cfg.Redis.CatalogTTL)
		createLock = eventredis.NewCreateLock(redisClient, cfg.Redis.LockTTL)
		dismissed = orderredis.NewDismissedStore(redisClient, cfg.Redis.DismissedTTL)
	}

	// Stores and services; publishers are attached once the change feed exists
	customerStore := &customerdb.DB{Bun: bunDB}
	orderStore := &orderdb.DB{Bun: bunDB}

	menuService := menu.NewMenuService(&menudb.DB{Bun: bunDB}, catalogCache, nil, log)
	eventService := event.NewEventService(&eventdb.DB{Bun: bunDB}, createLock, nil, log, cfg.App.DefaultEventName)
	orderService := order.NewOrderService(orderStore, customerStore, menuService, eventService, dismissed, nil, log)
	customerService := customer.NewCustomerService(customerStore, eventService, orderStore, menuService, nil,
		qrcode.NewQRGenerator(cfg.App.TabQRSecret, cfg.App.PublicBaseURL), log)

	analyticsService := analytics.NewService(analytics.NewDB(bunDB), eventService, menuService, log)
	eventService.Stats = analyticsService

	if err := prepareSchema(ctx, cfg.Database, bunDB, menuService, log); err != nil {
		log.Fatal("MIGRATION", fmt.Sprintf("Schema preparation failed: %v", err))
	}

	emitter := sse.NewStatsEmitter()
	live := analytics.NewLive(analyticsService, emitter, log)

	var publisher changePublisher = live
	if cfg.Kafka.Enabled {
		if err := kafka.EnsureTopicsExist(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topics.All(), log); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics, log)
		defer producer.Close()
		publisher = producer

		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.All(), cfg.Kafka.GroupID, log)
		defer consumer.Close()
		go func() {
			if err := consumer.Start(ctx, live.HandleChange); err != nil {
				log.Error("KAFKA", fmt.Sprintf("Change consumer exited: %v", err))
			}
		}()
		log.Info("KAFKA", fmt.Sprintf("Change feed on %v", cfg.Kafka.Brokers))
	} else {
		log.Info("KAFKA", "Kafka disabled, stats refresh in-process")
	}

	menuService.Publisher = publisher
	eventService.Publisher = publisher
	orderService.Publisher = publisher
	customerService.Publisher = publisher

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(log.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"database": "ok", "redis": "disabled"}
		if err := bunDB.PingContext(r.Context()); err != nil {
			status["database"] = err.Error()
		}
		if redisClient != nil {
			status["redis"] = "ok"
			if err := redisClient.Ping(r.Context()).Err(); err != nil {
				status["redis"] = err.Error()
			}
		}
		utils.SendJSON(w, http.StatusOK, utils.SuccessResponse("healthy", status))
	})

	r.Route("/api", func(r chi.Router) {
		(&event_api.Handler{EventService: eventService, Logger: log}).RegisterRoutes(r)
		customer_api.NewHandler(customerService, orderService, log).RegisterRoutes(r)
		order_api.NewHandler(orderService, log).RegisterRoutes(r)
		(&menu_api.Handler{MenuService: menuService, Logger: log}).RegisterRoutes(r)
		analytics_api.NewHandler(analyticsService, live, emitter, log).RegisterRoutes(r)
	})
	log.Info("ROUTER", "Routes registered under /api")

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		BaseContext:  func(_ net.Listener) context.Context { return ctx },
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("🚀 Bar POS running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	// ends SSE streams and the Kafka consumer
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "✅ Bar POS shutdown complete")
	}
}
