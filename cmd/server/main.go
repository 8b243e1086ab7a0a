package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	stdlog "log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/hospitality-reservation/internal/config"
	"github.com/iliyamo/hospitality-reservation/internal/database"
	"github.com/iliyamo/hospitality-reservation/internal/handler"
	"github.com/iliyamo/hospitality-reservation/internal/logger"
	"github.com/iliyamo/hospitality-reservation/internal/queue"
	"github.com/iliyamo/hospitality-reservation/internal/repository/memory"
	"github.com/iliyamo/hospitality-reservation/internal/router"
	"github.com/iliyamo/hospitality-reservation/internal/service"
)

func main() {
	_ = godotenv.Load() // a missing .env is fine, the environment may already be set
	cfg := config.Load()

	log, err := logger.New(cfg.Env, cfg.LogFile)
	if err != nil {
		stdlog.Fatalf("logger: %v", err)
	}
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, ping, closeStorage := openStorage(cfg, log)
	defer closeStorage()

	if err := service.BootstrapAdmin(ctx, stores.Users, cfg.AdminEmail, cfg.AdminPassword, cfg.BcryptCost, log); err != nil {
		log.Error("bootstrap admin failed", "err", err)
		os.Exit(1)
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig(), log)
	if rdb != nil {
		defer rdb.Close()
	}

	var pub service.EventPublisher = service.NopPublisher{}
	if cfg.EventsEnabled {
		pub = queue.NewPublisher(cfg.RabbitURL, log)
		consumer := queue.NewConsumer(cfg.RabbitURL, cfg.EventLogPath, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("event consumer stopped", "err", err)
			}
		}()
	}

	auth := service.NewAuthService(stores.Users, stores.Tokens, service.AuthConfig{
		Secret:     cfg.JWTSecret,
		TokenTTL:   cfg.TokenTTL,
		BcryptCost: cfg.BcryptCost,
	}, log)
	checker := service.NewChecker(stores)

	e := router.New(router.Handlers{
		Health:     handler.NewHealthHandler(ping),
		Auth:       handler.NewAuthHandler(auth),
		Restaurant: handler.NewRestaurantHandler(service.NewRestaurantService(stores, checker, pub, log)),
		Hotel:      handler.NewHotelHandler(service.NewHotelService(stores, checker, pub, log)),
		Inventory:  handler.NewInventoryHandler(service.NewInventoryService(stores)),
		Billing:    handler.NewBillingHandler(service.NewBillingService(stores, cfg.BillLocation, pub, log)),
		Dashboard:  handler.NewDashboardHandler(service.NewDashboardService(stores)),
		Users:      handler.NewUserHandler(service.NewUserService(stores.Users, log)),
	}, router.Options{
		Log:            log,
		Authenticator:  auth,
		Redis:          rdb,
		RateLimit:      config.LoadRateLimitConfig(),
		Cache:          config.LoadCacheConfig(),
		RequestTimeout: cfg.RequestTimeout,
	})

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env, "storage", cfg.StorageDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "err", err)
	}
	log.Info("server stopped")
}

// openStorage selects the store behind STORAGE_DRIVER. The MySQL pool is
// opened lazily on first use and migrated right after it opens.
func openStorage(cfg config.Config, log *slog.Logger) (service.Stores, handler.Pinger, func()) {
	if cfg.StorageDriver == config.StorageMemory {
		log.Warn("using in-memory storage, data is lost on restart")
		return service.MemoryStores(memory.New()), nil, func() {}
	}
	h := database.NewHandle(func(ctx context.Context) (*sql.DB, error) {
		db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := database.Migrate(ctx, db); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		log.Info("database ready", "host", cfg.DBHost, "name", cfg.DBName)
		return db, nil
	})
	ping := func(ctx context.Context) error {
		db, err := h.Get(ctx)
		if err != nil {
			return err
		}
		return db.PingContext(ctx)
	}
	return service.MySQLStores(h), ping, func() {
		if err := h.Close(); err != nil {
			log.Warn("close database", "err", err)
		}
	}
}
