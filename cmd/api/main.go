package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"smartinventory/docs"
	"smartinventory/internal/config"
	"smartinventory/internal/database"
	"smartinventory/internal/database/migration"
	handlers "smartinventory/internal/http/handler"
	"smartinventory/internal/http/middleware"
	"smartinventory/internal/logger"
	"smartinventory/internal/otel"
	"smartinventory/internal/repository"
	"smartinventory/internal/repository/mongodb"
	"smartinventory/internal/repository/postgres"
	"smartinventory/internal/scheduler"
	"smartinventory/internal/service"
	"smartinventory/internal/session"
	"smartinventory/internal/sms"
	"smartinventory/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// repositories groups the backend-specific implementations chosen at startup.
type repositories struct {
	items    repository.ItemRepository
	users    repository.UserRepository
	settings repository.AlertSettingsRepository
	sessions session.Store
	checks   map[string]handlers.Check
	closers  []func(context.Context) error
}

// @title Smart Inventory API
// @version 1.0
// @description Per-user inventory with low-stock SMS alerts.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	loc, err := time.LoadLocation(cfg.Alerts.Timezone)
	if err != nil {
		loc = time.UTC
	}
	log := logger.Must(logger.New(cfg.LogLevel, loc))
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server_exit", zap.Error(err))
	}
}

func run(cfg *config.AppConfig, log *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logger.Named(log, "otel"))
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	repos, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		for _, closeFn := range repos.closers {
			_ = closeFn(context.Background())
		}
	}()

	// Object storage is optional; without it exports answer 503.
	var objStore storage.Storage
	if storage.Enabled(cfg.MinIO) {
		objStore, err = storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			return fmt.Errorf("failed to initialize object storage: %w", err)
		}
		repos.checks["storage"] = objStore.Ping
	} else {
		log.Info("object storage not configured; exports disabled")
	}

	smsClient := sms.NewClient(cfg.SMS)
	if !smsClient.Configured() {
		log.Warn("sms gateway not configured; alerts fall back to composer links")
	}

	alertSvc := service.NewAlertService(repos.settings, repos.items, smsClient, logger.Named(log, "alerts"))
	inventorySvc := service.NewInventoryService(repos.items, objStore, alertSvc, logger.Named(log, "inventory"))
	authSvc := service.NewAuthService(repos.users, repos.sessions, cfg.Auth.SessionTTL, cfg.Auth.BcryptCost, logger.Named(log, "auth"))

	sched, err := scheduler.New(cfg.Alerts.DigestCron, cfg.Alerts.Timezone, alertSvc, logger.Named(log, "scheduler"))
	if err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	app, err := newApp(log, handlers.Services{Auth: authSvc, Inventory: inventorySvc, Alerts: alertSvc}, repos.checks)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server_start", zap.String("addr", ":"+cfg.Port), zap.String("storage_backend", cfg.StorageBackend),
			zap.String("session_backend", cfg.SessionBackend))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("server_shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

func newApp(log *zap.Logger, svcs handlers.Services, checks map[string]handlers.Check) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	metrics, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, fmt.Errorf("failed to register http metrics: %w", err)
	}

	// RequestID first so every later layer can read it.
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics" || c.Path() == "/healthz"
	})))
	app.Use(middleware.Logger(logger.Named(log, "http")))
	app.Use(metrics.Handler())

	app.Get("/metrics", middleware.MetricsHandler(prometheus.DefaultGatherer))
	handlers.RegisterRoutes(app, svcs, checks)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	return app, nil
}

func openBackend(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (*repositories, error) {
	repos := &repositories{checks: map[string]handlers.Check{}}

	switch cfg.StorageBackend {
	case config.BackendPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		repos.closers = append(repos.closers, func(context.Context) error { return db.Close() })
		if err := migration.EnsureMigrated(ctx, db, logger.Named(log, "migration"), cfg.Database.Host); err != nil {
			_ = db.Close()
			return nil, err
		}
		repos.items = postgres.NewItemPostgres(db)
		repos.users = postgres.NewUserPostgres(db)
		repos.settings = postgres.NewAlertSettingsPostgres(db)
		repos.checks["database"] = func(ctx context.Context) error { return database.Ping(ctx, db) }
		if cfg.SessionBackend == config.BackendPostgres {
			repos.sessions = session.NewPostgresStore(db)
		}

	case config.BackendMongoDB:
		mdb, err := database.NewMongo(ctx, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		repos.closers = append(repos.closers, mdb.Client().Disconnect)
		if err := mongodb.EnsureIndexes(ctx, mdb); err != nil {
			_ = mdb.Client().Disconnect(context.Background())
			return nil, err
		}
		repos.items = mongodb.NewItemMongo(mdb)
		repos.users = mongodb.NewUserMongo(mdb)
		repos.settings = mongodb.NewAlertSettingsMongo(mdb)
		repos.checks["database"] = mongoCheck(mdb)
		if cfg.SessionBackend == config.BackendMongoDB {
			store := session.NewMongoStore(mdb)
			if err := store.EnsureIndexes(ctx); err != nil {
				_ = mdb.Client().Disconnect(context.Background())
				return nil, err
			}
			repos.sessions = store
		}
	}

	if cfg.SessionBackend == config.BackendRedis {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		repos.closers = append(repos.closers, func(context.Context) error { return rdb.Close() })
		repos.sessions = session.NewRedisStore(rdb)
		repos.checks["sessions"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	if repos.sessions == nil {
		return nil, errors.New("no session store configured")
	}
	return repos, nil
}

func mongoCheck(db *mongo.Database) handlers.Check {
	return func(ctx context.Context) error {
		return db.Client().Ping(ctx, readpref.Primary())
	}
}

