package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/ghuser/catalog/docs/swagger"
	"github.com/ghuser/catalog/migrations"
	"github.com/ghuser/catalog/pkg/app"
	"github.com/ghuser/catalog/pkg/config"
	"github.com/ghuser/catalog/pkg/database"
	"github.com/ghuser/catalog/pkg/events"
	"github.com/ghuser/catalog/pkg/httpx"
	"github.com/ghuser/catalog/pkg/kv"
	"github.com/ghuser/catalog/pkg/logger"
	"github.com/ghuser/catalog/pkg/migrator"
	"github.com/ghuser/catalog/pkg/telemetry"
	catalogApi "github.com/ghuser/catalog/services/catalog/application/api"
)

// @title			Catalog API
// @version		1.0
// @description	Create, read, list, update and delete catalog items.
// @license.name	MIT
// @license.url	https://opensource.org/licenses/MIT
// @host			localhost:8080
// @BasePath		/
// @schemes		http https
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	// Telemetry: OTel tracing + metrics
	ctx := context.Background()
	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	// Crash reporting: Sentry (optional, log and continue on failure)
	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	appConfig, closeStore, err := connectStore(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure, deferred flushes are best-effort
	}
	defer closeStore()

	checks := httpx.HealthChecks{}
	if appConfig.Db != nil {
		checks["database"] = appConfig.Db
	}
	if appConfig.Redis != nil {
		checks["redis"] = appConfig.Redis
	}
	if appConfig.EventBus != nil {
		checks["event_bus"] = appConfig.EventBus
	}

	r := httpx.NewRouter(
		httpx.ServerConfig{
			ServiceName:        cfg.ServiceName,
			IsDevelopment:      cfg.Environment == config.EnvDevelopment,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			RateLimitPerMinute: cfg.RateLimitPerMinute,
			DocsPathPrefix:     "/swagger/",
		},
		httpx.Middlewares{
			Recovery: logger.Recovery(log),
			Sentry:   telemetry.SentryMiddleware(),
			Otel:     otelhttp.NewMiddleware(cfg.ServiceName),
			Logger:   logger.Middleware(log),
		},
	)

	r.Get("/health", httpx.HealthHandler(checks))
	r.Get("/metrics", metricsHandler.ServeHTTP)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	registerRoutes(r, appConfig)

	srv := httpx.NewServer(cfg.HTTPAddr, r)

	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// connectStore opens the store selected by STORE_DRIVER and, for PostgreSQL
// and MySQL, the event bus with its forwarder. The returned func closes
// everything that was opened.
func connectStore(ctx context.Context, cfg *config.Config, log logger.Logger) (*app.Application, func(), error) {
	a := &app.Application{Config: cfg, Logger: log}

	if !cfg.UsesSQL() {
		rc, err := kv.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		log.Info("redis connected")
		a.Redis = rc
		return a, func() { _ = rc.Close() }, nil
	}

	db, err := database.Open(ctx, cfg.StoreDriver, cfg.DatabaseURL, log)
	if err != nil {
		return nil, nil, err
	}
	a.Db = db

	if cfg.AutoMigrate {
		if err := migrator.RunMigrations(ctx, db.SQL(), cfg.StoreDriver, migrations.FS); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Info("migrations applied", "driver", cfg.StoreDriver)
	}

	if !cfg.SupportsEvents() {
		log.Info("event bus disabled for store driver", "driver", cfg.StoreDriver)
		return a, func() { _ = db.Close() }, nil
	}

	bus, err := events.NewEventBusWithForwarder(cfg, log)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("event bus: %w", err)
	}
	if err := bus.StartForwarder(ctx); err != nil {
		_ = bus.Close()
		_ = db.Close()
		return nil, nil, fmt.Errorf("event forwarder: %w", err)
	}
	a.EventBus = bus

	return a, func() {
		_ = bus.Close()
		_ = db.Close()
	}, nil
}

// registerRoutes mounts all service routes at the root.
// Add each new service's route function here.
func registerRoutes(r chi.Router, a *app.Application) {
	catalogApi.CatalogRoutes(r, a)
}
