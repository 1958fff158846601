package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ghuser/catalog/migrations"
	"github.com/ghuser/catalog/pkg/config"
	"github.com/ghuser/catalog/pkg/database"
	"github.com/ghuser/catalog/pkg/logger"
	"github.com/ghuser/catalog/pkg/migrator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg)

	if !cfg.UsesSQL() {
		log.Info("store driver has no schema, nothing to migrate", "driver", cfg.StoreDriver)
		return
	}

	ctx := context.Background()
	db, err := database.Open(ctx, cfg.StoreDriver, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close() //nolint:errcheck

	if err := migrator.RunMigrations(ctx, db.SQL(), cfg.StoreDriver, migrations.FS); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	log.Info("migrations applied", "driver", cfg.StoreDriver)
}
