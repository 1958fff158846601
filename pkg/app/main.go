package app

import (
	"github.com/ghuser/catalog/pkg/config"
	"github.com/ghuser/catalog/pkg/database"
	"github.com/ghuser/catalog/pkg/events"
	"github.com/ghuser/catalog/pkg/kv"
	"github.com/ghuser/catalog/pkg/logger"
)

// Application holds shared infrastructure dependencies for all services.
// Pass to all service route registrations during server initialization.
//
// Exactly one store is set: Db for the SQL drivers, Redis for STORE_DRIVER=redis.
// EventBus is nil unless the store is PostgreSQL or MySQL.
//
// Logging: app.Logger is backed by a trace-aware handler. Use slog's context methods
// and trace_id, span_id, and request_id are injected automatically:
//
//	app.Logger.InfoContext(ctx, "processing item", "item_id", id)
//	app.Logger.ErrorContext(ctx, "failed to save", "error", err)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
type Application struct {
	Config   *config.Config
	Db       *database.Database
	Logger   logger.Logger
	EventBus *events.EventBus
	Redis    *kv.RedisClient
}
