package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	"github.com/ghuser/catalog/pkg/config"
)

// Dialect maps a STORE_DRIVER value to its goose dialect.
func Dialect(store string) (string, error) {
	switch store {
	case config.DriverPostgres:
		return "postgres", nil
	case config.DriverMySQL:
		return "mysql", nil
	case config.DriverSQLite:
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("migrator: no SQL dialect for store driver %q", store)
	}
}

// RunMigrations applies all pending goose migrations for store. files holds
// one directory per store driver (postgres/, mysql/, sqlite/).
func RunMigrations(ctx context.Context, db *sql.DB, store string, files fs.FS) error {
	dialect, err := Dialect(store)
	if err != nil {
		return err
	}

	dir, err := fs.Sub(files, store)
	if err != nil {
		return fmt.Errorf("migrator: open %s migrations: %w", store, err)
	}

	goose.SetBaseFS(dir)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to up migrations: %w", err)
	}
	return nil
}
