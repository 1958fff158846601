// Package database opens the relational store behind STORE_DRIVER and hands
// out a sqlx handle plus a transaction helper.
//
// Supported drivers:
//   - postgres: jackc/pgx/v5 stdlib driver ("pgx")
//   - mysql: go-sql-driver/mysql ("mysql"); the DSN is normalized so that
//     RowsAffected counts matched rows rather than changed rows
//   - sqlite: modernc.org/sqlite ("sqlite"), pure Go, no cgo
//
// Queries are written with "?" placeholders and rebound per driver via sqlx.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/ghuser/catalog/pkg/config"
	"github.com/ghuser/catalog/pkg/logger"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Database wraps a sqlx.DB together with the store driver it was opened for.
type Database struct {
	db     *sqlx.DB
	driver string
}

// DriverName maps a STORE_DRIVER value to the database/sql driver name.
func DriverName(store string) (string, error) {
	switch store {
	case config.DriverPostgres:
		return "pgx", nil
	case config.DriverMySQL:
		return "mysql", nil
	case config.DriverSQLite:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("database: unsupported store driver %q", store)
	}
}

// DSN returns the connection string to hand to sql.Open for the given store.
func DSN(store, url string) (string, error) {
	if store != config.DriverMySQL {
		return url, nil
	}
	cfg, err := mysql.ParseDSN(url)
	if err != nil {
		return "", fmt.Errorf("database: parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}

// Open connects to the store, applies pool settings and verifies connectivity.
func Open(ctx context.Context, store, url string, log logger.Logger) (*Database, error) {
	driverName, err := DriverName(store)
	if err != nil {
		return nil, err
	}
	dsn, err := DSN(store, url)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("database: open %s: %w", store, err)
	}

	if store == config.DriverSQLite {
		// SQLite allows one writer; a single connection also keeps
		// ":memory:" databases alive for the lifetime of the pool.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		if err := applyPragmas(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	} else {
		db.SetMaxOpenConns(15)
		db.SetMaxIdleConns(8)
		db.SetConnMaxLifetime(5 * time.Minute)
		db.SetConnMaxIdleTime(2 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database: ping %s: %w", store, err)
	}

	log.Info("database connected", "driver", store, "max_open_conns", db.Stats().MaxOpenConnections)
	return &Database{db: db, driver: store}, nil
}

func applyPragmas(ctx context.Context, db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("database: setting pragma %q: %w", p, err)
		}
	}
	return nil
}

// DB returns the underlying sqlx handle.
func (d *Database) DB() *sqlx.DB {
	return d.db
}

// SQL returns the plain *sql.DB, for libraries that do not know sqlx.
func (d *Database) SQL() *sql.DB {
	return d.db.DB
}

// Driver returns the STORE_DRIVER value this database was opened with.
func (d *Database) Driver() string {
	return d.driver
}

// WithTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back on error or panic.
func (d *Database) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("database: begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("database: rollback: %w", rbErr))
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("database: commit: %w", err)
	}
	return nil
}

// Ping checks the database connection health.
func (d *Database) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database: ping: %w", err)
	}
	return nil
}

// Close releases every pooled connection.
func (d *Database) Close() error {
	return d.db.Close()
}
