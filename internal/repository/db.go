package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/scontrini/scontrini/internal/common"
)

//go:embed schema.sql
var schemaSQL string

type Config struct {
	Driver          string // "sqlite" or "pgx"
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	DialTimeout     time.Duration
}

// Open connects via database/sql and applies the schema. SQLite is the
// default store; Postgres is used when the driver says so.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*sql.DB, error) {
	if cfg.Driver == "" {
		cfg.Driver = "sqlite"
	}
	logger.Info("connecting to database", "driver", cfg.Driver, "dsn", cfg.DSN)

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return nil, common.WrapError(err, "open database")
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		_ = db.Close()
		return nil, common.WrapError(err, "ping database")
	}

	if err := applySchema(ctx, db); err != nil {
		logger.Error("failed to apply schema", "error", err)
		_ = db.Close()
		return nil, common.WrapError(err, "apply schema")
	}

	logger.Info("successfully connected to database")
	return db, nil
}

// applySchema runs each schema statement on its own so both drivers accept
// it; the pgx driver rejects multi-statement strings.
func applySchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection gracefully
func Close(db *sql.DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	logger.Info("closing database connection")
	if err := db.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
	}
}

// HealthCheck pings the database to catch DSN issues early.
func HealthCheck(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return db.PingContext(ctx)
}
