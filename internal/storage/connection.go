package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

const pingTimeout = 5 * time.Second

// Connection wraps a pooled database handle with health checking and
// config-driven pool limits.
type Connection struct {
	db     *sql.DB
	config *Config
	logger *slog.Logger
}

// Connect opens and verifies a PostgreSQL connection.
func Connect(ctx context.Context, cfg *Config, logger *slog.Logger) (*Connection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid storage config: %w", err)
	}

	db, err := sql.Open("postgres", cfg.databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("pinging database: %w", err)
	}

	logger.Info("database connection established",
		"url", cfg.MaskDatabaseURL(),
		"max_open_conns", cfg.MaxOpenConns)

	return &Connection{db: db, config: cfg, logger: logger}, nil
}

// DB exposes the underlying handle for stores and migrations.
func (c *Connection) DB() *sql.DB {
	return c.db
}

// HealthCheck verifies the database is reachable.
func (c *Connection) HealthCheck(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := c.db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("database health check: %w", err)
	}

	return nil
}

// Close releases the connection pool.
func (c *Connection) Close() error {
	c.logger.Info("closing database connection")

	return c.db.Close()
}
