package database

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/m3rciful/postbot/core/logger"
)

// Connect opens the database connection, configures the pool, and verifies connectivity.
// For sqlite the database file and its directory are created when missing.
func Connect(cfg Config) (*sqlx.DB, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if cfg.Driver == DriverSQLite {
		if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, cfg.Driver, cfg.DSN())
	took := time.Since(start)
	if err != nil {
		logger.DB.Error("db connect failed",
			slog.String("event", "db.connect"),
			slog.String("driver", cfg.Driver),
			slog.String("db", target(cfg)),
			slog.Duration("duration", logger.RoundMS(took)),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)

	logger.DB.Info("db connected",
		slog.String("event", "db.connect"),
		slog.String("driver", cfg.Driver),
		slog.String("db", target(cfg)),
		slog.Int("pool_open", cfg.MaxConnections),
		slog.Duration("duration", logger.RoundMS(took)),
	)
	return db, nil
}

func target(cfg Config) string {
	if cfg.Driver == DriverSQLite {
		return cfg.Path
	}
	return fmt.Sprintf("%s:%s/%s", cfg.Host, cfg.Port, cfg.Name)
}
