// Package app wires configuration into the long-lived pieces shared by the
// web server and the command line tool.
package app

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"f1league-app/internal/config"
	"f1league-app/internal/refdata"
	"f1league-app/internal/store"
)

// NewLogger returns a JSON logger in production and a text logger otherwise.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler
	if cfg.IsProd() {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("app", "f1league", "env", cfg.App.Env)
}

// LoadReference returns the season file named in the config, or the embedded
// season when none is set.
func LoadReference(cfg *config.Config) (*refdata.Data, error) {
	if cfg.App.RefdataPath == "" {
		return refdata.Default(), nil
	}
	ref, err := refdata.LoadFile(cfg.App.RefdataPath)
	if err != nil {
		return nil, fmt.Errorf("reference data %s: %w", cfg.App.RefdataPath, err)
	}
	return ref, nil
}

// OpenStore opens the configured backend and applies pending migrations.
// migrations holds the migrations/ tree and is used unless the config names
// a directory on disk; nil reads migrations/ relative to the working dir.
// The memory store is seeded with sample data in dev.
func OpenStore(ctx context.Context, cfg *config.Config, ref *refdata.Data, migrations fs.FS, logger *slog.Logger) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		st, err := store.NewPostgresStore(ctx, cfg.Store.DSN, store.PostgresOptions{MigrationsDir: cfg.Store.MigrationsDir, Migrations: migrations})
		if err != nil {
			return nil, fmt.Errorf("postgres store: %w", err)
		}
		logger.Info("Using postgres store")
		return st, nil
	case config.DriverSQLite:
		st, err := store.NewSQLiteStore(ctx, cfg.Store.Path, store.SQLiteOptions{MigrationsDir: cfg.Store.MigrationsDir, Migrations: migrations})
		if err != nil {
			return nil, fmt.Errorf("sqlite store: %w", err)
		}
		logger.Info("Using sqlite store", "path", cfg.Store.Path)
		return st, nil
	default:
		if cfg.IsDev() {
			logger.Info("Using seeded memory store")
			return store.NewSeededMemoryStore(ref), nil
		}
		logger.Warn("Using memory store, data is lost on restart")
		return store.NewMemoryStore(), nil
	}
}

// Migrator is implemented by the SQL backends.
type Migrator interface {
	Migrations(ctx context.Context) ([]string, error)
}
