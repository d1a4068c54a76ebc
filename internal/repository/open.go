package repository

import (
	"context"
	"fmt"

	"daily-btc/internal/config"
	"daily-btc/internal/db"

	"go.opentelemetry.io/otel/trace"
)

var (
	initPostgres = db.InitPostgres
	openSQLite   = db.OpenSQLite
)

// Open connects the store selected by cfg and applies the schema: Postgres
// when DATABASE_URL is a postgres DSN, the SQLite file at DB_PATH otherwise.
func Open(ctx context.Context, cfg *config.Config, tracer trace.Tracer) (Store, error) {
	var store Store
	if cfg.UsesPostgres() {
		pool, err := initPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store = NewPostgresStore(pool, tracer)
	} else {
		conn, err := openSQLite(ctx, cfg.DBPath)
		if err != nil {
			return nil, err
		}
		store = NewSQLiteStore(conn, tracer)
	}

	if err := store.RunMigrations(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}
