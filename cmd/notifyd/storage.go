package main

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/notifykit/pkg/httpserver"
	notify "github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/pg"
)

type pgStorage struct {
	*notify.PostgresStorage
	pool *pgxpool.Pool
}

// openStorage connects to Postgres and applies migrations, or falls back to
// the in-memory store when no database URL is configured.
func openStorage(ctx context.Context, cfg pg.Config, log *slog.Logger) (notify.Storage, func(), error) {
	if cfg.ConnectionString == "" {
		log.WarnContext(ctx, "DATABASE_URL not set, notifications are kept in memory")
		return notify.NewMemoryStorage(), func() {}, nil
	}

	pool, err := pg.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := pg.Migrate(ctx, pool, cfg, notify.Migrations, notify.MigrationsDir, log); err != nil {
		pool.Close()
		return nil, nil, err
	}

	return pgStorage{PostgresStorage: notify.NewPostgresStorage(pool), pool: pool}, pool.Close, nil
}

func storageChecks(s notify.Storage) []httpserver.Check {
	if p, ok := s.(pgStorage); ok {
		return []httpserver.Check{{Name: "postgres", Probe: pg.Healthcheck(p.pool)}}
	}
	return nil
}
