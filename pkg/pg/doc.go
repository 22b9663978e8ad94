// Package pg bootstraps a pgx/v5 connection pool with retrying Connect,
// embedded goose migrations and a health probe.
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, notifications.Migrations, "migrations", log); err != nil {
//		return err
//	}
//
// Error helpers such as IsDuplicateKeyError classify *pgconn.PgError values
// so storage code does not depend on raw SQLSTATE strings.
package pg
