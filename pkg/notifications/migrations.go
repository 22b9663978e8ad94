package notifications

import "embed"

// Migrations holds the goose migrations for the notifications table,
// under the "migrations" directory.
//
//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsDir = "migrations"
