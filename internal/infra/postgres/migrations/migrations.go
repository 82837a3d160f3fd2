// Package migrations holds ordered, idempotent schema steps for the
// Postgres backend. Registration order is the application order.
package migrations

import (
	"github.com/uptrace/bun/migrate"
)

var Migrations = migrate.NewMigrations()
