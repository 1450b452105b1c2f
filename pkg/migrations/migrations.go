package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Migrations registers every schema change. Each migration branches on the
// dialect where SQLite and PostgreSQL differ.
var Migrations = migrate.NewMigrations()

// BringUpToDate creates the migration tables if needed and applies every
// unapplied migration as one group.
func BringUpToDate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator := migrate.NewMigrator(db, Migrations)
	if err := migrator.Init(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return group, nil
}

// RollbackAll rolls back migration groups until none are left and returns
// how many were rolled back.
func RollbackAll(ctx context.Context, db *bun.DB) (int, error) {
	migrator := migrate.NewMigrator(db, Migrations)
	n := 0
	for {
		group, err := migrator.Rollback(ctx)
		if err != nil {
			return n, errors.WithStack(err)
		}
		if group.IsZero() {
			return n, nil
		}
		n++
	}
}
