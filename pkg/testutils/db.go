// Package testutils provides database fixtures for package tests.
package testutils

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shishobooks/circulation/pkg/config"
	"github.com/shishobooks/circulation/pkg/database"
	"github.com/shishobooks/circulation/pkg/migrations"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// NewDB opens a migrated in-memory SQLite database that is closed when the
// test ends.
func NewDB(t *testing.T) *bun.DB {
	t.Helper()
	return open(t, config.NewForTest())
}

// NewFileDB is like NewDB but backs the database with a temp file, which is
// what concurrency tests need to behave like production.
func NewFileDB(t *testing.T) *bun.DB {
	t.Helper()
	cfg := config.NewForTest()
	cfg.DatabaseFilePath = filepath.Join(t.TempDir(), "circulation.db")
	return open(t, cfg)
}

func open(t *testing.T, cfg *config.Config) *bun.DB {
	t.Helper()

	db, err := database.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	return db
}
