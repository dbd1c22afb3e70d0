// Package testkit holds helpers shared by storefront tests: a throwaway
// SQLite database with the full schema, and request/response helpers for
// exercising handlers through the router.
package testkit

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	_ "github.com/shashiranjanraj/storefront/database/migrations"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/migration"
)

// NewDB opens a fresh file-backed SQLite database under t.TempDir() and
// runs every registered migration. Writers take the lock at BEGIN, so
// concurrent transactions queue on the busy timeout instead of failing.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "storefront_test.db") + "?_busy_timeout=5000&_txlock=immediate"
	db, err := database.Connect(context.Background(), database.Options{
		Driver: "sqlite",
		DSN:    dsn,
		Retry:  database.Retry{Attempts: 1},
	})
	require.NoError(t, err, "testkit: open sqlite")

	_, err = migration.New(db).Run()
	require.NoError(t, err, "testkit: migrate")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
