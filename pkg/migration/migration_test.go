package migration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/pkg/database"
)

type tableMigration struct{ table string }

func (m tableMigration) Up(db *gorm.DB) error {
	return db.Exec("CREATE TABLE IF NOT EXISTS " + m.table + " (id INTEGER PRIMARY KEY)").Error
}

func (m tableMigration) Down(db *gorm.DB) error {
	return db.Exec("DROP TABLE IF EXISTS " + m.table).Error
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(context.Background(), database.Options{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "migrations.db"),
		Retry:  database.Retry{Attempts: 1},
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func runner(db *gorm.DB, names ...string) *Runner {
	r := &Runner{db: db}
	for _, n := range names {
		r.entries = append(r.entries, entry{name: n, m: tableMigration{table: "t_" + n}})
	}
	return r
}

func TestRunIsIdempotentAndBatched(t *testing.T) {
	db := openDB(t)

	applied, err := runner(db, "a", "b").Run()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, applied)
	assert.True(t, db.Migrator().HasTable("t_a"))

	applied, err = runner(db, "a", "b").Run()
	require.NoError(t, err)
	assert.Empty(t, applied)

	applied, err = runner(db, "a", "b", "c").Run()
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, applied)

	rows, err := runner(db, "a", "b", "c", "d").Status()
	require.NoError(t, err)
	assert.Equal(t, []StatusRow{
		{Name: "a", Ran: true, Batch: 1},
		{Name: "b", Ran: true, Batch: 1},
		{Name: "c", Ran: true, Batch: 2},
		{Name: "d", Ran: false},
	}, rows)
}

func TestRollbackRevertsLastBatchNewestFirst(t *testing.T) {
	db := openDB(t)

	_, err := runner(db, "a", "b").Run()
	require.NoError(t, err)
	_, err = runner(db, "a", "b", "c").Run()
	require.NoError(t, err)

	reverted, err := runner(db, "a", "b", "c").Rollback()
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, reverted)
	assert.False(t, db.Migrator().HasTable("t_c"))

	reverted, err = runner(db, "a", "b", "c").Rollback()
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, reverted)

	reverted, err = runner(db, "a", "b", "c").Rollback()
	require.NoError(t, err)
	assert.Empty(t, reverted)
}

func TestRollbackUnknownMigration(t *testing.T) {
	db := openDB(t)

	_, err := runner(db, "gone").Run()
	require.NoError(t, err)

	_, err = runner(db).Rollback()
	assert.ErrorIs(t, err, ErrNotRegistered)
}
