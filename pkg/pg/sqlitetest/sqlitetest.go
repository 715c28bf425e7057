// Package sqlitetest opens throwaway sqlite databases behind pg.DB for tests.
package sqlitetest

import (
	"testing"

	"github.com/nimasrn/reservation-hub/pkg/pg"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open returns an in-memory sqlite database with foreign keys enforced and
// the given entities migrated. The database is closed on test cleanup.
func Open(t testing.TB, entities ...any) *pg.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), pg.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps every query on the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	if len(entities) > 0 {
		require.NoError(t, db.AutoMigrate(entities...))
	}

	return pg.NewFromGorm(db, db)
}
