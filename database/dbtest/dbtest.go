// Package dbtest opens throwaway storage backends for tests: an in-memory SQLite database
// behind the GORM store and a flat-file store in a temp dir.
package dbtest

import (
	"strings"
	"testing"

	"github.com/sahilchouksey/mentor-hub-api/database"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLite returns a migrated GORM store on a private in-memory database.
func SQLite(t testing.TB) *database.GORMStore {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	store := database.NewGORMStore(db, "sqlite", 0)
	require.NoError(t, store.Init())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// File returns an initialized flat-file store in a temp dir.
func File(t testing.TB) *database.FileStore {
	t.Helper()

	store := database.NewFileStore(t.TempDir())
	require.NoError(t, store.Init())
	return store
}

// Each runs fn once per backend, as a subtest named after the backend mode.
func Each(t *testing.T, fn func(t *testing.T, store database.Storage)) {
	t.Helper()

	t.Run(string(database.ModeDatabase), func(t *testing.T) { fn(t, SQLite(t)) })
	t.Run(string(database.ModeFile), func(t *testing.T) { fn(t, File(t)) })
}
