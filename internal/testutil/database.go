// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/discussion-system/discussion-system/internal/config"
	"github.com/discussion-system/discussion-system/internal/repository"
	"github.com/stretchr/testify/require"
)

var dbSeq int64

// NewDatabase opens a migrated in-memory sqlite database private to the test.
// A single connection keeps the shared-cache database alive and serializes
// writers.
func NewDatabase(t testing.TB) *repository.Database {
	t.Helper()

	n := atomic.AddInt64(&dbSeq, 1)
	db, err := repository.NewDatabase(&config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// NewFileDatabase opens a migrated sqlite file in WAL mode with several
// connections, so concurrent writers really interleave. Foreign keys are
// enforced.
func NewFileDatabase(t testing.TB) *repository.Database {
	t.Helper()

	path := filepath.Join(t.TempDir(), "discussions.db")
	db, err := repository.NewDatabase(&config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         "file:" + path + "?_journal_mode=WAL&_busy_timeout=10000&_foreign_keys=on",
		MaxOpenConns: 8,
		MaxIdleConns: 8,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())

	t.Cleanup(func() { _ = db.Close() })
	return db
}
