package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/huydotcode/hoa-huong-duong-art-center-sub001/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Store *sqlite.Store

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens a migrated store on a temporary database file and
// registers cleanup with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "artcenter.db")
	store, err := sqlite.Open(sqlite.DefaultConfig("file:" + path))
	if err != nil {
		tb.Fatalf("failed to open sqlite store: %v", err)
	}
	if err := store.Migrate(context.Background()); err != nil {
		store.Close()
		tb.Fatalf("failed to migrate sqlite store: %v", err)
	}

	harness := &SQLiteHarness{
		Store: store,
		cleanup: func() {
			if err := store.Close(); err != nil {
				tb.Errorf("failed to close sqlite store: %v", err)
			}
		},
	}
	tb.Cleanup(harness.Close)
	return harness
}
