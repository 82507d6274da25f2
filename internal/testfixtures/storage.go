package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/calendar-console/internal/persistence"
	"github.com/example/calendar-console/internal/persistence/memory"
	"github.com/example/calendar-console/internal/persistence/sqlite"
)

// StoreHarness names a storage backend for table-driven contract tests.
type StoreHarness struct {
	Name  string
	Store persistence.Store
}

// NewMemoryStore returns an empty in-memory store driven by clock.
func NewMemoryStore(tb testing.TB, clock *Clock) *memory.Storage {
	tb.Helper()
	store := memory.New(clock.NowFunc())
	tb.Cleanup(func() { _ = store.Close() })
	return store
}

// NewSQLiteStore opens a migrated SQLite store in a temporary directory.
// The store is closed when the test finishes.
func NewSQLiteStore(tb testing.TB, clock *Clock) *sqlite.Store {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "calendar.db")
	store, err := sqlite.Open(context.Background(), sqlite.DefaultConfig(path), DiscardLogger())
	if err != nil {
		tb.Fatalf("failed to open sqlite store: %v", err)
	}
	tb.Cleanup(func() { _ = store.Close() })

	return store.WithClock(clock.NowFunc())
}

// Backends returns a fresh store per supported embedded backend.
func Backends(tb testing.TB, clock *Clock) []StoreHarness {
	tb.Helper()
	return []StoreHarness{
		{Name: "memory", Store: NewMemoryStore(tb, clock)},
		{Name: "sqlite", Store: NewSQLiteStore(tb, clock)},
	}
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
