package sqlite

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/calendar-console/internal/persistence"
)

var testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func setupStoreTest(t *testing.T) *Store {
	t.Helper()

	config := DefaultConfig(filepath.Join(t.TempDir(), "test.db"))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := Open(context.Background(), config, logger)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return store.WithClock(func() time.Time { return testNow })
}

func TestUserRepository_CreateUser(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	err := store.CreateUser(ctx, persistence.User{Username: "alice", PasswordHash: "hashed_password"})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	retrieved, err := store.GetUser(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if retrieved.PasswordHash != "hashed_password" {
		t.Errorf("Expected password hash 'hashed_password', got '%s'", retrieved.PasswordHash)
	}
	if !retrieved.CreatedAt.Equal(testNow) {
		t.Errorf("Expected created_at %v, got %v", testNow, retrieved.CreatedAt)
	}
}

func TestUserRepository_CreateUser_Duplicate(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()

	user := persistence.User{Username: "alice", PasswordHash: "hashed_password"}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("First CreateUser failed: %v", err)
	}

	err := store.CreateUser(ctx, user)
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate, got %v", err)
	}
}

func TestUserRepository_CreateUser_RequiresFields(t *testing.T) {
	store := setupStoreTest(t)

	err := store.CreateUser(context.Background(), persistence.User{Username: "alice"})
	if !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Errorf("Expected ErrConstraintViolation, got %v", err)
	}
}

func TestUserRepository_GetUser_NotFound(t *testing.T) {
	store := setupStoreTest(t)

	_, err := store.GetUser(context.Background(), "nobody")
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
