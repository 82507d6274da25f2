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

func TestStore_WithinTransaction_RollsBackOnError(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()
	seedUser(t, store, "alice")
	calendar := seedCalendar(t, store, "alice", "Work")

	meeting, err := store.CreateMeeting(ctx, persistence.Meeting{
		Title:    "Standup",
		Start:    testNow,
		End:      testNow.Add(15 * time.Minute),
		Calendar: calendar,
	})
	if err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}

	boom := errors.New("boom")
	err = store.WithinTransaction(ctx, func(ctx context.Context, repos persistence.Repositories) error {
		if _, err := repos.Meetings.DeleteMeeting(ctx, meeting.ID); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}

	if _, err := store.GetMeeting(ctx, meeting.ID); err != nil {
		t.Errorf("Expected meeting to survive rollback, got %v", err)
	}
}

func TestStore_WithinTransaction_Commits(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()
	seedUser(t, store, "alice")
	calendar := seedCalendar(t, store, "alice", "Work")

	err := store.WithinTransaction(ctx, func(ctx context.Context, repos persistence.Repositories) error {
		return repos.Calendars.DeleteCalendar(ctx, calendar.ID)
	})
	if err != nil {
		t.Fatalf("WithinTransaction failed: %v", err)
	}

	if _, err := store.GetCalendar(ctx, calendar.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after commit, got %v", err)
	}
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	config := DefaultConfig(filepath.Join(t.TempDir(), "nested", "calendar.db"))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	first, err := Open(ctx, config, logger)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := first.CreateUser(ctx, persistence.User{Username: "alice", PasswordHash: "hash"}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second, err := Open(ctx, config, logger)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer second.Close()

	if _, err := second.GetUser(ctx, "alice"); err != nil {
		t.Errorf("Expected user to persist across reopen, got %v", err)
	}
}

func TestOpen_InMemory(t *testing.T) {
	store, err := Open(context.Background(), InMemoryConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	if _, err := store.ListCalendarsByOwner(context.Background(), "alice"); err != nil {
		t.Errorf("Expected migrated schema, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "default file", config: DefaultConfig("calendar.db")},
		{name: "memory", config: InMemoryConfig()},
		{name: "empty path", config: Config{}, wantErr: true},
		{name: "bad journal", config: Config{Path: "x.db", JournalMode: "FAST"}, wantErr: true},
		{name: "memory pool", config: Config{Path: ":memory:", MaxOpenConns: 4}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
