package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/calendar-console/internal/persistence"
)

func seedCalendar(t *testing.T, store *Store, owner, title string) persistence.Calendar {
	t.Helper()
	calendar, err := store.CreateCalendar(context.Background(), persistence.Calendar{Title: title, OwnerUsername: owner})
	if err != nil {
		t.Fatalf("Failed to seed calendar %s: %v", title, err)
	}
	return calendar
}

func TestMeetingRepository_CreateMeeting(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()
	seedUser(t, store, "alice")
	calendar := seedCalendar(t, store, "alice", "Work")

	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	created, err := store.CreateMeeting(ctx, persistence.Meeting{
		Title:    "Standup",
		Start:    start,
		End:      start.Add(15 * time.Minute),
		Calendar: persistence.Calendar{ID: calendar.ID},
	})
	if err != nil {
		t.Fatalf("CreateMeeting failed: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("Expected assigned ID")
	}
	if created.Calendar.ID != calendar.ID || created.Calendar.Title != "Work" || created.Calendar.OwnerUsername != "alice" {
		t.Errorf("Expected joined calendar %+v, got %+v", calendar, created.Calendar)
	}
	if !created.Start.Equal(start) || !created.End.Equal(start.Add(15*time.Minute)) {
		t.Errorf("Unexpected interval %v - %v", created.Start, created.End)
	}
}

func TestMeetingRepository_CreateMeeting_Constraints(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()
	seedUser(t, store, "alice")
	calendar := seedCalendar(t, store, "alice", "Work")

	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	_, err := store.CreateMeeting(ctx, persistence.Meeting{Title: "Backwards", Start: start, End: start, Calendar: calendar})
	if !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Errorf("Expected ErrConstraintViolation for empty interval, got %v", err)
	}

	_, err = store.CreateMeeting(ctx, persistence.Meeting{
		Title:    "Orphan",
		Start:    start,
		End:      start.Add(time.Hour),
		Calendar: persistence.Calendar{ID: calendar.ID + 100},
	})
	if !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Errorf("Expected ErrForeignKeyViolation for unknown calendar, got %v", err)
	}
}

func TestMeetingRepository_ListMeetingsByCalendar(t *testing.T) {
	store := setupStoreTest(t)
	ctx := context.Background()
	seedUser(t, store, "alice")
	work := seedCalendar(t, store, "alice", "Work")
	home := seedCalendar(t, store, "alice", "Home")

	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	inputs := []persistence.Meeting{
		{Title: "Review", Start: base.Add(2 * time.Hour), End: base.Add(3 * time.Hour), Calendar: work},
		{Title: "Standup", Start: base, End: base.Add(15 * time.Minute), Calendar: work},
		{Title: "Dinner", Start: base.Add(10 * time.Hour), End: base.Add(11 * time.Hour), Calendar: home},
	}
	for _, meeting := range inputs {
		if _, err := store.CreateMeeting(ctx, meeting); err != nil {
			t.Fatalf("CreateMeeting failed: %v", err)
		}
	}

	meetings, err := store.ListMeetingsByCalendar(ctx, work.ID)
	if err != nil {
		t.Fatalf("ListMeetingsByCalendar failed: %v", err)
	}
	if len(meetings) != 2 {
		t.Fatalf("Expected 2 meetings, got %d", len(meetings))
	}
	if meetings[0].Title != "Standup" || meetings[1].Title != "Review" {
		t.Errorf("Expected meetings ordered by start, got %s, %s", meetings[0].Title, meetings[1].Title)
	}
	for _, meeting := range meetings {
		if meeting.Calendar.Title != "Work" {
			t.Errorf("Expected calendar Work on %s, got %s", meeting.Title, meeting.Calendar.Title)
		}
	}
}

func TestMeetingRepository_DeleteMeeting(t *testing.T) {
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

	deleted, err := store.DeleteMeeting(ctx, meeting.ID)
	if err != nil || !deleted {
		t.Fatalf("Expected first delete to succeed, got deleted=%v err=%v", deleted, err)
	}

	deleted, err = store.DeleteMeeting(ctx, meeting.ID)
	if err != nil || deleted {
		t.Errorf("Expected second delete to report false, got deleted=%v err=%v", deleted, err)
	}

	if _, err := store.GetMeeting(ctx, meeting.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
