package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/calendar-console/internal/application"
	"github.com/example/calendar-console/internal/persistence"
	"github.com/example/calendar-console/internal/testfixtures"
)

// failingCascadeStore makes DeleteCalendar fail inside transactions.
type failingCascadeStore struct {
	persistence.Store
	err error
}

func (s failingCascadeStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos persistence.Repositories) error) error {
	return s.Store.WithinTransaction(ctx, func(ctx context.Context, repos persistence.Repositories) error {
		repos.Calendars = failingCalendars{CalendarRepository: repos.Calendars, err: s.err}
		return fn(ctx, repos)
	})
}

type failingCalendars struct {
	persistence.CalendarRepository
	err error
}

func (f failingCalendars) DeleteCalendar(ctx context.Context, id int64) error {
	return f.err
}

func TestCalendarService_CreateCalendar(t *testing.T) {
	t.Parallel()

	factory := testfixtures.NewServiceFactory()
	store := testfixtures.NewMemoryStore(t, factory.Clock)
	services := factory.NewServices(store)
	ctx := context.Background()
	testfixtures.SeedUser(t, store, testfixtures.NewUserFixture(testfixtures.WithUsername("alice")))

	calendar, err := services.Calendars.CreateCalendar(ctx, " Work ", "alice")
	if err != nil {
		t.Fatalf("CreateCalendar returned error: %v", err)
	}
	if calendar.ID == 0 || calendar.Title != "Work" || calendar.OwnerUsername != "alice" {
		t.Fatalf("unexpected calendar %+v", calendar)
	}

	tests := []struct {
		name  string
		title string
		owner string
		field string
	}{
		{name: "empty title", title: "  ", owner: "alice", field: "title"},
		{name: "duplicate title", title: "Work", owner: "alice", field: "title"},
		{name: "unknown owner", title: "Work", owner: "ghost", field: "owner"},
		{name: "missing owner", title: "Home", owner: "", field: "owner"},
	}
	for _, tt := range tests {
		_, err := services.Calendars.CreateCalendar(ctx, tt.title, tt.owner)
		var vErr *application.ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors[tt.field] == "" {
			t.Errorf("%s: expected ValidationError on %s, got %v", tt.name, tt.field, err)
		}
	}
}

func TestCalendarService_Find(t *testing.T) {
	t.Parallel()

	factory := testfixtures.NewServiceFactory()
	store := testfixtures.NewMemoryStore(t, factory.Clock)
	services := factory.NewServices(store)
	ctx := context.Background()
	testfixtures.SeedUser(t, store, testfixtures.NewUserFixture(testfixtures.WithUsername("alice")))

	empty, err := services.Calendars.FindCalendarsByUsername(ctx, "alice")
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected no calendars, got %+v, %v", empty, err)
	}

	for _, title := range []string{"Work", "Home"} {
		if _, err := services.Calendars.CreateCalendar(ctx, title, "alice"); err != nil {
			t.Fatalf("CreateCalendar returned error: %v", err)
		}
	}

	calendars, err := services.Calendars.FindCalendarsByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("FindCalendarsByUsername returned error: %v", err)
	}
	if len(calendars) != 2 || calendars[0].Title != "Home" {
		t.Fatalf("expected calendars ordered by title, got %+v", calendars)
	}

	found, ok, err := services.Calendars.FindByTitleAndUsername(ctx, "Work", "alice")
	if err != nil || !ok || found.Title != "Work" {
		t.Fatalf("FindByTitleAndUsername = %+v, %v, %v", found, ok, err)
	}

	_, ok, err = services.Calendars.FindByTitleAndUsername(ctx, "Work", "bob")
	if err != nil || ok {
		t.Fatalf("expected absence without error, got ok=%v err=%v", ok, err)
	}
}

func TestCalendarService_DeleteCalendar(t *testing.T) {
	t.Parallel()

	for _, backend := range testfixtures.Backends(t, testfixtures.NewClock(time.Time{})) {
		t.Run(backend.Name, func(t *testing.T) {
			factory := testfixtures.NewServiceFactory()
			services := factory.NewServices(backend.Store)
			ctx := context.Background()

			testfixtures.SeedUser(t, backend.Store, testfixtures.NewUserFixture(testfixtures.WithUsername("alice")))
			work := testfixtures.SeedCalendar(t, backend.Store, testfixtures.NewCalendarFixture("alice", testfixtures.WithCalendarTitle("Work")))
			for i := 0; i < 3; i++ {
				testfixtures.SeedMeeting(t, backend.Store, testfixtures.NewMeetingFixture(work.ID))
			}

			result, err := services.Calendars.DeleteCalendar(ctx, work.ID)
			if err != nil {
				t.Fatalf("DeleteCalendar returned error: %v", err)
			}
			if result.MeetingsDeleted != 3 || result.Calendar.Title != "Work" {
				t.Fatalf("unexpected result %+v", result)
			}

			remaining, err := services.Meetings.FindAllMeetingsByCalendarID(ctx, work.ID)
			if err != nil || len(remaining) != 0 {
				t.Fatalf("expected no meetings left, got %+v, %v", remaining, err)
			}
			calendars, err := services.Calendars.FindCalendarsByUsername(ctx, "alice")
			if err != nil || len(calendars) != 0 {
				t.Fatalf("expected calendar to be gone, got %+v, %v", calendars, err)
			}

			if _, err := services.Calendars.DeleteCalendar(ctx, work.ID); !errors.Is(err, application.ErrNotFound) {
				t.Fatalf("expected ErrNotFound for deleted calendar, got %v", err)
			}
		})
	}
}

func TestCalendarService_DeleteCalendarRollsBack(t *testing.T) {
	t.Parallel()

	for _, backend := range testfixtures.Backends(t, testfixtures.NewClock(time.Time{})) {
		t.Run(backend.Name, func(t *testing.T) {
			factory := testfixtures.NewServiceFactory()
			ctx := context.Background()

			testfixtures.SeedUser(t, backend.Store, testfixtures.NewUserFixture(testfixtures.WithUsername("alice")))
			work := testfixtures.SeedCalendar(t, backend.Store, testfixtures.NewCalendarFixture("alice", testfixtures.WithCalendarTitle("Work")))
			testfixtures.SeedMeeting(t, backend.Store, testfixtures.NewMeetingFixture(work.ID))
			testfixtures.SeedMeeting(t, backend.Store, testfixtures.NewMeetingFixture(work.ID))

			cause := errors.New("calendar row locked")
			svc := factory.NewCalendarService(failingCascadeStore{Store: backend.Store, err: cause})

			_, err := svc.DeleteCalendar(ctx, work.ID)
			var cErr *application.CascadeError
			if !errors.As(err, &cErr) {
				t.Fatalf("expected CascadeError, got %v", err)
			}
			if cErr.Step != application.CascadeStepDeleteCalendar || cErr.MeetingsDeleted != 2 || !errors.Is(err, cause) {
				t.Fatalf("unexpected cascade error %+v", cErr)
			}

			meetings, err := backend.Store.ListMeetingsByCalendar(ctx, work.ID)
			if err != nil || len(meetings) != 2 {
				t.Fatalf("expected meetings restored by rollback, got %d, %v", len(meetings), err)
			}
			if _, err := backend.Store.GetCalendar(ctx, work.ID); err != nil {
				t.Fatalf("expected calendar to remain, got %v", err)
			}
		})
	}
}
