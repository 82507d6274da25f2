package testfixtures

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/calendar-console/internal/application"
	"github.com/example/calendar-console/internal/persistence"
)

var (
	userCounter     uint64
	calendarCounter uint64
	meetingCounter  uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic user record.
type UserFixture struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	fixture := UserFixture{
		Username:     fmt.Sprintf("user-%03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		CreatedAt:    referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUsername overrides the generated username.
func WithUsername(username string) UserOption {
	return func(f *UserFixture) {
		f.Username = username
	}
}

// WithPasswordHash overrides the generated password hash.
func WithPasswordHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.PasswordHash = hash
	}
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		Username:     f.Username,
		PasswordHash: f.PasswordHash,
		CreatedAt:    f.CreatedAt,
	}
}

// --------------------------- Calendar fixtures ---------------------------

// CalendarFixture represents a deterministic calendar record. ID is assigned on seed.
type CalendarFixture struct {
	Title         string
	OwnerUsername string
	CreatedAt     time.Time
}

// CalendarOption configures the generated calendar fixture.
type CalendarOption func(*CalendarFixture)

// NewCalendarFixture returns a calendar fixture owned by owner.
func NewCalendarFixture(owner string, opts ...CalendarOption) CalendarFixture {
	idx := atomic.AddUint64(&calendarCounter, 1)
	fixture := CalendarFixture{
		Title:         fmt.Sprintf("Calendar %03d", idx),
		OwnerUsername: owner,
		CreatedAt:     referenceTime.Add(time.Duration(idx) * time.Hour),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithCalendarTitle overrides the generated title.
func WithCalendarTitle(title string) CalendarOption {
	return func(f *CalendarFixture) {
		f.Title = title
	}
}

// Persistence returns the fixture as a persistence.Calendar value.
func (f CalendarFixture) Persistence() persistence.Calendar {
	return persistence.Calendar{
		Title:         f.Title,
		OwnerUsername: f.OwnerUsername,
		CreatedAt:     f.CreatedAt,
	}
}

// ---------------------------- Meeting fixtures ----------------------------

// MeetingFixture represents a deterministic meeting in a calendar.
type MeetingFixture struct {
	Title      string
	Start      time.Time
	End        time.Time
	CalendarID int64
}

// MeetingOption configures the generated meeting fixture.
type MeetingOption func(*MeetingFixture)

// NewMeetingFixture returns a 30 minute meeting in calendarID.
func NewMeetingFixture(calendarID int64, opts ...MeetingOption) MeetingFixture {
	idx := atomic.AddUint64(&meetingCounter, 1)
	start := referenceTime.Add(time.Duration(idx) * 24 * time.Hour)
	fixture := MeetingFixture{
		Title:      fmt.Sprintf("Meeting %03d", idx),
		Start:      start,
		End:        start.Add(30 * time.Minute),
		CalendarID: calendarID,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithMeetingTitle overrides the generated title.
func WithMeetingTitle(title string) MeetingOption {
	return func(f *MeetingFixture) {
		f.Title = title
	}
}

// WithMeetingWindow overrides the generated start and end.
func WithMeetingWindow(start, end time.Time) MeetingOption {
	return func(f *MeetingFixture) {
		f.Start = start
		f.End = end
	}
}

// Persistence returns the fixture as a persistence.Meeting value.
func (f MeetingFixture) Persistence() persistence.Meeting {
	return persistence.Meeting{
		Title:    f.Title,
		Start:    f.Start,
		End:      f.End,
		Calendar: persistence.Calendar{ID: f.CalendarID},
	}
}

// Input returns the fixture as an application.MeetingInput.
func (f MeetingFixture) Input() application.MeetingInput {
	return application.MeetingInput{
		Title:      f.Title,
		Start:      f.Start,
		End:        f.End,
		CalendarID: f.CalendarID,
	}
}

// ------------------------------ Seeding ------------------------------

// SeedUser stores the fixture and fails the test on error.
func SeedUser(tb testing.TB, store persistence.UserRepository, fixture UserFixture) persistence.User {
	tb.Helper()
	record := fixture.Persistence()
	if err := store.CreateUser(context.Background(), record); err != nil {
		tb.Fatalf("failed to seed user %s: %v", fixture.Username, err)
	}
	return record
}

// SeedCalendar stores the fixture and returns the record with its assigned ID.
func SeedCalendar(tb testing.TB, store persistence.CalendarRepository, fixture CalendarFixture) persistence.Calendar {
	tb.Helper()
	record, err := store.CreateCalendar(context.Background(), fixture.Persistence())
	if err != nil {
		tb.Fatalf("failed to seed calendar %s: %v", fixture.Title, err)
	}
	return record
}

// SeedMeeting stores the fixture and returns the record with its joined calendar.
func SeedMeeting(tb testing.TB, store persistence.MeetingRepository, fixture MeetingFixture) persistence.Meeting {
	tb.Helper()
	record, err := store.CreateMeeting(context.Background(), fixture.Persistence())
	if err != nil {
		tb.Fatalf("failed to seed meeting %s: %v", fixture.Title, err)
	}
	return record
}
