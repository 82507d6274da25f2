package persistence

import "context"

// UserRepository stores user accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, username string) (User, error)
}

// CalendarRepository stores calendars. Identifiers are assigned on create.
type CalendarRepository interface {
	CreateCalendar(ctx context.Context, calendar Calendar) (Calendar, error)
	GetCalendar(ctx context.Context, id int64) (Calendar, error)
	GetCalendarByTitle(ctx context.Context, ownerUsername, title string) (Calendar, error)
	ListCalendarsByOwner(ctx context.Context, ownerUsername string) ([]Calendar, error)
	DeleteCalendar(ctx context.Context, id int64) error
}

// MeetingRepository stores meetings. Reads join the owning calendar.
type MeetingRepository interface {
	CreateMeeting(ctx context.Context, meeting Meeting) (Meeting, error)
	GetMeeting(ctx context.Context, id int64) (Meeting, error)
	ListMeetingsByCalendar(ctx context.Context, calendarID int64) ([]Meeting, error)
	// DeleteMeeting reports whether a record existed and was removed.
	DeleteMeeting(ctx context.Context, id int64) (bool, error)
}

// Repositories groups the stores bound to one transaction.
type Repositories struct {
	Calendars CalendarRepository
	Meetings  MeetingRepository
}

// UnitOfWork executes fn against repositories that share a single transaction.
// When fn returns an error every change made through repos is discarded.
type UnitOfWork interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// Store is the full storage surface a backend provides.
type Store interface {
	UserRepository
	CalendarRepository
	MeetingRepository
	UnitOfWork
	Close() error
}
