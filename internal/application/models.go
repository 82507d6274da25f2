package application

import (
	"time"

	"github.com/example/calendar-console/internal/persistence"
)

// User is a registered account. Usernames are immutable.
type User struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Calendar is a named container of meetings owned by one user.
type Calendar struct {
	ID            int64
	Title         string
	OwnerUsername string
	CreatedAt     time.Time
}

// Meeting is a time-bounded event. Calendar is always populated on reads.
type Meeting struct {
	ID        int64
	Title     string
	Start     time.Time
	End       time.Time
	Calendar  Calendar
	CreatedAt time.Time
}

// ValidateTimes requires the meeting to start strictly before it ends.
func (m Meeting) ValidateTimes() error {
	if err := validateTimes(m.Start, m.End); err.HasErrors() {
		return err
	}
	return nil
}

func validateTimes(start, end time.Time) *ValidationError {
	vErr := &ValidationError{}
	if start.IsZero() {
		vErr.add("start", "start time is required")
	}
	if end.IsZero() {
		vErr.add("end", "end time is required")
	}
	if !start.IsZero() && !end.IsZero() && !start.Before(end) {
		vErr.add("end", "end time must be after start time")
	}
	return vErr
}

// CreateUserParams wraps the data required to register a user.
// When Password is empty one is generated.
type CreateUserParams struct {
	Username string
	Password string
}

// RegisterResult returns the stored user and the plaintext password, shown once.
type RegisterResult struct {
	User     User
	Password string
}

// MeetingInput captures caller provided meeting fields.
type MeetingInput struct {
	Title      string
	Start      time.Time
	End        time.Time
	CalendarID int64
}

// CascadeResult summarises a successful calendar delete.
type CascadeResult struct {
	Calendar        Calendar
	MeetingsDeleted int
}

func userFromRecord(record persistence.User) User {
	return User{
		Username:     record.Username,
		PasswordHash: record.PasswordHash,
		CreatedAt:    record.CreatedAt,
	}
}

func calendarFromRecord(record persistence.Calendar) Calendar {
	return Calendar{
		ID:            record.ID,
		Title:         record.Title,
		OwnerUsername: record.OwnerUsername,
		CreatedAt:     record.CreatedAt,
	}
}

func meetingFromRecord(record persistence.Meeting) Meeting {
	return Meeting{
		ID:        record.ID,
		Title:     record.Title,
		Start:     record.Start,
		End:       record.End,
		Calendar:  calendarFromRecord(record.Calendar),
		CreatedAt: record.CreatedAt,
	}
}
