package persistence

import "time"

// User represents a registered account. Username is the primary key.
type User struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Calendar represents a named container of meetings owned by one user.
type Calendar struct {
	ID            int64
	Title         string
	OwnerUsername string
	CreatedAt     time.Time
}

// Meeting represents a time-bounded entry stored in a calendar.
//
// Calendar is always populated on reads; writes only consult Calendar.ID.
type Meeting struct {
	ID        int64
	Title     string
	Start     time.Time
	End       time.Time
	Calendar  Calendar
	CreatedAt time.Time
}
