package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/example/calendar-console/internal/persistence"
)

// UserRepository implements persistence.UserRepository using PostgreSQL.
type UserRepository struct {
	db  dbtx
	now func() time.Time
}

func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) error {
	if user.Username == "" || user.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.now()
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES ($1, $2, $3)`,
		user.Username, user.PasswordHash, user.CreatedAt.UTC(),
	)
	return mapError(err)
}

func (r *UserRepository) GetUser(ctx context.Context, username string) (persistence.User, error) {
	var user persistence.User
	err := r.db.QueryRow(ctx,
		`SELECT username, password_hash, created_at FROM users WHERE username = $1`,
		username,
	).Scan(&user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return persistence.User{}, mapError(err)
	}
	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}

// CalendarRepository implements persistence.CalendarRepository using PostgreSQL.
type CalendarRepository struct {
	db  dbtx
	now func() time.Time
}

const calendarColumns = `id, title, owner_username, created_at`

func (r *CalendarRepository) CreateCalendar(ctx context.Context, calendar persistence.Calendar) (persistence.Calendar, error) {
	if calendar.Title == "" || calendar.OwnerUsername == "" {
		return persistence.Calendar{}, persistence.ErrConstraintViolation
	}
	if calendar.CreatedAt.IsZero() {
		calendar.CreatedAt = r.now()
	}
	calendar.CreatedAt = calendar.CreatedAt.UTC().Truncate(time.Microsecond)

	err := r.db.QueryRow(ctx,
		`INSERT INTO calendars (title, owner_username, created_at) VALUES ($1, $2, $3) RETURNING id`,
		calendar.Title, calendar.OwnerUsername, calendar.CreatedAt,
	).Scan(&calendar.ID)
	if err != nil {
		return persistence.Calendar{}, mapError(err)
	}
	return calendar, nil
}

func (r *CalendarRepository) GetCalendar(ctx context.Context, id int64) (persistence.Calendar, error) {
	row := r.db.QueryRow(ctx, `SELECT `+calendarColumns+` FROM calendars WHERE id = $1`, id)
	calendar, err := scanCalendar(row)
	return calendar, mapError(err)
}

func (r *CalendarRepository) GetCalendarByTitle(ctx context.Context, ownerUsername, title string) (persistence.Calendar, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+calendarColumns+` FROM calendars WHERE owner_username = $1 AND title = $2`,
		ownerUsername, title,
	)
	calendar, err := scanCalendar(row)
	return calendar, mapError(err)
}

func (r *CalendarRepository) ListCalendarsByOwner(ctx context.Context, ownerUsername string) ([]persistence.Calendar, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+calendarColumns+` FROM calendars WHERE owner_username = $1 ORDER BY title ASC, id ASC`,
		ownerUsername,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	calendars := make([]persistence.Calendar, 0)
	for rows.Next() {
		calendar, err := scanCalendar(rows)
		if err != nil {
			return nil, mapError(err)
		}
		calendars = append(calendars, calendar)
	}
	return calendars, mapError(rows.Err())
}

// DeleteCalendar removes a calendar by ID. Meetings must be removed first.
func (r *CalendarRepository) DeleteCalendar(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM calendars WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func scanCalendar(row pgx.Row) (persistence.Calendar, error) {
	var calendar persistence.Calendar
	if err := row.Scan(&calendar.ID, &calendar.Title, &calendar.OwnerUsername, &calendar.CreatedAt); err != nil {
		return persistence.Calendar{}, err
	}
	calendar.CreatedAt = calendar.CreatedAt.UTC()
	return calendar, nil
}

// MeetingRepository implements persistence.MeetingRepository using PostgreSQL.
type MeetingRepository struct {
	db  dbtx
	now func() time.Time
}

const meetingSelect = `
	SELECT m.id, m.title, m.start_time, m.end_time, m.created_at,
	       c.id, c.title, c.owner_username, c.created_at
	FROM meetings m
	JOIN calendars c ON c.id = m.calendar_id
`

func (r *MeetingRepository) CreateMeeting(ctx context.Context, meeting persistence.Meeting) (persistence.Meeting, error) {
	if meeting.Calendar.ID == 0 {
		return persistence.Meeting{}, persistence.ErrForeignKeyViolation
	}
	if meeting.CreatedAt.IsZero() {
		meeting.CreatedAt = r.now()
	}

	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO meetings (title, start_time, end_time, calendar_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		meeting.Title, meeting.Start.UTC(), meeting.End.UTC(), meeting.Calendar.ID, meeting.CreatedAt.UTC(),
	).Scan(&id)
	if err != nil {
		return persistence.Meeting{}, mapError(err)
	}
	return r.GetMeeting(ctx, id)
}

func (r *MeetingRepository) GetMeeting(ctx context.Context, id int64) (persistence.Meeting, error) {
	meeting, err := scanMeeting(r.db.QueryRow(ctx, meetingSelect+` WHERE m.id = $1`, id))
	return meeting, mapError(err)
}

func (r *MeetingRepository) ListMeetingsByCalendar(ctx context.Context, calendarID int64) ([]persistence.Meeting, error) {
	rows, err := r.db.Query(ctx, meetingSelect+` WHERE m.calendar_id = $1 ORDER BY m.start_time ASC, m.id ASC`, calendarID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	meetings := make([]persistence.Meeting, 0)
	for rows.Next() {
		meeting, err := scanMeeting(rows)
		if err != nil {
			return nil, mapError(err)
		}
		meetings = append(meetings, meeting)
	}
	return meetings, mapError(rows.Err())
}

func (r *MeetingRepository) DeleteMeeting(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM meetings WHERE id = $1`, id)
	if err != nil {
		return false, mapError(err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanMeeting(row pgx.Row) (persistence.Meeting, error) {
	var meeting persistence.Meeting
	err := row.Scan(
		&meeting.ID,
		&meeting.Title,
		&meeting.Start,
		&meeting.End,
		&meeting.CreatedAt,
		&meeting.Calendar.ID,
		&meeting.Calendar.Title,
		&meeting.Calendar.OwnerUsername,
		&meeting.Calendar.CreatedAt,
	)
	if err != nil {
		return persistence.Meeting{}, err
	}
	meeting.Start = meeting.Start.UTC()
	meeting.End = meeting.End.UTC()
	meeting.CreatedAt = meeting.CreatedAt.UTC()
	meeting.Calendar.CreatedAt = meeting.Calendar.CreatedAt.UTC()
	return meeting, nil
}
