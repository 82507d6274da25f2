package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/calendar-console/internal/persistence"
)

// MeetingRepository implements persistence.MeetingRepository using SQLite.
// Every read joins the owning calendar.
type MeetingRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
	now    func() time.Time
}

// NewMeetingRepository creates a meeting repository bound to a pool or transaction.
func NewMeetingRepository(q queryer, now func() time.Time) *MeetingRepository {
	if now == nil {
		now = time.Now
	}
	return &MeetingRepository{
		helper: NewQueryHelper(q),
		mapper: NewErrorMapper(),
		now:    now,
	}
}

const meetingSelect = `
	SELECT m.id, m.title, m.start_time, m.end_time, m.created_at,
	       c.id, c.title, c.owner_username, c.created_at
	FROM meetings m
	JOIN calendars c ON c.id = m.calendar_id
`

// CreateMeeting inserts a meeting and returns it with its ID and calendar populated
func (r *MeetingRepository) CreateMeeting(ctx context.Context, meeting persistence.Meeting) (persistence.Meeting, error) {
	if meeting.Calendar.ID == 0 {
		return persistence.Meeting{}, persistence.ErrForeignKeyViolation
	}
	if meeting.CreatedAt.IsZero() {
		meeting.CreatedAt = r.now()
	}

	query := `
		INSERT INTO meetings (title, start_time, end_time, calendar_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.helper.Exec(ctx, query,
		meeting.Title,
		formatTime(meeting.Start),
		formatTime(meeting.End),
		meeting.Calendar.ID,
		formatTime(meeting.CreatedAt),
	)
	if err != nil {
		return persistence.Meeting{}, r.mapper.MapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Meeting{}, fmt.Errorf("failed to get inserted meeting id: %w", err)
	}
	return r.GetMeeting(ctx, id)
}

// GetMeeting retrieves a meeting by ID
func (r *MeetingRepository) GetMeeting(ctx context.Context, id int64) (persistence.Meeting, error) {
	meeting, err := scanMeeting(r.helper.QueryRow(ctx, meetingSelect+` WHERE m.id = ?`, id))
	if err != nil {
		return persistence.Meeting{}, r.mapper.MapError(err)
	}
	return meeting, nil
}

// ListMeetingsByCalendar returns the calendar's meetings ordered by start time then ID
func (r *MeetingRepository) ListMeetingsByCalendar(ctx context.Context, calendarID int64) ([]persistence.Meeting, error) {
	query := meetingSelect + `
		WHERE m.calendar_id = ?
		ORDER BY m.start_time ASC, m.id ASC
	`

	rows, err := r.helper.Query(ctx, query, calendarID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	meetings := make([]persistence.Meeting, 0)
	for rows.Next() {
		meeting, err := scanMeeting(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		meetings = append(meetings, meeting)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return meetings, nil
}

// DeleteMeeting removes a meeting by ID and reports whether a row was deleted
func (r *MeetingRepository) DeleteMeeting(ctx context.Context, id int64) (bool, error) {
	result, err := r.helper.Exec(ctx, "DELETE FROM meetings WHERE id = ?", id)
	if err != nil {
		return false, r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

func scanMeeting(row rowScanner) (persistence.Meeting, error) {
	var meeting persistence.Meeting
	var startStr, endStr, createdAtStr, calendarCreatedAtStr string

	err := row.Scan(
		&meeting.ID,
		&meeting.Title,
		&startStr,
		&endStr,
		&createdAtStr,
		&meeting.Calendar.ID,
		&meeting.Calendar.Title,
		&meeting.Calendar.OwnerUsername,
		&calendarCreatedAtStr,
	)
	if err != nil {
		return persistence.Meeting{}, err
	}

	if meeting.Start, err = parseTime(startStr); err != nil {
		return persistence.Meeting{}, fmt.Errorf("failed to parse start_time: %w", err)
	}
	if meeting.End, err = parseTime(endStr); err != nil {
		return persistence.Meeting{}, fmt.Errorf("failed to parse end_time: %w", err)
	}
	if meeting.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.Meeting{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if meeting.Calendar.CreatedAt, err = parseTime(calendarCreatedAtStr); err != nil {
		return persistence.Meeting{}, fmt.Errorf("failed to parse calendar created_at: %w", err)
	}
	return meeting, nil
}
