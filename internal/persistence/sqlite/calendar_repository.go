package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/calendar-console/internal/persistence"
)

// CalendarRepository implements persistence.CalendarRepository using SQLite
type CalendarRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
	now    func() time.Time
}

// NewCalendarRepository creates a calendar repository bound to a pool or transaction.
func NewCalendarRepository(q queryer, now func() time.Time) *CalendarRepository {
	if now == nil {
		now = time.Now
	}
	return &CalendarRepository{
		helper: NewQueryHelper(q),
		mapper: NewErrorMapper(),
		now:    now,
	}
}

const calendarColumns = `id, title, owner_username, created_at`

// CreateCalendar inserts a calendar and returns it with the assigned ID
func (r *CalendarRepository) CreateCalendar(ctx context.Context, calendar persistence.Calendar) (persistence.Calendar, error) {
	if calendar.Title == "" || calendar.OwnerUsername == "" {
		return persistence.Calendar{}, persistence.ErrConstraintViolation
	}
	if calendar.CreatedAt.IsZero() {
		calendar.CreatedAt = r.now()
	}

	query := `
		INSERT INTO calendars (title, owner_username, created_at)
		VALUES (?, ?, ?)
	`

	result, err := r.helper.Exec(ctx, query,
		calendar.Title,
		calendar.OwnerUsername,
		formatTime(calendar.CreatedAt),
	)
	if err != nil {
		return persistence.Calendar{}, r.mapper.MapError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Calendar{}, fmt.Errorf("failed to get inserted calendar id: %w", err)
	}
	calendar.ID = id
	calendar.CreatedAt = calendar.CreatedAt.UTC().Truncate(time.Second)
	return calendar, nil
}

// GetCalendar retrieves a calendar by ID
func (r *CalendarRepository) GetCalendar(ctx context.Context, id int64) (persistence.Calendar, error) {
	query := `SELECT ` + calendarColumns + ` FROM calendars WHERE id = ?`
	return r.scanOne(r.helper.QueryRow(ctx, query, id))
}

// GetCalendarByTitle retrieves the calendar with an exact title owned by ownerUsername
func (r *CalendarRepository) GetCalendarByTitle(ctx context.Context, ownerUsername, title string) (persistence.Calendar, error) {
	query := `SELECT ` + calendarColumns + ` FROM calendars WHERE owner_username = ? AND title = ?`
	return r.scanOne(r.helper.QueryRow(ctx, query, ownerUsername, title))
}

// ListCalendarsByOwner returns the owner's calendars ordered by title then ID
func (r *CalendarRepository) ListCalendarsByOwner(ctx context.Context, ownerUsername string) ([]persistence.Calendar, error) {
	query := `
		SELECT ` + calendarColumns + `
		FROM calendars
		WHERE owner_username = ?
		ORDER BY title ASC, id ASC
	`

	rows, err := r.helper.Query(ctx, query, ownerUsername)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	calendars := make([]persistence.Calendar, 0)
	for rows.Next() {
		calendar, err := scanCalendar(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		calendars = append(calendars, calendar)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return calendars, nil
}

// DeleteCalendar removes a calendar by ID. Meetings must be removed first.
func (r *CalendarRepository) DeleteCalendar(ctx context.Context, id int64) error {
	result, err := r.helper.Exec(ctx, "DELETE FROM calendars WHERE id = ?", id)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (r *CalendarRepository) scanOne(row *sql.Row) (persistence.Calendar, error) {
	calendar, err := scanCalendar(row)
	if err != nil {
		return persistence.Calendar{}, r.mapper.MapError(err)
	}
	return calendar, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCalendar(row rowScanner) (persistence.Calendar, error) {
	var calendar persistence.Calendar
	var createdAtStr string

	if err := row.Scan(&calendar.ID, &calendar.Title, &calendar.OwnerUsername, &createdAtStr); err != nil {
		return persistence.Calendar{}, err
	}

	createdAt, err := parseTime(createdAtStr)
	if err != nil {
		return persistence.Calendar{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	calendar.CreatedAt = createdAt
	return calendar, nil
}
