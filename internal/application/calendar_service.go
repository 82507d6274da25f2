package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/calendar-console/internal/persistence"
)

// CalendarStore is the storage surface the calendar service needs.
type CalendarStore interface {
	persistence.CalendarRepository
	persistence.UnitOfWork
}

// CalendarService manages calendars and the cascade delete of their meetings.
type CalendarService struct {
	calendars CalendarStore
	now       func() time.Time
	logger    *slog.Logger
}

// NewCalendarService wires dependencies for the calendar service.
func NewCalendarService(calendars CalendarStore, now func() time.Time) *CalendarService {
	return NewCalendarServiceWithLogger(calendars, now, nil)
}

// NewCalendarServiceWithLogger wires dependencies for the calendar service with a specified logger.
func NewCalendarServiceWithLogger(calendars CalendarStore, now func() time.Time, logger *slog.Logger) *CalendarService {
	if now == nil {
		now = time.Now
	}
	return &CalendarService{calendars: calendars, now: now, logger: defaultLogger(logger)}
}

func (s *CalendarService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CalendarService", operation, attrs...)
}

// CreateCalendar persists a calendar owned by ownerUsername. Titles are
// trimmed and must be unique per owner.
func (s *CalendarService) CreateCalendar(ctx context.Context, title, ownerUsername string) (calendar Calendar, err error) {
	if s == nil {
		err = fmt.Errorf("CalendarService is nil")
		return
	}
	if s.calendars == nil {
		err = fmt.Errorf("calendar repository not configured")
		return
	}

	title = strings.TrimSpace(title)
	ownerUsername = strings.TrimSpace(ownerUsername)
	logger := s.loggerWith(ctx, "CreateCalendar", "title", title, "owner", ownerUsername)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "calendar creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "calendar created", "calendar_id", calendar.ID)
	}()

	vErr := &ValidationError{}
	if title == "" {
		vErr.add("title", "title is required")
	}
	if ownerUsername == "" {
		vErr.add("owner", "owner is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	_, lookupErr := s.calendars.GetCalendarByTitle(ctx, ownerUsername, title)
	switch {
	case lookupErr == nil:
		err = NewValidationError("title", "a calendar with this title already exists")
		return
	case !errors.Is(lookupErr, persistence.ErrNotFound):
		err = storeError("get calendar by title", lookupErr)
		return
	}

	record, createErr := s.calendars.CreateCalendar(ctx, persistence.Calendar{
		Title:         title,
		OwnerUsername: ownerUsername,
		CreatedAt:     s.now().UTC(),
	})
	switch {
	case createErr == nil:
	case errors.Is(createErr, persistence.ErrDuplicate):
		err = NewValidationError("title", "a calendar with this title already exists")
		return
	case errors.Is(createErr, persistence.ErrForeignKeyViolation):
		err = NewValidationError("owner", "owner does not exist")
		return
	default:
		err = storeError("create calendar", createErr)
		return
	}

	calendar = calendarFromRecord(record)
	return
}

// FindCalendarsByUsername returns every calendar owned by username, ordered by title.
func (s *CalendarService) FindCalendarsByUsername(ctx context.Context, username string) ([]Calendar, error) {
	if s == nil {
		return nil, fmt.Errorf("CalendarService is nil")
	}
	if s.calendars == nil {
		return nil, fmt.Errorf("calendar repository not configured")
	}

	records, err := s.calendars.ListCalendarsByOwner(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, storeError("list calendars", err)
	}

	out := make([]Calendar, 0, len(records))
	for _, record := range records {
		out = append(out, calendarFromRecord(record))
	}
	return out, nil
}

// FindByTitleAndUsername looks up a calendar by exact title. Absence is reported
// through the boolean, not an error.
func (s *CalendarService) FindByTitleAndUsername(ctx context.Context, title, username string) (Calendar, bool, error) {
	if s == nil {
		return Calendar{}, false, fmt.Errorf("CalendarService is nil")
	}
	if s.calendars == nil {
		return Calendar{}, false, fmt.Errorf("calendar repository not configured")
	}

	record, err := s.calendars.GetCalendarByTitle(ctx, strings.TrimSpace(username), strings.TrimSpace(title))
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Calendar{}, false, nil
		}
		return Calendar{}, false, storeError("get calendar by title", err)
	}
	return calendarFromRecord(record), true, nil
}

// DeleteCalendar deletes every meeting of the calendar and then the calendar
// itself inside one transaction. On failure nothing is deleted and the error
// is a *CascadeError naming the failed step. An unknown id yields ErrNotFound.
func (s *CalendarService) DeleteCalendar(ctx context.Context, calendarID int64) (result CascadeResult, err error) {
	if s == nil {
		err = fmt.Errorf("CalendarService is nil")
		return
	}
	if s.calendars == nil {
		err = fmt.Errorf("calendar repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "DeleteCalendar", "calendar_id", calendarID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "calendar deletion failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "calendar deleted", "meetings_deleted", result.MeetingsDeleted)
	}()

	var outcome CascadeResult
	txErr := s.calendars.WithinTransaction(ctx, func(ctx context.Context, repos persistence.Repositories) error {
		fail := func(step string, cause error) error {
			return &CascadeError{
				CalendarID:      calendarID,
				Step:            step,
				MeetingsDeleted: outcome.MeetingsDeleted,
				Err:             storeError(step, cause),
			}
		}

		record, err := repos.Calendars.GetCalendar(ctx, calendarID)
		if err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				return ErrNotFound
			}
			return fail(CascadeStepLoadCalendar, err)
		}
		outcome.Calendar = calendarFromRecord(record)

		meetings, err := repos.Meetings.ListMeetingsByCalendar(ctx, calendarID)
		if err != nil {
			return fail(CascadeStepListMeetings, err)
		}

		for _, meeting := range meetings {
			deleted, err := repos.Meetings.DeleteMeeting(ctx, meeting.ID)
			if err != nil {
				return fail(CascadeStepDeleteMeeting, err)
			}
			if !deleted {
				return fail(CascadeStepDeleteMeeting, fmt.Errorf("meeting %d vanished: %w", meeting.ID, persistence.ErrNotFound))
			}
			outcome.MeetingsDeleted++
		}

		if err := repos.Calendars.DeleteCalendar(ctx, calendarID); err != nil {
			return fail(CascadeStepDeleteCalendar, err)
		}
		return nil
	})
	if txErr != nil {
		var cErr *CascadeError
		if errors.Is(txErr, ErrNotFound) || errors.As(txErr, &cErr) {
			err = txErr
			return
		}
		err = &CascadeError{CalendarID: calendarID, Step: "commit", MeetingsDeleted: outcome.MeetingsDeleted, Err: storeError("commit", txErr)}
		return
	}

	result = outcome
	return
}
