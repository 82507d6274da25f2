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

// MeetingStore is the storage surface the meeting service needs.
type MeetingStore interface {
	persistence.MeetingRepository
	GetCalendar(ctx context.Context, id int64) (persistence.Calendar, error)
}

// MeetingService validates and persists meetings.
type MeetingService struct {
	meetings MeetingStore
	now      func() time.Time
	logger   *slog.Logger
}

// NewMeetingService wires dependencies for the meeting service.
func NewMeetingService(meetings MeetingStore, now func() time.Time) *MeetingService {
	return NewMeetingServiceWithLogger(meetings, now, nil)
}

// NewMeetingServiceWithLogger wires dependencies for the meeting service with a specified logger.
func NewMeetingServiceWithLogger(meetings MeetingStore, now func() time.Time, logger *slog.Logger) *MeetingService {
	if now == nil {
		now = time.Now
	}
	return &MeetingService{meetings: meetings, now: now, logger: defaultLogger(logger)}
}

func (s *MeetingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "MeetingService", operation, attrs...)
}

// CreateMeeting validates input and persists the meeting in its calendar.
// Overlaps with existing meetings are allowed.
func (s *MeetingService) CreateMeeting(ctx context.Context, input MeetingInput) (meeting Meeting, err error) {
	if s == nil {
		err = fmt.Errorf("MeetingService is nil")
		return
	}
	if s.meetings == nil {
		err = fmt.Errorf("meeting repository not configured")
		return
	}

	input.Title = strings.TrimSpace(input.Title)
	// Stored times keep whole seconds only.
	input.Start = input.Start.Truncate(time.Second)
	input.End = input.End.Truncate(time.Second)
	logger := s.loggerWith(ctx, "CreateMeeting",
		"title", input.Title,
		"calendar_id", input.CalendarID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "meeting creation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "meeting created", "meeting_id", meeting.ID)
	}()

	vErr := &ValidationError{}
	if input.Title == "" {
		vErr.add("title", "title is required")
	}
	vErr.merge(validateTimes(input.Start, input.End))
	if vErr.HasErrors() {
		err = vErr
		return
	}

	calendar, lookupErr := s.meetings.GetCalendar(ctx, input.CalendarID)
	if lookupErr != nil {
		err = storeError("get calendar", lookupErr)
		return
	}

	record, createErr := s.meetings.CreateMeeting(ctx, persistence.Meeting{
		Title:     input.Title,
		Start:     input.Start.UTC(),
		End:       input.End.UTC(),
		Calendar:  calendar,
		CreatedAt: s.now().UTC(),
	})
	if createErr != nil {
		if errors.Is(createErr, persistence.ErrForeignKeyViolation) {
			err = ErrNotFound
			return
		}
		err = storeError("create meeting", createErr)
		return
	}

	meeting = meetingFromRecord(record)
	return
}

// FindAllMeetingsByCalendarID returns the calendar's meetings ordered by start time.
// Each meeting carries its calendar.
func (s *MeetingService) FindAllMeetingsByCalendarID(ctx context.Context, calendarID int64) ([]Meeting, error) {
	if s == nil {
		return nil, fmt.Errorf("MeetingService is nil")
	}
	if s.meetings == nil {
		return nil, fmt.Errorf("meeting repository not configured")
	}

	records, err := s.meetings.ListMeetingsByCalendar(ctx, calendarID)
	if err != nil {
		return nil, storeError("list meetings", err)
	}

	out := make([]Meeting, 0, len(records))
	for _, record := range records {
		out = append(out, meetingFromRecord(record))
	}
	return out, nil
}

// DeleteMeeting removes a meeting by id and reports whether it existed.
func (s *MeetingService) DeleteMeeting(ctx context.Context, meetingID int64) (deleted bool, err error) {
	if s == nil {
		return false, fmt.Errorf("MeetingService is nil")
	}
	if s.meetings == nil {
		return false, fmt.Errorf("meeting repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteMeeting", "meeting_id", meetingID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "meeting deletion failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "meeting deletion finished", "deleted", deleted)
	}()

	deleted, err = s.meetings.DeleteMeeting(ctx, meetingID)
	if err != nil {
		deleted, err = false, storeError("delete meeting", err)
	}
	return
}

// DeleteMeetingInCalendar deletes the meeting only when it belongs to calendarID.
// A missing meeting or one from another calendar yields false.
func (s *MeetingService) DeleteMeetingInCalendar(ctx context.Context, calendarID, meetingID int64) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("MeetingService is nil")
	}
	if s.meetings == nil {
		return false, fmt.Errorf("meeting repository not configured")
	}

	record, err := s.meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return false, nil
		}
		return false, storeError("get meeting", err)
	}
	if record.Calendar.ID != calendarID {
		s.loggerWith(ctx, "DeleteMeetingInCalendar",
			"meeting_id", meetingID,
			"calendar_id", calendarID,
		).WarnContext(ctx, "meeting belongs to another calendar")
		return false, nil
	}

	return s.DeleteMeeting(ctx, meetingID)
}
