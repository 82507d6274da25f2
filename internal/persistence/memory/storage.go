// Package memory provides an in-process persistence backend.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/calendar-console/internal/persistence"
)

var _ persistence.Store = (*Storage)(nil)

// Storage keeps users, calendars, and meetings in maps guarded by a single lock.
type Storage struct {
	mu    sync.RWMutex
	state state
	now   func() time.Time
}

type state struct {
	users          map[string]persistence.User
	calendars      map[int64]persistence.Calendar
	meetings       map[int64]persistence.Meeting
	nextCalendarID int64
	nextMeetingID  int64
}

// New returns an empty Storage. A nil now defaults to time.Now.
func New(now func() time.Time) *Storage {
	if now == nil {
		now = time.Now
	}
	return &Storage{
		state: state{
			users:     make(map[string]persistence.User),
			calendars: make(map[int64]persistence.Calendar),
			meetings:  make(map[int64]persistence.Meeting),
		},
		now: now,
	}
}

// Close releases resources held by the storage. No-op for the in-memory implementation.
func (s *Storage) Close() error {
	return nil
}

// --- UserRepository implementation ---

// CreateUser stores a new user.
func (s *Storage) CreateUser(ctx context.Context, user persistence.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.Username == "" || user.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}
	if _, ok := s.state.users[user.Username]; ok {
		return fmt.Errorf("memory: user %s: %w", user.Username, persistence.ErrDuplicate)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now().UTC()
	}
	s.state.users[user.Username] = user
	return nil
}

// GetUser retrieves a user by username.
func (s *Storage) GetUser(ctx context.Context, username string) (persistence.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.state.users[username]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

// --- CalendarRepository implementation ---

// CreateCalendar stores a calendar and assigns its identifier.
func (s *Storage) CreateCalendar(ctx context.Context, calendar persistence.Calendar) (persistence.Calendar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.createCalendar(calendar, s.now())
}

// GetCalendar retrieves a calendar by ID.
func (s *Storage) GetCalendar(ctx context.Context, id int64) (persistence.Calendar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.getCalendar(id)
}

// GetCalendarByTitle retrieves the calendar with an exact title owned by ownerUsername.
func (s *Storage) GetCalendarByTitle(ctx context.Context, ownerUsername, title string) (persistence.Calendar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.getCalendarByTitle(ownerUsername, title)
}

// ListCalendarsByOwner returns the owner's calendars ordered by title.
func (s *Storage) ListCalendarsByOwner(ctx context.Context, ownerUsername string) ([]persistence.Calendar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.listCalendarsByOwner(ownerUsername), nil
}

// DeleteCalendar removes a calendar. Calendars still referenced by meetings are rejected.
func (s *Storage) DeleteCalendar(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.deleteCalendar(id)
}

// --- MeetingRepository implementation ---

// CreateMeeting stores a meeting and assigns its identifier.
func (s *Storage) CreateMeeting(ctx context.Context, meeting persistence.Meeting) (persistence.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.createMeeting(meeting, s.now())
}

// GetMeeting retrieves a meeting by ID with its calendar attached.
func (s *Storage) GetMeeting(ctx context.Context, id int64) (persistence.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.getMeeting(id)
}

// ListMeetingsByCalendar returns the calendar's meetings ordered by start time.
func (s *Storage) ListMeetingsByCalendar(ctx context.Context, calendarID int64) ([]persistence.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.listMeetingsByCalendar(calendarID), nil
}

// DeleteMeeting removes a meeting and reports whether it existed.
func (s *Storage) DeleteMeeting(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.deleteMeeting(id), nil
}

// --- UnitOfWork implementation ---

// WithinTransaction runs fn while holding the storage lock. The state is
// snapshotted first and restored when fn fails. fn must only use repos;
// calling the Storage methods from inside fn deadlocks.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos persistence.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	tx := &txRepositories{state: &s.state, now: s.now}
	if err := fn(ctx, persistence.Repositories{Calendars: tx, Meetings: tx}); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

type txRepositories struct {
	state *state
	now   func() time.Time
}

func (t *txRepositories) CreateCalendar(ctx context.Context, calendar persistence.Calendar) (persistence.Calendar, error) {
	return t.state.createCalendar(calendar, t.now())
}

func (t *txRepositories) GetCalendar(ctx context.Context, id int64) (persistence.Calendar, error) {
	return t.state.getCalendar(id)
}

func (t *txRepositories) GetCalendarByTitle(ctx context.Context, ownerUsername, title string) (persistence.Calendar, error) {
	return t.state.getCalendarByTitle(ownerUsername, title)
}

func (t *txRepositories) ListCalendarsByOwner(ctx context.Context, ownerUsername string) ([]persistence.Calendar, error) {
	return t.state.listCalendarsByOwner(ownerUsername), nil
}

func (t *txRepositories) DeleteCalendar(ctx context.Context, id int64) error {
	return t.state.deleteCalendar(id)
}

func (t *txRepositories) CreateMeeting(ctx context.Context, meeting persistence.Meeting) (persistence.Meeting, error) {
	return t.state.createMeeting(meeting, t.now())
}

func (t *txRepositories) GetMeeting(ctx context.Context, id int64) (persistence.Meeting, error) {
	return t.state.getMeeting(id)
}

func (t *txRepositories) ListMeetingsByCalendar(ctx context.Context, calendarID int64) ([]persistence.Meeting, error) {
	return t.state.listMeetingsByCalendar(calendarID), nil
}

func (t *txRepositories) DeleteMeeting(ctx context.Context, id int64) (bool, error) {
	return t.state.deleteMeeting(id), nil
}

// --- state helpers; callers hold the lock ---

func (st *state) createCalendar(calendar persistence.Calendar, now time.Time) (persistence.Calendar, error) {
	if calendar.Title == "" || calendar.OwnerUsername == "" {
		return persistence.Calendar{}, persistence.ErrConstraintViolation
	}
	if _, ok := st.users[calendar.OwnerUsername]; !ok {
		return persistence.Calendar{}, fmt.Errorf("memory: owner %s does not exist: %w", calendar.OwnerUsername, persistence.ErrForeignKeyViolation)
	}
	if _, err := st.getCalendarByTitle(calendar.OwnerUsername, calendar.Title); err == nil {
		return persistence.Calendar{}, fmt.Errorf("memory: calendar %q for %s: %w", calendar.Title, calendar.OwnerUsername, persistence.ErrDuplicate)
	}

	st.nextCalendarID++
	calendar.ID = st.nextCalendarID
	if calendar.CreatedAt.IsZero() {
		calendar.CreatedAt = now.UTC()
	}
	st.calendars[calendar.ID] = calendar
	return calendar, nil
}

func (st *state) getCalendar(id int64) (persistence.Calendar, error) {
	calendar, ok := st.calendars[id]
	if !ok {
		return persistence.Calendar{}, persistence.ErrNotFound
	}
	return calendar, nil
}

func (st *state) getCalendarByTitle(ownerUsername, title string) (persistence.Calendar, error) {
	for _, calendar := range st.calendars {
		if calendar.OwnerUsername == ownerUsername && calendar.Title == title {
			return calendar, nil
		}
	}
	return persistence.Calendar{}, persistence.ErrNotFound
}

func (st *state) listCalendarsByOwner(ownerUsername string) []persistence.Calendar {
	calendars := make([]persistence.Calendar, 0)
	for _, calendar := range st.calendars {
		if calendar.OwnerUsername == ownerUsername {
			calendars = append(calendars, calendar)
		}
	}

	sort.Slice(calendars, func(i, j int) bool {
		if calendars[i].Title == calendars[j].Title {
			return calendars[i].ID < calendars[j].ID
		}
		return calendars[i].Title < calendars[j].Title
	})
	return calendars
}

func (st *state) deleteCalendar(id int64) error {
	if _, ok := st.calendars[id]; !ok {
		return persistence.ErrNotFound
	}
	for _, meeting := range st.meetings {
		if meeting.Calendar.ID == id {
			return fmt.Errorf("memory: calendar %d still has meetings: %w", id, persistence.ErrForeignKeyViolation)
		}
	}
	delete(st.calendars, id)
	return nil
}

func (st *state) createMeeting(meeting persistence.Meeting, now time.Time) (persistence.Meeting, error) {
	calendar, ok := st.calendars[meeting.Calendar.ID]
	if !ok {
		return persistence.Meeting{}, fmt.Errorf("memory: calendar %d does not exist: %w", meeting.Calendar.ID, persistence.ErrForeignKeyViolation)
	}
	if !meeting.Start.Before(meeting.End) {
		return persistence.Meeting{}, persistence.ErrConstraintViolation
	}

	st.nextMeetingID++
	meeting.ID = st.nextMeetingID
	meeting.Calendar = calendar
	if meeting.CreatedAt.IsZero() {
		meeting.CreatedAt = now.UTC()
	}
	st.meetings[meeting.ID] = meeting
	return meeting, nil
}

func (st *state) getMeeting(id int64) (persistence.Meeting, error) {
	meeting, ok := st.meetings[id]
	if !ok {
		return persistence.Meeting{}, persistence.ErrNotFound
	}
	return st.attachCalendar(meeting), nil
}

func (st *state) listMeetingsByCalendar(calendarID int64) []persistence.Meeting {
	meetings := make([]persistence.Meeting, 0)
	for _, meeting := range st.meetings {
		if meeting.Calendar.ID == calendarID {
			meetings = append(meetings, st.attachCalendar(meeting))
		}
	}

	sort.Slice(meetings, func(i, j int) bool {
		if meetings[i].Start.Equal(meetings[j].Start) {
			return meetings[i].ID < meetings[j].ID
		}
		return meetings[i].Start.Before(meetings[j].Start)
	})
	return meetings
}

func (st *state) deleteMeeting(id int64) bool {
	if _, ok := st.meetings[id]; !ok {
		return false
	}
	delete(st.meetings, id)
	return true
}

// attachCalendar refreshes the joined calendar so reads never carry a stale copy.
func (st *state) attachCalendar(meeting persistence.Meeting) persistence.Meeting {
	if calendar, ok := st.calendars[meeting.Calendar.ID]; ok {
		meeting.Calendar = calendar
	}
	return meeting
}

func (st *state) clone() state {
	out := state{
		users:          make(map[string]persistence.User, len(st.users)),
		calendars:      make(map[int64]persistence.Calendar, len(st.calendars)),
		meetings:       make(map[int64]persistence.Meeting, len(st.meetings)),
		nextCalendarID: st.nextCalendarID,
		nextMeetingID:  st.nextMeetingID,
	}
	for k, v := range st.users {
		out.users[k] = v
	}
	for k, v := range st.calendars {
		out.calendars[k] = v
	}
	for k, v := range st.meetings {
		out.meetings[k] = v
	}
	return out
}
