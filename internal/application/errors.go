package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/example/calendar-console/internal/persistence"
)

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrInvalidCredentials is returned when a password does not match the stored hash.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrAlreadyExists is returned when a unique resource is created twice.
	ErrAlreadyExists = errors.New("application: already exists")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// NewValidationError returns a ValidationError holding a single field issue.
func NewValidationError(field, message string) *ValidationError {
	vErr := &ValidationError{}
	vErr.add(field, message)
	return vErr
}

// Error implements the error interface. Field messages are sorted by field name.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}

	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, v.FieldErrors[field]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}

// PersistenceError wraps an unexpected storage failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Cascade steps reported by CascadeError.
const (
	CascadeStepLoadCalendar   = "load calendar"
	CascadeStepListMeetings   = "list meetings"
	CascadeStepDeleteMeeting  = "delete meeting"
	CascadeStepDeleteCalendar = "delete calendar"
)

// CascadeError reports the step at which a calendar cascade delete failed.
// The cascade runs in one transaction, so nothing it did before the failure is kept.
type CascadeError struct {
	CalendarID      int64
	Step            string
	MeetingsDeleted int
	Err             error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("delete calendar %d: %s failed after %d meeting(s) (rolled back): %v",
		e.CalendarID, e.Step, e.MeetingsDeleted, e.Err)
}

func (e *CascadeError) Unwrap() error {
	return e.Err
}

// storeError translates persistence errors into the application taxonomy.
func storeError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return fmt.Errorf("%s: %w", op, ErrAlreadyExists)
	default:
		return &PersistenceError{Op: op, Err: err}
	}
}
