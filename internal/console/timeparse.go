package console

import (
	"strconv"
	"strings"
	"time"

	"github.com/example/calendar-console/internal/application"
)

// DisplayLayout is used for every time the console prints.
const DisplayLayout = "2006-01-02 15:04"

var localLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseTime accepts DisplayLayout, its "T" separated form, or RFC 3339.
// Values without an offset are read in loc.
func ParseTime(field, value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, application.NewValidationError(field, field+" time is required")
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, application.NewValidationError(field, "expected a time like 2024-01-01 09:00")
}

// ParseID parses a numeric identifier.
func ParseID(field, value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, application.NewValidationError(field, field+" must be a positive number")
	}
	return id, nil
}
