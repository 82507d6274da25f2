package console

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/example/calendar-console/internal/application"
)

const productID = "-//calendar-console//EN"

// Exporter writes calendars as iCalendar files.
type Exporter struct {
	dir string
	now func() time.Time
}

// NewExporter writes into dir ("." when empty).
func NewExporter(dir string, now func() time.Time) *Exporter {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	if now == nil {
		now = time.Now
	}
	return &Exporter{dir: dir, now: now}
}

// MeetingUID is stable for a given calendar and meeting id.
func MeetingUID(calendarID, meetingID int64) string {
	name := fmt.Sprintf("calendar-console:calendar:%d:meeting:%d", calendarID, meetingID)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// BuildICS renders calendar and its meetings as a VCALENDAR with one VEVENT per meeting.
func BuildICS(calendar application.Calendar, meetings []application.Meeting, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(calendar.Title)

	for _, meeting := range meetings {
		event := cal.AddEvent(MeetingUID(calendar.ID, meeting.ID))
		event.SetDtStampTime(stamp.UTC())
		event.SetCreatedTime(meeting.CreatedAt.UTC())
		event.SetStartAt(meeting.Start.UTC())
		event.SetEndAt(meeting.End.UTC())
		event.SetSummary(meeting.Title)
	}
	return cal
}

// WriteICS serializes the calendar to w.
func WriteICS(w io.Writer, calendar application.Calendar, meetings []application.Meeting, stamp time.Time) error {
	return BuildICS(calendar, meetings, stamp).SerializeTo(w)
}

// Export writes <dir>/<title>.ics and returns its path. The file is replaced atomically.
func (e *Exporter) Export(calendar application.Calendar, meetings []application.Meeting) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(e.dir, exportFileName(calendar.Title, calendar.ID))
	tmp, err := os.CreateTemp(e.dir, ".calendar-export-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := WriteICS(tmp, calendar, meetings, e.now()); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write export file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close export file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("rename export file: %w", err)
	}
	return path, nil
}

// exportFileName keeps the calendar id in the name so titles that sanitize to
// the same text do not overwrite each other.
func exportFileName(title string, id int64) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(title))
	if name == "" {
		name = "calendar"
	}
	return fmt.Sprintf("%s-%d.ics", name, id)
}
