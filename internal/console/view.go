package console

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/example/calendar-console/internal/application"
)

// Line prefixes written by View.
const (
	prefixSuccess = "[OK] "
	prefixWarning = "[WARN] "
	prefixError   = "[ERROR] "
)

// View renders console output.
type View struct {
	out io.Writer
	loc *time.Location
}

// NewView renders to out, printing times in loc.
func NewView(out io.Writer, loc *time.Location) *View {
	if loc == nil {
		loc = time.Local
	}
	return &View{out: out, loc: loc}
}

func (v *View) Message(format string, args ...any) {
	fmt.Fprintf(v.out, format+"\n", args...)
}

func (v *View) Success(format string, args ...any) {
	fmt.Fprintf(v.out, prefixSuccess+format+"\n", args...)
}

func (v *View) Warning(format string, args ...any) {
	fmt.Fprintf(v.out, prefixWarning+format+"\n", args...)
}

func (v *View) Error(format string, args ...any) {
	fmt.Fprintf(v.out, prefixError+format+"\n", args...)
}

// Menu prints the command list. username is empty when nobody is logged in.
func (v *View) Menu(username string) {
	var b strings.Builder
	b.WriteString("\n=== Calendar ===")
	if username != "" {
		fmt.Fprintf(&b, " (%s)", username)
	}
	b.WriteString("\n")
	for _, cmd := range commands {
		if cmd.Index < 0 {
			fmt.Fprintf(&b, "   %-18s %s\n", cmd.Name, cmd.Description)
			continue
		}
		fmt.Fprintf(&b, "%d. %-18s %s\n", cmd.Index, cmd.Name, cmd.Description)
	}
	fmt.Fprint(v.out, b.String())
}

// User prints a freshly registered user. The plaintext password is shown once.
func (v *View) User(result application.RegisterResult) {
	v.Message("Username: %s", result.User.Username)
	v.Message("Password: %s", result.Password)
	v.Message("Hashed password: %s", result.User.PasswordHash)
}

func (v *View) Calendar(calendar application.Calendar) {
	v.Message("Calendar #%d: %s (owner: %s)", calendar.ID, calendar.Title, calendar.OwnerUsername)
}

// CalendarTitles lists calendars one title per line.
func (v *View) CalendarTitles(calendars []application.Calendar) {
	for _, calendar := range calendars {
		v.Success("%s", calendar.Title)
	}
}

// MeetingIndex lists meetings as "id  title" for selection.
func (v *View) MeetingIndex(meetings []application.Meeting) {
	for _, meeting := range meetings {
		v.Success("%d  %s", meeting.ID, meeting.Title)
	}
}

func (v *View) Meetings(meetings []application.Meeting) {
	if len(meetings) == 0 {
		v.Message("No meetings.")
		return
	}
	for _, meeting := range meetings {
		v.Message("Meeting #%d: %s | %s - %s | calendar: %s",
			meeting.ID,
			meeting.Title,
			meeting.Start.In(v.loc).Format(DisplayLayout),
			meeting.End.In(v.loc).Format(DisplayLayout),
			meeting.Calendar.Title,
		)
	}
}

// fieldMessages returns the validation messages ordered by field.
func fieldMessages(vErr *application.ValidationError) []string {
	fields := make([]string, 0, len(vErr.FieldErrors))
	for field := range vErr.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	out := make([]string, 0, len(fields))
	for _, field := range fields {
		out = append(out, vErr.FieldErrors[field])
	}
	return out
}
