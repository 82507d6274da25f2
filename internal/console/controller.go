package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/example/calendar-console/internal/application"
	"github.com/example/calendar-console/internal/logging"
	"github.com/example/calendar-console/internal/session"
)

// ErrUnexpected wraps a panic recovered while running a command.
var ErrUnexpected = errors.New("console: unexpected failure")

type userService interface {
	CreateUser(ctx context.Context, params application.CreateUserParams) (application.RegisterResult, error)
	Authenticate(ctx context.Context, username, password string) (bool, error)
}

type calendarService interface {
	CreateCalendar(ctx context.Context, title, ownerUsername string) (application.Calendar, error)
	FindCalendarsByUsername(ctx context.Context, username string) ([]application.Calendar, error)
	FindByTitleAndUsername(ctx context.Context, title, username string) (application.Calendar, bool, error)
	DeleteCalendar(ctx context.Context, calendarID int64) (application.CascadeResult, error)
}

type meetingService interface {
	CreateMeeting(ctx context.Context, input application.MeetingInput) (application.Meeting, error)
	FindAllMeetingsByCalendarID(ctx context.Context, calendarID int64) ([]application.Meeting, error)
	DeleteMeetingInCalendar(ctx context.Context, calendarID, meetingID int64) (bool, error)
}

// Services are the application operations the console drives.
type Services struct {
	Users     userService
	Calendars calendarService
	Meetings  meetingService
}

// Options tune a Controller. Zero values pick defaults.
type Options struct {
	Session  *session.Session
	Exporter *Exporter
	Location *time.Location
	Logger   *slog.Logger
}

// Controller reads commands and dispatches them to handlers.
type Controller struct {
	services Services
	session  *session.Session
	exporter *Exporter
	prompt   *Prompter
	view     *View
	loc      *time.Location
	logger   *slog.Logger
}

func NewController(services Services, in io.Reader, out io.Writer, opts Options) *Controller {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sess := opts.Session
	if sess == nil {
		sess = session.New(session.WithLogger(logger))
	}
	exporter := opts.Exporter
	if exporter == nil {
		exporter = NewExporter(".", nil)
	}
	return &Controller{
		services: services,
		session:  sess,
		exporter: exporter,
		prompt:   NewPrompter(in, out),
		view:     NewView(out, loc),
		loc:      loc,
		logger:   logger,
	}
}

// Session exposes the controller's session.
func (c *Controller) Session() *session.Session {
	return c.session
}

// Run processes commands until exit, end of input, or ctx cancellation.
// A panic inside a command is reported and returned as ErrUnexpected.
func (c *Controller) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.ErrorContext(ctx, "unexpected failure", "session_id", c.session.ID(), "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			c.view.Error("Unexpected error. The application will exit.")
			c.session.Exit(ctx)
			err = fmt.Errorf("%w: %v", ErrUnexpected, r)
		}
	}()

	c.logger.InfoContext(ctx, "console session started", "session_id", c.session.ID())
	for !c.session.IsTerminated() {
		if err := ctx.Err(); err != nil {
			c.session.Exit(ctx)
			return err
		}

		c.view.Menu(c.session.Username())
		line, readErr := c.prompt.Ask("> ")
		if readErr != nil {
			c.session.Exit(ctx)
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return fmt.Errorf("read command: %w", readErr)
		}
		if line == "" {
			continue
		}

		cmd, ok := ParseCommand(line)
		if !ok {
			c.view.Warning("Invalid choice. Please select a valid option.")
			continue
		}
		if err := c.Execute(ctx, cmd); err != nil {
			c.session.Exit(ctx)
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
	return nil
}

// Execute runs one command. Command failures are reported to the user and
// logged; only input failures are returned.
func (c *Controller) Execute(ctx context.Context, cmd Command) error {
	logger := c.logger.With("session_id", c.session.ID(), "command", cmd.Name)
	ctx = logging.ContextWithLogger(ctx, logger)

	if cmd.RequiresLogin {
		if _, err := c.session.RequireLogin(); err != nil {
			logger.WarnContext(ctx, "command refused", "error_kind", "not_logged_in")
			c.view.Warning("You need to login first.")
			return nil
		}
	}

	var err error
	switch cmd.Name {
	case CommandRegister:
		err = c.register(ctx)
	case CommandLogin:
		err = c.login(ctx)
	case CommandCreateCalendar:
		err = c.createCalendar(ctx)
	case CommandCreateMeeting:
		err = c.createMeeting(ctx)
	case CommandDeleteMeeting:
		err = c.deleteMeeting(ctx)
	case CommandDeleteCalendar:
		err = c.deleteCalendar(ctx)
	case CommandDisplayCalendar:
		err = c.displayCalendar(ctx)
	case CommandLogout:
		err = c.logout(ctx)
	case CommandExit:
		c.session.Exit(ctx)
		c.view.Message("Goodbye.")
	case CommandExportCalendar:
		err = c.exportCalendar(ctx)
	case CommandHelp:
		c.view.Menu(c.session.Username())
	default:
		c.view.Warning("Invalid choice. Please select a valid option.")
	}

	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) {
		return err
	}
	c.handleError(ctx, logger, err)
	return nil
}

func (c *Controller) handleError(ctx context.Context, logger *slog.Logger, err error) {
	var vErr *application.ValidationError
	var cErr *application.CascadeError
	switch {
	case errors.As(err, &vErr):
		c.view.Error("Invalid input: %s", strings.Join(fieldMessages(vErr), "; "))
	case errors.Is(err, session.ErrNotLoggedIn):
		c.view.Warning("You need to login first.")
	case errors.Is(err, application.ErrNotFound):
		c.view.Warning("Not found.")
	case errors.As(err, &cErr):
		logger.ErrorContext(ctx, "cascade delete failed", "error", err, "error_kind", application.ErrorKind(err), "step", cErr.Step)
		c.view.Error("Failed to delete calendar at step %q. Nothing was deleted.", cErr.Step)
	default:
		logger.ErrorContext(ctx, "command failed", "error", err, "error_kind", application.ErrorKind(err))
		c.view.Error("Operation failed. See the log for details.")
	}
}
