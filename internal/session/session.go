// Package session holds the login state of one console session.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/example/calendar-console/internal/application"
	"github.com/example/calendar-console/internal/logging"
)

var (
	ErrNotLoggedIn     = errors.New("not logged in")
	ErrAlreadyLoggedIn = errors.New("already logged in")
	ErrTooManyAttempts = errors.New("too many failed login attempts")
	ErrTerminated      = errors.New("session terminated")
)

// State is a step of the session lifecycle.
type State int

const (
	LoggedOut State = iota
	LoggedIn
	Terminated
)

func (s State) String() string {
	switch s {
	case LoggedOut:
		return "logged_out"
	case LoggedIn:
		return "logged_in"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Authenticator verifies a username and password pair.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (bool, error)
}

// Session tracks who is logged in. It is not safe for concurrent use; each
// console owns exactly one.
type Session struct {
	id       string
	state    State
	username string
	limiter  *rate.Limiter
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithID overrides the generated session id.
func WithID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

// WithLoginLimit allows perMinute failed logins per minute. Zero disables the limit.
func WithLoginLimit(perMinute int) Option {
	return func(s *Session) {
		if perMinute <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
}

// WithClock sets the time source used for login throttling.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger used when the context carries none.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New returns a logged out session with a random id.
func New(opts ...Option) *Session {
	s := &Session{
		id:     uuid.NewString(),
		state:  LoggedOut,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) ID() string       { return s.id }
func (s *Session) State() State     { return s.state }
func (s *Session) Username() string { return s.username }

// IsLoggedIn reports whether a user is logged in.
func (s *Session) IsLoggedIn() bool { return s.state == LoggedIn }

// IsTerminated reports whether Exit has been called.
func (s *Session) IsTerminated() bool { return s.state == Terminated }

func (s *Session) loggerFor(ctx context.Context) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = s.logger
	}
	return logger.With("session_id", s.id)
}

// Login authenticates username and moves the session to LoggedIn. A wrong
// password returns application.ErrInvalidCredentials. Failed attempts draw on
// the login budget; once it is spent Login returns ErrTooManyAttempts without
// calling auth.
func (s *Session) Login(ctx context.Context, auth Authenticator, username, password string) error {
	switch s.state {
	case Terminated:
		return ErrTerminated
	case LoggedIn:
		return ErrAlreadyLoggedIn
	}
	if auth == nil {
		return fmt.Errorf("authenticator not configured")
	}

	username = strings.TrimSpace(username)
	logger := s.loggerFor(ctx).With("username", username)

	if s.limiter != nil && s.limiter.TokensAt(s.now()) < 1 {
		logger.WarnContext(ctx, "login throttled")
		return ErrTooManyAttempts
	}

	ok, err := auth.Authenticate(ctx, username, password)
	if err == nil && !ok {
		err = application.ErrInvalidCredentials
	}
	if err != nil {
		if s.limiter != nil {
			s.limiter.AllowN(s.now(), 1)
		}
		return err
	}

	s.state = LoggedIn
	s.username = username
	logger.InfoContext(ctx, "session logged in")
	return nil
}

// Logout returns the session to LoggedOut.
func (s *Session) Logout(ctx context.Context) error {
	if _, err := s.RequireLogin(); err != nil {
		return err
	}
	s.loggerFor(ctx).InfoContext(ctx, "session logged out", "username", s.username)
	s.state = LoggedOut
	s.username = ""
	return nil
}

// Exit terminates the session. It is idempotent.
func (s *Session) Exit(ctx context.Context) {
	if s.state == Terminated {
		return
	}
	s.loggerFor(ctx).InfoContext(ctx, "session terminated", "previous_state", s.state.String())
	s.state = Terminated
	s.username = ""
}

// RequireLogin returns the current username or the reason there is none.
func (s *Session) RequireLogin() (string, error) {
	switch s.state {
	case LoggedIn:
		return s.username, nil
	case Terminated:
		return "", ErrTerminated
	default:
		return "", ErrNotLoggedIn
	}
}
