package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/calendar-console/internal/application"
	"github.com/example/calendar-console/internal/persistence"
)

// ServiceFactory assists tests with constructing application services using
// deterministic passwords and clocks.
type ServiceFactory struct {
	Clock     *Clock
	Passwords *PasswordSequence
	Hasher    application.PasswordHasher
	Logger    *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:     NewClock(time.Time{}),
		Passwords: NewPasswordSequence("password"),
		Hasher:    FastHasher(),
		Logger:    DiscardLogger(),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.Passwords == nil {
		factory.Passwords = NewPasswordSequence("password")
	}
	if factory.Hasher == nil {
		factory.Hasher = FastHasher()
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithHasher overrides the password hasher used by the factory.
func WithHasher(hasher application.PasswordHasher) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Hasher = hasher
	}
}

// WithLogger overrides the logger handed to services.
func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Logger = logger
	}
}

// NewUserService builds a user service over users.
func (f *ServiceFactory) NewUserService(users persistence.UserRepository) *application.UserService {
	return application.NewUserServiceWithLogger(users, f.Hasher, f.Passwords.Source(), f.Clock.NowFunc(), f.Logger)
}

// NewCalendarService builds a calendar service over calendars.
func (f *ServiceFactory) NewCalendarService(calendars application.CalendarStore) *application.CalendarService {
	return application.NewCalendarServiceWithLogger(calendars, f.Clock.NowFunc(), f.Logger)
}

// NewMeetingService builds a meeting service over meetings.
func (f *ServiceFactory) NewMeetingService(meetings application.MeetingStore) *application.MeetingService {
	return application.NewMeetingServiceWithLogger(meetings, f.Clock.NowFunc(), f.Logger)
}

// Services bundles the three application services sharing one store.
type Services struct {
	Users     *application.UserService
	Calendars *application.CalendarService
	Meetings  *application.MeetingService
}

// NewServices wires every service to store.
func (f *ServiceFactory) NewServices(store persistence.Store) Services {
	return Services{
		Users:     f.NewUserService(store),
		Calendars: f.NewCalendarService(store),
		Meetings:  f.NewMeetingService(store),
	}
}
