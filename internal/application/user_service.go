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

// PasswordSource supplies the password for a registration that did not provide one.
type PasswordSource func() (string, error)

// StaticPassword returns a PasswordSource that always yields password.
func StaticPassword(password string) PasswordSource {
	return func() (string, error) { return password, nil }
}

// RandomPasswords returns a PasswordSource producing random passwords of length characters.
func RandomPasswords(length int) PasswordSource {
	return func() (string, error) { return GeneratePassword(length) }
}

// UserService orchestrates validation, hashing, and persistence for users.
type UserService struct {
	users     persistence.UserRepository
	hasher    PasswordHasher
	passwords PasswordSource
	now       func() time.Time
	logger    *slog.Logger
}

// NewUserService wires dependencies for the user service.
func NewUserService(users persistence.UserRepository, hasher PasswordHasher, passwords PasswordSource, now func() time.Time) *UserService {
	return NewUserServiceWithLogger(users, hasher, passwords, now, nil)
}

// NewUserServiceWithLogger wires dependencies for the user service with a specified logger.
func NewUserServiceWithLogger(users persistence.UserRepository, hasher PasswordHasher, passwords PasswordSource, now func() time.Time, logger *slog.Logger) *UserService {
	if hasher == nil {
		hasher = Argon2idHasher{}
	}
	if passwords == nil {
		passwords = RandomPasswords(16)
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{
		users:     users,
		hasher:    hasher,
		passwords: passwords,
		now:       now,
		logger:    defaultLogger(logger),
	}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// CreateUser registers a user. An empty or taken username is a ValidationError.
func (s *UserService) CreateUser(ctx context.Context, params CreateUserParams) (result RegisterResult, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user repository not configured")
		return
	}

	username := strings.TrimSpace(params.Username)
	logger := s.loggerWith(ctx, "CreateUser", "username", username)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "user registration failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "user registered", "scheme", s.hasher.Scheme())
	}()

	if vErr := validateUsername(username); vErr.HasErrors() {
		err = vErr
		return
	}

	_, lookupErr := s.users.GetUser(ctx, username)
	switch {
	case lookupErr == nil:
		err = NewValidationError("username", "username already exists")
		return
	case !errors.Is(lookupErr, persistence.ErrNotFound):
		err = storeError("get user", lookupErr)
		return
	}

	password := params.Password
	if password == "" {
		if password, err = s.passwords(); err != nil {
			err = fmt.Errorf("generate password: %w", err)
			return
		}
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		err = fmt.Errorf("hash password: %w", err)
		return
	}

	record := persistence.User{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if createErr := s.users.CreateUser(ctx, record); createErr != nil {
		if errors.Is(createErr, persistence.ErrDuplicate) {
			err = NewValidationError("username", "username already exists")
			return
		}
		err = storeError("create user", createErr)
		return
	}

	result = RegisterResult{User: userFromRecord(record), Password: password}
	return
}

// Authenticate reports whether password matches the stored hash for username.
// An unknown username yields ErrNotFound; a wrong password yields false and no error.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (ok bool, err error) {
	if s == nil {
		return false, fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return false, fmt.Errorf("user repository not configured")
	}

	username = strings.TrimSpace(username)
	logger := s.loggerWith(ctx, "Authenticate", "username", username)
	defer func() {
		switch {
		case err != nil:
			logger.ErrorContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
		case !ok:
			logger.WarnContext(ctx, "authentication rejected", "error_kind", ErrorKind(ErrInvalidCredentials))
		default:
			logger.InfoContext(ctx, "authentication succeeded")
		}
	}()

	if username == "" {
		err = NewValidationError("username", "username is required")
		return
	}

	record, err := s.users.GetUser(ctx, username)
	if err != nil {
		err = storeError("get user", err)
		return
	}

	verifyErr := s.hasher.Verify(record.PasswordHash, password)
	switch {
	case verifyErr == nil:
		ok = true
	case errors.Is(verifyErr, ErrInvalidCredentials):
		ok = false
	default:
		err = fmt.Errorf("verify password: %w", verifyErr)
	}
	return
}

// GetUser returns the stored user record.
func (s *UserService) GetUser(ctx context.Context, username string) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}

	record, err := s.users.GetUser(ctx, strings.TrimSpace(username))
	if err != nil {
		return User{}, storeError("get user", err)
	}
	return userFromRecord(record), nil
}

func validateUsername(username string) *ValidationError {
	vErr := &ValidationError{}
	switch {
	case username == "":
		vErr.add("username", "username is required")
	case strings.ContainsAny(username, " \t\r\n"):
		vErr.add("username", "username must not contain whitespace")
	case len(username) > 64:
		vErr.add("username", "username must be at most 64 characters")
	}
	return vErr
}
