package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/calendar-console/internal/application"
	"github.com/example/calendar-console/internal/persistence"
	"github.com/example/calendar-console/internal/testfixtures"
)

type failingUserRepo struct {
	err error
}

func (f failingUserRepo) CreateUser(ctx context.Context, user persistence.User) error {
	return f.err
}

func (f failingUserRepo) GetUser(ctx context.Context, username string) (persistence.User, error) {
	return persistence.User{}, f.err
}

func TestUserService_CreateUser(t *testing.T) {
	t.Parallel()

	t.Run("generates a password and stores only its hash", func(t *testing.T) {
		t.Parallel()

		factory := testfixtures.NewServiceFactory()
		store := testfixtures.NewMemoryStore(t, factory.Clock)
		svc := factory.NewUserService(store)

		result, err := svc.CreateUser(context.Background(), application.CreateUserParams{Username: "  alice "})
		if err != nil {
			t.Fatalf("CreateUser returned error: %v", err)
		}
		if result.User.Username != "alice" {
			t.Fatalf("expected trimmed username, got %q", result.User.Username)
		}
		if result.Password != "password-1" {
			t.Fatalf("expected generated password, got %q", result.Password)
		}

		stored, err := store.GetUser(context.Background(), "alice")
		if err != nil {
			t.Fatalf("GetUser returned error: %v", err)
		}
		if stored.PasswordHash == result.Password || stored.PasswordHash != result.User.PasswordHash {
			t.Fatalf("expected hashed password to be stored, got %q", stored.PasswordHash)
		}
		if err := factory.Hasher.Verify(stored.PasswordHash, result.Password); err != nil {
			t.Fatalf("stored hash does not verify: %v", err)
		}
	})

	t.Run("uses the supplied password", func(t *testing.T) {
		t.Parallel()

		factory := testfixtures.NewServiceFactory()
		svc := factory.NewUserService(testfixtures.NewMemoryStore(t, factory.Clock))

		result, err := svc.CreateUser(context.Background(), application.CreateUserParams{Username: "bob", Password: "hunter2"})
		if err != nil {
			t.Fatalf("CreateUser returned error: %v", err)
		}
		if result.Password != "hunter2" {
			t.Fatalf("expected supplied password, got %q", result.Password)
		}
	})

	t.Run("rejects empty and duplicate usernames", func(t *testing.T) {
		t.Parallel()

		factory := testfixtures.NewServiceFactory()
		svc := factory.NewUserService(testfixtures.NewMemoryStore(t, factory.Clock))
		ctx := context.Background()

		for _, username := range []string{"", "   ", "two words"} {
			_, err := svc.CreateUser(ctx, application.CreateUserParams{Username: username})
			var vErr *application.ValidationError
			if !errors.As(err, &vErr) || vErr.FieldErrors["username"] == "" {
				t.Fatalf("expected username ValidationError for %q, got %v", username, err)
			}
		}

		if _, err := svc.CreateUser(ctx, application.CreateUserParams{Username: "alice"}); err != nil {
			t.Fatalf("CreateUser returned error: %v", err)
		}
		_, err := svc.CreateUser(ctx, application.CreateUserParams{Username: "alice"})
		var vErr *application.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError for duplicate, got %v", err)
		}
	})

	t.Run("wraps storage failures", func(t *testing.T) {
		t.Parallel()

		factory := testfixtures.NewServiceFactory()
		svc := factory.NewUserService(failingUserRepo{err: errors.New("disk full")})

		_, err := svc.CreateUser(context.Background(), application.CreateUserParams{Username: "alice"})
		var pErr *application.PersistenceError
		if !errors.As(err, &pErr) {
			t.Fatalf("expected PersistenceError, got %v", err)
		}
	})
}

func TestUserService_Authenticate(t *testing.T) {
	t.Parallel()

	factory := testfixtures.NewServiceFactory()
	svc := factory.NewUserService(testfixtures.NewMemoryStore(t, factory.Clock))
	ctx := context.Background()

	registered, err := svc.CreateUser(ctx, application.CreateUserParams{Username: "alice"})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	ok, err := svc.Authenticate(ctx, "alice", registered.Password)
	if err != nil || !ok {
		t.Fatalf("expected matching credential to authenticate, got ok=%v err=%v", ok, err)
	}

	ok, err = svc.Authenticate(ctx, "alice", "wrong")
	if err != nil || ok {
		t.Fatalf("expected wrong credential to return false, got ok=%v err=%v", ok, err)
	}

	_, err = svc.Authenticate(ctx, "mallory", "anything")
	if !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}

	user, err := svc.GetUser(ctx, "alice")
	if err != nil || user.PasswordHash != registered.User.PasswordHash {
		t.Fatalf("GetUser = %+v, %v", user, err)
	}
}

func TestUserService_Nil(t *testing.T) {
	t.Parallel()

	var svc *application.UserService
	if _, err := svc.CreateUser(context.Background(), application.CreateUserParams{Username: "a"}); err == nil {
		t.Fatalf("expected error from nil service")
	}
	if _, err := svc.Authenticate(context.Background(), "a", "b"); err == nil {
		t.Fatalf("expected error from nil service")
	}
}
