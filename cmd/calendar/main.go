package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/example/calendar-console/internal/application"
	"github.com/example/calendar-console/internal/config"
	"github.com/example/calendar-console/internal/console"
	"github.com/example/calendar-console/internal/logging"
	"github.com/example/calendar-console/internal/persistence"
	"github.com/example/calendar-console/internal/persistence/memory"
	"github.com/example/calendar-console/internal/persistence/postgres"
	"github.com/example/calendar-console/internal/persistence/sqlite"
	"github.com/example/calendar-console/internal/session"
)

const generatedPasswordLength = 16

func main() {
	os.Exit(run(context.Background(), os.Stdin, os.Stdout, os.Stderr))
}

// run wires the console and returns the process exit code. Logs go to
// stderr so stdout only carries the console.
func run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) (code int) {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(stderr, "failed to load .env: %v\n", err)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	logger, err := logging.NewLogger(stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(stderr, "failed to build logger: %v\n", err)
		return 1
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("unexpected failure", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			fmt.Fprintln(stdout, "Unexpected error. The application will exit.")
			code = 1
		}
	}()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "storage", cfg.Storage, "error", err)
		return 1
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	hasher, err := application.NewPasswordHasher(cfg.PasswordScheme)
	if err != nil {
		logger.Error("failed to configure password hashing", "error", err)
		return 1
	}
	passwords := application.RandomPasswords(generatedPasswordLength)
	if cfg.DefaultPassword != "" {
		passwords = application.StaticPassword(cfg.DefaultPassword)
	}

	now := time.Now
	services := console.Services{
		Users:     application.NewUserServiceWithLogger(store, hasher, passwords, now, logger),
		Calendars: application.NewCalendarServiceWithLogger(store, now, logger),
		Meetings:  application.NewMeetingServiceWithLogger(store, now, logger),
	}

	sess := session.New(
		session.WithLoginLimit(cfg.LoginAttemptsPerMinute),
		session.WithLogger(logger),
	)
	controller := console.NewController(services, stdin, stdout, console.Options{
		Session:  sess,
		Exporter: console.NewExporter(cfg.ExportDir, now),
		Logger:   logger,
	})

	logger.Info("calendar console starting", "storage", cfg.Storage, "password_scheme", hasher.Scheme(), "session_id", sess.ID())
	if err := controller.Run(ctx); err != nil {
		if errors.Is(err, console.ErrUnexpected) {
			return 1
		}
		logger.Error("console stopped", "error", err)
		return 1
	}
	return 0
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (persistence.Store, error) {
	switch cfg.Storage {
	case config.StorageSQLite:
		return sqlite.Open(ctx, sqlite.DefaultConfig(cfg.SQLitePath), logger)
	case config.StoragePostgres:
		return postgres.Open(ctx, cfg.PostgresURL, logger)
	case config.StorageMemory:
		return memory.New(time.Now), nil
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}
