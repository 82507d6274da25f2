// Package sqlite implements the persistence interfaces on top of modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/calendar-console/internal/persistence"
	"github.com/example/calendar-console/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationDir = "migrations"

var _ persistence.Store = (*Store)(nil)

// Store bundles the SQLite repositories over a single connection pool.
type Store struct {
	*UserRepository
	*CalendarRepository
	*MeetingRepository

	pool   *ConnectionPool
	now    func() time.Time
	logger *slog.Logger
}

// Open connects to the database described by config and applies any pending migrations.
func Open(ctx context.Context, config Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := NewConnectionPool(ctx, config)
	if err != nil {
		return nil, err
	}

	store := newStore(pool, time.Now, logger)
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.DebugContext(ctx, "sqlite store opened", "path", config.Path)
	return store, nil
}

func newStore(pool *ConnectionPool, now func() time.Time, logger *slog.Logger) *Store {
	db := pool.DB()
	return &Store{
		UserRepository:     NewUserRepository(db, now),
		CalendarRepository: NewCalendarRepository(db, now),
		MeetingRepository:  NewMeetingRepository(db, now),
		pool:               pool,
		now:                now,
		logger:             logger,
	}
}

// WithClock returns a copy of the store whose repositories stamp records using now.
func (s *Store) WithClock(now func() time.Time) *Store {
	return newStore(s.pool, now, s.logger)
}

// Migrate applies embedded schema migrations that have not run yet.
func (s *Store) Migrate(ctx context.Context) error {
	manager := migration.NewMigrationManager(
		migration.NewFileScanner(migrationFiles),
		migration.NewSQLiteExecutor(s.pool.DB()),
		migrationDir,
		s.logger,
	)
	if err := manager.RunMigrations(ctx); err != nil {
		return fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}
	return nil
}

// WithinTransaction runs fn with calendar and meeting repositories bound to one transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos persistence.Repositories) error) error {
	return s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		return fn(ctx, persistence.Repositories{
			Calendars: NewCalendarRepository(tx, s.now),
			Meetings:  NewMeetingRepository(tx, s.now),
		})
	})
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}
