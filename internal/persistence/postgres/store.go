// Package postgres implements the persistence interfaces on PostgreSQL through pgx.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/calendar-console/internal/persistence"
)

//go:embed schema.sql
var schemaSQL string

var _ persistence.Store = (*Store)(nil)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store bundles the PostgreSQL repositories over a pgx connection pool.
type Store struct {
	*UserRepository
	*CalendarRepository
	*MeetingRepository

	pool *pgxpool.Pool
	now  func() time.Time
}

// Open connects to databaseURL, verifies the connection, and ensures the schema exists.
func Open(ctx context.Context, databaseURL string, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("postgres: database url cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	store := newStore(pool, time.Now)
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.DebugContext(ctx, "postgres store opened", "database", pool.Config().ConnConfig.Database)
	return store, nil
}

func newStore(pool *pgxpool.Pool, now func() time.Time) *Store {
	return &Store{
		UserRepository:     &UserRepository{db: pool, now: now},
		CalendarRepository: &CalendarRepository{db: pool, now: now},
		MeetingRepository:  &MeetingRepository{db: pool, now: now},
		pool:               pool,
		now:                now,
	}
}

// Migrate creates missing tables and indexes. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" || isCommentOnly(stmt) {
			continue
		}
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply postgres schema: %w", err)
		}
	}
	return nil
}

// WithinTransaction runs fn with calendar and meeting repositories bound to one transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos persistence.Repositories) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(ctx, persistence.Repositories{
			Calendars: &CalendarRepository{db: tx, now: s.now},
			Meetings:  &MeetingRepository{db: tx, now: s.now},
		})
	})
}

// Close releases every pooled connection.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func isCommentOnly(stmt string) bool {
	for _, line := range strings.Split(stmt, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "--") {
			return false
		}
	}
	return true
}

// mapError translates pgx and PostgreSQL errors into persistence errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return persistence.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %v", persistence.ErrDuplicate, err)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%w: %v", persistence.ErrForeignKeyViolation, err)
		case "23514", "23502": // check_violation, not_null_violation
			return fmt.Errorf("%w: %v", persistence.ErrConstraintViolation, err)
		}
	}
	return err
}
