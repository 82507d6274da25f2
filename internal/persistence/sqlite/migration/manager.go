package migration

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// migrationManagerImpl implements the MigrationManager interface
type migrationManagerImpl struct {
	scanner      FileScanner
	executor     Executor
	migrationDir string
	logger       *slog.Logger
}

// NewMigrationManager creates a new MigrationManager implementation
func NewMigrationManager(scanner FileScanner, executor Executor, migrationDir string, logger *slog.Logger) MigrationManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &migrationManagerImpl{
		scanner:      scanner,
		executor:     executor,
		migrationDir: migrationDir,
		logger:       logger.With("component", "migration"),
	}
}

// RunMigrations executes all pending migrations in sequential order
func (m *migrationManagerImpl) RunMigrations(ctx context.Context) error {
	startTime := time.Now()

	pendingMigrations, err := m.GetPendingMigrations(ctx)
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to resolve pending migrations", "error", err)
		return err
	}

	if len(pendingMigrations) == 0 {
		m.logger.DebugContext(ctx, "schema is up to date")
		return nil
	}

	m.logger.InfoContext(ctx, "applying migrations", "pending", len(pendingMigrations))

	for i, migration := range pendingMigrations {
		migrationStart := time.Now()
		logger := m.logger.With(
			"version", migration.Version,
			"description", migration.Description,
		)

		if err := m.executor.ExecuteMigration(ctx, migration); err != nil {
			logger.ErrorContext(ctx, "migration failed", "error", err)
			return fileError(migration.Version, migration.FilePath,
				"execute migration", fmt.Errorf("%w: %v", ErrMigrationFailed, err))
		}

		logger.InfoContext(ctx, "migration applied",
			"step", i+1,
			"of", len(pendingMigrations),
			"duration_ms", time.Since(migrationStart).Milliseconds(),
		)
	}

	m.logger.InfoContext(ctx, "migrations complete",
		"applied", len(pendingMigrations),
		"duration_ms", time.Since(startTime).Milliseconds(),
	)
	return nil
}

// GetPendingMigrations returns list of migrations that need to be applied
func (m *migrationManagerImpl) GetPendingMigrations(ctx context.Context) ([]Migration, error) {
	status, err := m.GetMigrationStatus(ctx)
	if err != nil {
		return nil, err
	}
	return status.PendingMigrations, nil
}

// GetMigrationStatus returns status information about migrations
func (m *migrationManagerImpl) GetMigrationStatus(ctx context.Context) (*MigrationStatus, error) {
	if err := m.executor.InitializeVersionTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize version table: %w", err)
	}

	available, err := m.scanner.ScanMigrations(m.migrationDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan migrations: %w", err)
	}
	if err := validateSequence(available); err != nil {
		return nil, err
	}

	applied, err := m.executor.GetAppliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied versions: %w", err)
	}

	byVersion := make(map[int]Migration, len(available))
	for _, migration := range available {
		byVersion[versionNumber(migration.Version)] = migration
	}

	appliedSet := make(map[int]struct{}, len(applied))
	status := &MigrationStatus{AppliedMigrations: applied}
	for _, record := range applied {
		number := versionNumber(record.Version)
		appliedSet[number] = struct{}{}

		migration, ok := byVersion[number]
		if !ok {
			return nil, fileError(record.Version, "", "check applied versions",
				fmt.Errorf("%w: applied version %s has no migration file", ErrVersionConflict, record.Version))
		}
		if record.Checksum != "" && record.Checksum != migration.Checksum {
			return nil, fileError(record.Version, migration.FilePath, "verify checksum",
				fmt.Errorf("%w: file changed after it was applied", ErrChecksumMismatch))
		}
		if status.CurrentVersion == "" || number > versionNumber(status.CurrentVersion) {
			status.CurrentVersion = record.Version
		}
	}

	for _, migration := range available {
		if _, done := appliedSet[versionNumber(migration.Version)]; !done {
			status.PendingMigrations = append(status.PendingMigrations, migration)
		}
	}
	status.PendingCount = len(status.PendingMigrations)

	return status, nil
}

// validateSequence requires versions to start at 1 and increase without gaps.
func validateSequence(migrations []Migration) error {
	for i, migration := range migrations {
		expected := i + 1
		if versionNumber(migration.Version) != expected {
			return fileError(migration.Version, migration.FilePath, "validate sequence",
				fmt.Errorf("%w: expected version %s, found %s",
					ErrVersionConflict, strconv.Itoa(expected), migration.Version))
		}
	}
	return nil
}
