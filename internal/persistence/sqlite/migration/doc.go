// Package migration applies versioned SQL migrations to a SQLite database.
//
// Migration files live in an fs.FS (typically an embed.FS compiled into the
// binary) and follow the naming convention {version}_{description}.sql, for
// example "001_initial_schema.sql". Versions must form a continuous sequence.
// Each migration runs inside its own transaction and is recorded in the
// schema_migrations table together with its checksum, so re-running the
// manager only applies what is still pending.
//
// Example usage:
//
//	manager := NewMigrationManager(NewFileScanner(files), NewSQLiteExecutor(db), "migrations", logger)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return fmt.Errorf("migrate: %w", err)
//	}
package migration
