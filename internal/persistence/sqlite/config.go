package sqlite

import (
	"fmt"
	"net/url"
	"time"
)

const memoryPath = ":memory:"

// Config holds SQLite-specific database configuration.
type Config struct {
	// Path is the database file path, or ":memory:" for a private in-memory database.
	Path string

	// BusyTimeout sets how long to wait for database locks.
	BusyTimeout time.Duration

	// EnableForeignKeys enables foreign key constraint checking.
	EnableForeignKeys bool

	// JournalMode sets the SQLite journal mode (WAL, DELETE, TRUNCATE, etc.)
	JournalMode string

	// Synchronous sets the synchronous mode (FULL, NORMAL, OFF)
	Synchronous string

	// MaxOpenConns sets the maximum number of open connections.
	MaxOpenConns int
}

// DefaultConfig returns a file-backed configuration with sensible defaults.
func DefaultConfig(path string) Config {
	cfg := Config{
		Path:              path,
		BusyTimeout:       5 * time.Second,
		EnableForeignKeys: true,
		JournalMode:       "WAL",
		Synchronous:       "NORMAL",
		MaxOpenConns:      1,
	}
	if path == memoryPath {
		cfg.JournalMode = "MEMORY"
		cfg.Synchronous = "OFF"
	}
	return cfg
}

// InMemoryConfig returns a configuration for a private in-memory database.
func InMemoryConfig() Config {
	return DefaultConfig(memoryPath)
}

// IsMemory reports whether the configuration targets an in-memory database.
func (c Config) IsMemory() bool {
	return c.Path == memoryPath
}

// Validate checks the configuration for unsupported values.
func (c Config) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("sqlite: path cannot be empty")
	}
	if c.BusyTimeout < 0 {
		return fmt.Errorf("sqlite: busy timeout cannot be negative")
	}

	validJournalModes := map[string]bool{
		"DELETE":   true,
		"TRUNCATE": true,
		"PERSIST":  true,
		"MEMORY":   true,
		"WAL":      true,
		"OFF":      true,
	}
	if c.JournalMode != "" && !validJournalModes[c.JournalMode] {
		return fmt.Errorf("sqlite: invalid journal mode: %s", c.JournalMode)
	}

	validSyncModes := map[string]bool{
		"OFF":    true,
		"NORMAL": true,
		"FULL":   true,
		"EXTRA":  true,
	}
	if c.Synchronous != "" && !validSyncModes[c.Synchronous] {
		return fmt.Errorf("sqlite: invalid synchronous mode: %s", c.Synchronous)
	}

	if c.MaxOpenConns < 0 {
		return fmt.Errorf("sqlite: max open connections cannot be negative")
	}
	if c.IsMemory() && c.MaxOpenConns != 1 {
		return fmt.Errorf("sqlite: in-memory databases require exactly one connection")
	}
	return nil
}

// DataSourceName renders the driver DSN. Pragmas are passed as _pragma
// parameters so the driver applies them to every new connection.
func (c Config) DataSourceName() string {
	params := url.Values{}
	if c.BusyTimeout > 0 {
		params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", c.BusyTimeout.Milliseconds()))
	}
	if c.EnableForeignKeys {
		params.Add("_pragma", "foreign_keys(1)")
	}
	if c.JournalMode != "" {
		params.Add("_pragma", fmt.Sprintf("journal_mode(%s)", c.JournalMode))
	}
	if c.Synchronous != "" {
		params.Add("_pragma", fmt.Sprintf("synchronous(%s)", c.Synchronous))
	}

	dsn := "file:" + c.Path
	if encoded := params.Encode(); encoded != "" {
		dsn += "?" + encoded
	}
	return dsn
}
