package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config captures the settings of the calendar console.
type Config struct {
	Storage                string `yaml:"storage"`
	SQLitePath             string `yaml:"sqlite_path"`
	PostgresURL            string `yaml:"postgres_url"`
	PasswordScheme         string `yaml:"password_scheme"`
	DefaultPassword        string `yaml:"default_password"`
	LogLevel               string `yaml:"log_level"`
	LogFormat              string `yaml:"log_format"`
	LoginAttemptsPerMinute int    `yaml:"login_attempts_per_minute"`
	ExportDir              string `yaml:"export_dir"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Storage:                StorageSQLite,
		SQLitePath:             "calendar.db",
		PasswordScheme:         "argon2id",
		LogLevel:               "info",
		LogFormat:              "json",
		LoginAttemptsPerMinute: 5,
		ExportDir:              ".",
	}
}

// LoadDotEnv loads variables from the given .env files (".env" when none are
// named) without overriding the process environment. Missing files are ignored.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

// Load builds the configuration from defaults, the optional YAML file named by
// CALENDAR_CONFIG_FILE, and finally the process environment.
func Load() (Config, error) {
	cfg := Default()

	if path := strings.TrimSpace(os.Getenv("CALENDAR_CONFIG_FILE")); path != "" {
		fileCfg, err := LoadFile(path, cfg)
		if err != nil {
			return Config{}, err
		}
		cfg = fileCfg
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if storage := strings.TrimSpace(os.Getenv("CALENDAR_STORAGE")); storage != "" {
		cfg.Storage = strings.ToLower(storage)
	}
	if path := strings.TrimSpace(os.Getenv("CALENDAR_SQLITE_PATH")); path != "" {
		cfg.SQLitePath = path
	}
	if url := strings.TrimSpace(os.Getenv("CALENDAR_POSTGRES_URL")); url != "" {
		cfg.PostgresURL = url
	}
	if scheme := strings.TrimSpace(os.Getenv("CALENDAR_PASSWORD_SCHEME")); scheme != "" {
		cfg.PasswordScheme = strings.ToLower(scheme)
	}
	if password, ok := os.LookupEnv("CALENDAR_DEFAULT_PASSWORD"); ok {
		cfg.DefaultPassword = password
	}
	if level := strings.TrimSpace(os.Getenv("CALENDAR_LOG_LEVEL")); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}
	if format := strings.TrimSpace(os.Getenv("CALENDAR_LOG_FORMAT")); format != "" {
		cfg.LogFormat = strings.ToLower(format)
	}
	if attemptsValue := strings.TrimSpace(os.Getenv("CALENDAR_LOGIN_ATTEMPTS_PER_MINUTE")); attemptsValue != "" {
		attempts, err := strconv.Atoi(attemptsValue)
		if err != nil || attempts < 0 {
			invalid = append(invalid, "CALENDAR_LOGIN_ATTEMPTS_PER_MINUTE")
		} else {
			cfg.LoginAttemptsPerMinute = attempts
		}
	}
	if dir := strings.TrimSpace(os.Getenv("CALENDAR_EXPORT_DIR")); dir != "" {
		cfg.ExportDir = dir
	}

	switch cfg.Storage {
	case StorageSQLite:
		if cfg.SQLitePath == "" {
			missing = append(missing, "CALENDAR_SQLITE_PATH")
		}
	case StoragePostgres:
		if cfg.PostgresURL == "" {
			missing = append(missing, "CALENDAR_POSTGRES_URL")
		}
	case StorageMemory:
	default:
		invalid = append(invalid, "CALENDAR_STORAGE")
	}

	switch cfg.PasswordScheme {
	case "argon2id", "bcrypt":
	default:
		invalid = append(invalid, "CALENDAR_PASSWORD_SCHEME")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		invalid = append(invalid, "CALENDAR_LOG_LEVEL")
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		invalid = append(invalid, "CALENDAR_LOG_FORMAT")
	}
	if cfg.LoginAttemptsPerMinute < 0 && !slices.Contains(invalid, "CALENDAR_LOGIN_ATTEMPTS_PER_MINUTE") {
		invalid = append(invalid, "CALENDAR_LOGIN_ATTEMPTS_PER_MINUTE")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid configuration values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
