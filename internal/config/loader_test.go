package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var calendarKeys = []string{
	"CALENDAR_CONFIG_FILE",
	"CALENDAR_STORAGE",
	"CALENDAR_SQLITE_PATH",
	"CALENDAR_POSTGRES_URL",
	"CALENDAR_PASSWORD_SCHEME",
	"CALENDAR_DEFAULT_PASSWORD",
	"CALENDAR_LOG_LEVEL",
	"CALENDAR_LOG_FORMAT",
	"CALENDAR_LOGIN_ATTEMPTS_PER_MINUTE",
	"CALENDAR_EXPORT_DIR",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range calendarKeys {
		t.Setenv(key, "")
	}
}

func TestLoader_ParseEnvironment(t *testing.T) {
	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg != Default() {
			t.Fatalf("expected defaults, got %+v", cfg)
		}
		if cfg.Storage != StorageSQLite || cfg.SQLitePath != "calendar.db" || cfg.LoginAttemptsPerMinute != 5 {
			t.Fatalf("unexpected defaults %+v", cfg)
		}
	})

	t.Run("reads every variable", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CALENDAR_STORAGE", "Postgres")
		t.Setenv("CALENDAR_POSTGRES_URL", "postgres://localhost/calendar")
		t.Setenv("CALENDAR_PASSWORD_SCHEME", "bcrypt")
		t.Setenv("CALENDAR_DEFAULT_PASSWORD", "changeme")
		t.Setenv("CALENDAR_LOG_LEVEL", "debug")
		t.Setenv("CALENDAR_LOG_FORMAT", "text")
		t.Setenv("CALENDAR_LOGIN_ATTEMPTS_PER_MINUTE", "0")
		t.Setenv("CALENDAR_EXPORT_DIR", "/tmp/exports")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		want := Config{
			Storage:                StoragePostgres,
			SQLitePath:             "calendar.db",
			PostgresURL:            "postgres://localhost/calendar",
			PasswordScheme:         "bcrypt",
			DefaultPassword:        "changeme",
			LogLevel:               "debug",
			LogFormat:              "text",
			LoginAttemptsPerMinute: 0,
			ExportDir:              "/tmp/exports",
		}
		if cfg != want {
			t.Fatalf("expected %+v, got %+v", want, cfg)
		}
	})

	t.Run("errors when postgres url is missing", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CALENDAR_STORAGE", "postgres")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		if err.Error() != "missing required configuration: CALENDAR_POSTGRES_URL" {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("reports invalid values together", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CALENDAR_STORAGE", "redis")
		t.Setenv("CALENDAR_PASSWORD_SCHEME", "md5")
		t.Setenv("CALENDAR_LOGIN_ATTEMPTS_PER_MINUTE", "-3")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for invalid values")
		}
		for _, key := range []string{"CALENDAR_STORAGE", "CALENDAR_PASSWORD_SCHEME", "CALENDAR_LOGIN_ATTEMPTS_PER_MINUTE"} {
			if !strings.Contains(err.Error(), key) {
				t.Fatalf("expected %s in %q", key, err.Error())
			}
		}
	})
}

func TestLoader_ConfigFile(t *testing.T) {
	t.Run("environment overrides file values", func(t *testing.T) {
		clearEnv(t)

		path := filepath.Join(t.TempDir(), "calendar.yaml")
		content := "storage: memory\nlog_format: text\nlogin_attempts_per_minute: 2\nexport_dir: /srv/ics\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}
		t.Setenv("CALENDAR_CONFIG_FILE", path)
		t.Setenv("CALENDAR_EXPORT_DIR", "/override")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.Storage != StorageMemory || cfg.LogFormat != "text" || cfg.LoginAttemptsPerMinute != 2 {
			t.Fatalf("expected file values, got %+v", cfg)
		}
		if cfg.ExportDir != "/override" {
			t.Fatalf("expected environment override, got %q", cfg.ExportDir)
		}
		if cfg.PasswordScheme != "argon2id" {
			t.Fatalf("expected defaults for keys absent from the file, got %q", cfg.PasswordScheme)
		}
	})

	t.Run("file keywords are case insensitive", func(t *testing.T) {
		clearEnv(t)

		path := filepath.Join(t.TempDir(), "calendar.yaml")
		content := "storage: Memory\nlog_format: TEXT\npassword_scheme: Bcrypt\nlog_level: \" WARN \"\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}
		t.Setenv("CALENDAR_CONFIG_FILE", path)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.Storage != StorageMemory || cfg.LogFormat != "text" || cfg.PasswordScheme != "bcrypt" || cfg.LogLevel != "warn" {
			t.Fatalf("expected lower-cased file values, got %+v", cfg)
		}
	})

	t.Run("missing and malformed files fail", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CALENDAR_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for missing config file")
		}

		path := filepath.Join(t.TempDir(), "broken.yaml")
		if err := os.WriteFile(path, []byte("storage: [unclosed"), 0o600); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}
		if _, err := LoadFile(path, Default()); err == nil {
			t.Fatalf("expected parse error")
		}
	})
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("CALENDAR_STORAGE=memory\nCALENDAR_LOG_LEVEL=warn\n"), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	// Present but empty variables are not overridden by godotenv, so unset them.
	for _, key := range []string{"CALENDAR_STORAGE", "CALENDAR_LOG_LEVEL"} {
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv returned error: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Storage != StorageMemory || cfg.LogLevel != "warn" {
		t.Fatalf("expected values from env file, got %+v", cfg)
	}
}
