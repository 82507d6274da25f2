package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	t.Run("json output filters below level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger, err := NewLogger(&buf, "warn", "json")
		if err != nil {
			t.Fatalf("NewLogger returned error: %v", err)
		}
		logger.Info("hidden")
		logger.Warn("shown", "calendar_id", 7)

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 1 {
			t.Fatalf("expected exactly one record, got %q", buf.String())
		}
		var record map[string]any
		if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
			t.Fatalf("expected JSON record, got %v", err)
		}
		if record["msg"] != "shown" || record["calendar_id"] != float64(7) {
			t.Fatalf("unexpected record %v", record)
		}
	})

	t.Run("text output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger, err := NewLogger(&buf, "", "TEXT")
		if err != nil {
			t.Fatalf("NewLogger returned error: %v", err)
		}
		logger.Info("hello", "user", "alice")
		if !strings.Contains(buf.String(), "msg=hello") || !strings.Contains(buf.String(), "user=alice") {
			t.Fatalf("unexpected text output %q", buf.String())
		}
	})

	t.Run("rejects unknown values", func(t *testing.T) {
		t.Parallel()

		if _, err := NewLogger(&bytes.Buffer{}, "loud", "json"); err == nil {
			t.Fatalf("expected error for unknown level")
		}
		if _, err := NewLogger(&bytes.Buffer{}, "info", "xml"); err == nil {
			t.Fatalf("expected error for unknown format")
		}
	})
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for input, want := range tests {
		got, err := ParseLevel(input)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", input, got, err, want)
		}
	}
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	if FromContext(context.Background()) != nil {
		t.Fatalf("expected no logger in empty context")
	}

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := ContextWithLogger(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Fatalf("expected stored logger to be returned")
	}
	if ContextWithLogger(ctx, nil) != ctx {
		t.Fatalf("expected nil logger to leave the context unchanged")
	}
}
