package migration

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	cause := errors.New("no such table: missing")
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "file step",
			err:  fileError("002", "002_broken.sql", "validate content", ErrInvalidMigrationFile),
			want: "migration 002 (002_broken.sql): validate content: invalid migration file format",
		},
		{
			name: "statement whitespace collapsed",
			err:  statementError("003", "\n\tINSERT INTO missing\n\t\tVALUES (1)\n", "execute statement 1", cause),
			want: "migration 003: execute statement 1 [INSERT INTO missing VALUES (1)]: no such table: missing",
		},
		{
			name: "no version or statement",
			err:  statementError("", "", "begin transaction", cause),
			want: "migration: begin transaction: no such table: missing",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Fatalf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorLongStatementIsShortened(t *testing.T) {
	t.Parallel()

	stmt := "INSERT INTO meetings (title, start_time, end_time, calendar_id) VALUES ('" + strings.Repeat("x", 200) + "')"
	msg := statementError("001", stmt, "execute statement 4", errors.New("boom")).Error()

	if strings.Contains(msg, strings.Repeat("x", 200)) {
		t.Fatalf("expected long statement to be shortened, got %q", msg)
	}
	if !strings.Contains(msg, "[INSERT INTO meetings") || !strings.Contains(msg, "...]") {
		t.Fatalf("expected statement prefix with ellipsis, got %q", msg)
	}
}

func TestErrorUnwrap(t *testing.T) {
	t.Parallel()

	err := fileError("004", "004_x.sql", "verify checksum", ErrChecksumMismatch)
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected errors.Is to reach ErrChecksumMismatch, got %v", err)
	}

	var target *Error
	if !errors.As(error(err), &target) || target.Version != "004" {
		t.Fatalf("expected errors.As to return the migration error, got %v", err)
	}
}
