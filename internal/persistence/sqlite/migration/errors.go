package migration

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMigrationFailed      = errors.New("migration execution failed")
	ErrInvalidMigrationFile = errors.New("invalid migration file format")
	// ErrVersionConflict covers gaps in the sequence and applied versions without a file.
	ErrVersionConflict  = errors.New("migration version conflict")
	ErrDuplicateVersion = errors.New("duplicate migration version")
	// ErrChecksumMismatch means an applied file was edited afterwards.
	ErrChecksumMismatch = errors.New("migration checksum mismatch")
)

const maxStatementInError = 60

// Error reports the step of a migration run that failed. Source is the file or
// directory involved; Statement is the SQL being executed, when there was one.
type Error struct {
	Version   string
	Source    string
	Step      string
	Statement string
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("migration")
	if e.Version != "" {
		b.WriteString(" " + e.Version)
	}
	if e.Source != "" {
		fmt.Fprintf(&b, " (%s)", e.Source)
	}
	b.WriteString(": " + e.Step)
	if stmt := summarizeStatement(e.Statement); stmt != "" {
		fmt.Fprintf(&b, " [%s]", stmt)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func fileError(version, source, step string, err error) *Error {
	return &Error{Version: version, Source: source, Step: step, Err: err}
}

func statementError(version, statement, step string, err error) *Error {
	return &Error{Version: version, Step: step, Statement: statement, Err: err}
}

// summarizeStatement collapses whitespace and shortens long SQL.
func summarizeStatement(stmt string) string {
	stmt = strings.Join(strings.Fields(stmt), " ")
	if len(stmt) > maxStatementInError {
		stmt = stmt[:maxStatementInError] + "..."
	}
	return stmt
}
