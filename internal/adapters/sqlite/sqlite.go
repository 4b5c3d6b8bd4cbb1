// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// timestampLayout keeps sub-second precision so "most recently updated"
// orderings stay stable within one second.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// now returns the current time in the layout every repository writes.
func now() string {
	return time.Now().UTC().Format(timestampLayout)
}

// formatTime renders a scanned DATETIME column for a record.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// nullString maps "" to NULL.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern returns a LIKE pattern matching s as a literal substring.
// Use it with ESCAPE '\'.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// rowQueryer is satisfied by *sql.DB and *sql.Tx.
type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// recordTime converts a timestamp produced by now() to the record format.
func recordTime(ts string) string {
	t, err := time.Parse(timestampLayout, ts)
	if err != nil {
		return ts
	}
	return formatTime(t)
}

// allocateID returns the next "<prefix>-NNN" ID for table. It must run on
// the transaction that inserts the row so the read and the insert hold the
// same write lock.
func allocateID(ctx context.Context, q rowQueryer, table, prefix string) (string, error) {
	var maxID int
	err := q.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, ?) AS INTEGER)), 0) FROM "+table,
		len(prefix)+2,
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to allocate %s ID: %w", prefix, err)
	}
	return fmt.Sprintf("%s-%03d", prefix, maxID+1), nil
}
