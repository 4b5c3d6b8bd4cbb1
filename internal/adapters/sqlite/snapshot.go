package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/example/guidebook/internal/db"
	"github.com/example/guidebook/internal/ports/secondary"
)

// SnapshotStore implements secondary.SnapshotStore for the live database.
type SnapshotStore struct {
	db *sql.DB
}

// NewSnapshotStore creates a snapshot store for the live database handle.
func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// SnapshotTo writes a consistent copy of the live database to dest.
// dest must not exist yet.
func (s *SnapshotStore) SnapshotTo(ctx context.Context, dest string) error {
	quoted := "'" + strings.ReplaceAll(dest, "'", "''") + "'"
	if _, err := s.db.ExecContext(ctx, "VACUUM INTO "+quoted); err != nil {
		return fmt.Errorf("failed to snapshot database to %s: %w", dest, err)
	}
	return nil
}

// RestoreFrom copies src page by page into the live database with the
// SQLite online backup API, so open handles stay valid.
func (s *SnapshotStore) RestoreFrom(ctx context.Context, src string) error {
	srcDB, err := sql.Open(db.DriverName, "file:"+src+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open backup %s: %w", src, err)
	}
	defer srcDB.Close()

	srcConn, err := srcDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to open backup %s: %w", src, err)
	}
	defer srcConn.Close()

	destConn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire database connection: %w", err)
	}
	defer destConn.Close()

	return destConn.Raw(func(destDriver any) error {
		return srcConn.Raw(func(srcDriver any) error {
			dest, ok := destDriver.(*sqlite3.SQLiteConn)
			if !ok {
				return fmt.Errorf("unexpected driver connection %T", destDriver)
			}
			source, ok := srcDriver.(*sqlite3.SQLiteConn)
			if !ok {
				return fmt.Errorf("unexpected driver connection %T", srcDriver)
			}

			backup, err := dest.Backup("main", source, "main")
			if err != nil {
				return fmt.Errorf("failed to start restore: %w", err)
			}
			if _, err := backup.Step(-1); err != nil {
				backup.Finish()
				return fmt.Errorf("failed to copy backup pages: %w", err)
			}
			return backup.Finish()
		})
	})
}

// IsSnapshot reports whether path carries the SQLite file header.
func (s *SnapshotStore) IsSnapshot(path string) bool {
	return db.IsSQLiteFile(path)
}

// Ensure SnapshotStore implements the interface.
var _ secondary.SnapshotStore = (*SnapshotStore)(nil)
