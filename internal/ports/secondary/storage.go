package secondary

import "context"

// MediaStore defines the secondary port for image file storage.
type MediaStore interface {
	// Save writes data under fileName and returns the absolute path.
	Save(ctx context.Context, fileName string, data []byte) (string, error)

	// Remove deletes a stored file. A missing file is not an error.
	Remove(ctx context.Context, path string) error

	// Open reads a stored file.
	Open(ctx context.Context, path string) ([]byte, error)

	// Dir returns the directory files are stored in.
	Dir() string
}

// SnapshotStore defines the secondary port for consistent database snapshots.
type SnapshotStore interface {
	// SnapshotTo writes a consistent copy of the live database to dest.
	SnapshotTo(ctx context.Context, dest string) error

	// RestoreFrom overwrites the live database with the contents of src.
	RestoreFrom(ctx context.Context, src string) error

	// IsSnapshot reports whether path looks like a database snapshot.
	IsSnapshot(path string) bool
}

// BackupArchive defines the secondary port for the backup directory.
type BackupArchive interface {
	// NewDatabasePath reserves a file name for a new database snapshot.
	NewDatabasePath(baseName string) (string, error)

	// CopyMedia copies the media directory into a new media snapshot and returns its path.
	CopyMedia(ctx context.Context, mediaDir string) (string, error)

	// ReplaceMedia replaces mediaDir with the contents of snapshotDir.
	ReplaceMedia(ctx context.Context, snapshotDir, mediaDir string) error

	// Rotate keeps the newest retain snapshots of each kind and returns how many were removed.
	Rotate(retain int) (int, error)

	// List retrieves the snapshots currently kept, newest first.
	List() ([]BackupEntry, error)

	// Dir returns the backup directory.
	Dir() string
}

// BackupEntry describes one snapshot in the backup directory.
type BackupEntry struct {
	Name    string
	Path    string
	IsMedia bool
	ModTime string
	Size    int64
}
