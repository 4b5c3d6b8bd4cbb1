package primary

import "context"

// BackupService defines the primary port for database and media backups.
type BackupService interface {
	// Backup takes a database and a media snapshot and rotates old ones.
	Backup(ctx context.Context) (*BackupResult, error)

	// Restore replaces the live database with a snapshot, and the media
	// directory with mediaDir when it is not empty. A safety backup is taken first.
	Restore(ctx context.Context, dbPath, mediaDir string) (*BackupResult, error)

	// ListBackups retrieves the snapshots currently kept, newest first.
	ListBackups(ctx context.Context) ([]*BackupEntry, error)
}

// BackupResult reports the outcome of a backup or restore.
type BackupResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	DatabasePath string `json:"database_path,omitempty"`
	MediaPath    string `json:"media_path,omitempty"`
	Removed      int    `json:"removed,omitempty"`
}

// BackupEntry describes one kept snapshot.
type BackupEntry struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	IsMedia bool   `json:"is_media"`
	ModTime string `json:"mod_time"`
	Size    int64  `json:"size"`
}
