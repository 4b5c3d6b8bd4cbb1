package primary

import "context"

// SystemService defines the primary port for data root settings.
type SystemService interface {
	// GetDataRoot reports where the database, media and backups live.
	GetDataRoot(ctx context.Context) (*DataRoot, error)

	// SetCustomDataPath persists a custom data root. It takes effect on next start.
	SetCustomDataPath(ctx context.Context, path string) (*DataRoot, error)
}

// DataRoot describes the effective storage layout.
type DataRoot struct {
	Root            string `json:"root"`
	DatabasePath    string `json:"database_path"`
	MediaDir        string `json:"media_dir"`
	BackupDir       string `json:"backup_dir"`
	IsCustom        bool   `json:"is_custom"`
	RestartRequired bool   `json:"restart_required,omitempty"`
}
