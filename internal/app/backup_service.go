package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/example/guidebook/internal/ports/primary"
	"github.com/example/guidebook/internal/ports/secondary"
)

// BackupSettings locates the live data and bounds the archive.
type BackupSettings struct {
	DBPath   string
	MediaDir string
	Retain   int
}

// BackupServiceImpl implements the BackupService interface.
type BackupServiceImpl struct {
	snapshots secondary.SnapshotStore
	archive   secondary.BackupArchive
	settings  BackupSettings
	logger    *zap.Logger
}

// NewBackupService creates a new BackupService with injected dependencies.
func NewBackupService(
	snapshots secondary.SnapshotStore,
	archive secondary.BackupArchive,
	settings BackupSettings,
	logger *zap.Logger,
) *BackupServiceImpl {
	return &BackupServiceImpl{
		snapshots: snapshots,
		archive:   archive,
		settings:  settings,
		logger:    logger,
	}
}

// Backup snapshots the database and the media directory, then rotates old
// snapshots. Failures are reported in the result.
func (s *BackupServiceImpl) Backup(ctx context.Context) (*primary.BackupResult, error) {
	result, err := s.backup(ctx)
	if err != nil {
		s.logger.Error("backup failed", zap.Error(err))
		return &primary.BackupResult{Success: false, Message: err.Error()}, nil
	}
	return result, nil
}

func (s *BackupServiceImpl) backup(ctx context.Context) (*primary.BackupResult, error) {
	base := strings.TrimSuffix(filepath.Base(s.settings.DBPath), filepath.Ext(s.settings.DBPath))

	dbPath, err := s.archive.NewDatabasePath(base)
	if err != nil {
		return nil, err
	}
	if err := s.snapshots.SnapshotTo(ctx, dbPath); err != nil {
		return nil, err
	}

	mediaPath, err := s.archive.CopyMedia(ctx, s.settings.MediaDir)
	if err != nil {
		return nil, fmt.Errorf("database saved to %s but media copy failed: %w", dbPath, err)
	}

	removed, err := s.archive.Rotate(s.settings.Retain)
	if err != nil {
		s.logger.Warn("failed to rotate backups", zap.Error(err))
	}

	s.logger.Info("backup created",
		zap.String("database", dbPath),
		zap.String("media", mediaPath),
		zap.Int("rotated", removed))

	return &primary.BackupResult{
		Success:      true,
		Message:      fmt.Sprintf("Backup created: %s", filepath.Base(dbPath)),
		DatabasePath: dbPath,
		MediaPath:    mediaPath,
		Removed:      removed,
	}, nil
}

// Restore replaces the live database, and the media directory when mediaDir
// is given, after taking a safety backup of the current state.
func (s *BackupServiceImpl) Restore(ctx context.Context, dbPath, mediaDir string) (*primary.BackupResult, error) {
	if !s.snapshots.IsSnapshot(dbPath) {
		return &primary.BackupResult{
			Success: false,
			Message: fmt.Sprintf("%s is not a SQLite database", dbPath),
		}, nil
	}

	safety, err := s.backup(ctx)
	if err != nil {
		s.logger.Error("safety backup before restore failed", zap.Error(err))
		return &primary.BackupResult{
			Success: false,
			Message: fmt.Sprintf("safety backup failed, nothing restored: %v", err),
		}, nil
	}

	if err := s.snapshots.RestoreFrom(ctx, dbPath); err != nil {
		s.logger.Error("restore failed", zap.String("source", dbPath), zap.Error(err))
		return &primary.BackupResult{
			Success:      false,
			Message:      fmt.Sprintf("restore failed: %v (current state kept in %s)", err, filepath.Base(safety.DatabasePath)),
			DatabasePath: safety.DatabasePath,
		}, nil
	}

	if mediaDir != "" {
		if err := s.archive.ReplaceMedia(ctx, mediaDir, s.settings.MediaDir); err != nil {
			s.logger.Error("media restore failed", zap.String("source", mediaDir), zap.Error(err))
			return &primary.BackupResult{
				Success:      false,
				Message:      fmt.Sprintf("database restored but media restore failed: %v", err),
				DatabasePath: safety.DatabasePath,
				MediaPath:    safety.MediaPath,
			}, nil
		}
	}

	s.logger.Info("restore completed", zap.String("source", dbPath), zap.String("media", mediaDir))
	return &primary.BackupResult{
		Success:      true,
		Message:      fmt.Sprintf("Restored from %s", filepath.Base(dbPath)),
		DatabasePath: safety.DatabasePath,
		MediaPath:    safety.MediaPath,
	}, nil
}

// ListBackups retrieves the snapshots currently kept, newest first.
func (s *BackupServiceImpl) ListBackups(ctx context.Context) ([]*primary.BackupEntry, error) {
	entries, err := s.archive.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	out := make([]*primary.BackupEntry, len(entries))
	for i, e := range entries {
		out[i] = &primary.BackupEntry{
			Name:    e.Name,
			Path:    e.Path,
			IsMedia: e.IsMedia,
			ModTime: e.ModTime,
			Size:    e.Size,
		}
	}
	return out, nil
}

// Ensure BackupServiceImpl implements the interface
var _ primary.BackupService = (*BackupServiceImpl)(nil)
