package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/example/guidebook/internal/apperr"
	"github.com/example/guidebook/internal/config"
	"github.com/example/guidebook/internal/ports/primary"
)

// SystemServiceImpl implements the SystemService interface.
type SystemServiceImpl struct {
	cfg    *config.Config
	loader config.Loader
	logger *zap.Logger
}

// NewSystemService creates a new SystemService for the running configuration.
func NewSystemService(cfg *config.Config, loader config.Loader, logger *zap.Logger) *SystemServiceImpl {
	return &SystemServiceImpl{cfg: cfg, loader: loader, logger: logger}
}

// GetDataRoot reports the storage layout in use.
func (s *SystemServiceImpl) GetDataRoot(ctx context.Context) (*primary.DataRoot, error) {
	paths, err := s.cfg.Paths()
	if err != nil {
		return nil, err
	}
	return pathsToDataRoot(paths), nil
}

// SetCustomDataPath stores path as the data root in the config file.
// The running process keeps its current root until restarted.
func (s *SystemServiceImpl) SetCustomDataPath(ctx context.Context, path string) (*primary.DataRoot, error) {
	if strings.TrimSpace(path) == "" {
		return nil, apperr.Invalid("data path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data root: %w", err)
	}

	saved, err := s.loader.Load()
	if err != nil {
		return nil, err
	}
	saved.DataPath = abs
	if err := s.loader.Save(saved); err != nil {
		return nil, err
	}

	s.logger.Info("custom data path saved", zap.String("path", abs))

	paths, err := saved.Paths()
	if err != nil {
		return nil, err
	}
	root := pathsToDataRoot(paths)
	root.RestartRequired = true
	return root, nil
}

func pathsToDataRoot(p config.Paths) *primary.DataRoot {
	return &primary.DataRoot{
		Root:         p.Root,
		DatabasePath: p.DBPath,
		MediaDir:     p.MediaDir,
		BackupDir:    p.BackupDir,
		IsCustom:     p.IsCustom,
	}
}

// Ensure SystemServiceImpl implements the interface
var _ primary.SystemService = (*SystemServiceImpl)(nil)
