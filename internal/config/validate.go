package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// Validate checks a loaded configuration and reports every problem found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.DataPath != "" && !filepath.IsAbs(cfg.DataPath) {
		errs = append(errs, fmt.Errorf("data_path must be absolute, got %q", cfg.DataPath))
	}
	if cfg.DBFile == "" || strings.ContainsAny(cfg.DBFile, `/\`) {
		errs = append(errs, fmt.Errorf("db_file must be a bare file name, got %q", cfg.DBFile))
	}
	if cfg.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if cfg.Backup.Retain < 1 {
		errs = append(errs, fmt.Errorf("backup.retain must be at least 1, got %d", cfg.Backup.Retain))
	}
	if len(cfg.Import.Patterns) == 0 {
		errs = append(errs, errors.New("import.patterns must not be empty"))
	}
	for _, p := range cfg.Import.Patterns {
		if _, err := glob.Compile(p); err != nil {
			errs = append(errs, fmt.Errorf("import.patterns: invalid glob %q: %w", p, err))
		}
	}
	switch strings.ToLower(cfg.Log.Mode) {
	case "development", "dev", "production", "prod":
	default:
		errs = append(errs, fmt.Errorf("log.mode must be development or production, got %q", cfg.Log.Mode))
	}

	return errors.Join(errs...)
}
