// Package config loads guidebook settings from config.yaml and GUIDEBOOK_* env vars.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDBFile is the database file name inside the data root.
const DefaultDBFile = "guidebook.db"

// Config represents the guidebook configuration.
type Config struct {
	DataPath string       `yaml:"data_path" mapstructure:"data_path"` // custom data root, empty = ~/.guidebook
	DBFile   string       `yaml:"db_file" mapstructure:"db_file"`
	Server   ServerConfig `yaml:"server" mapstructure:"server"`
	Backup   BackupConfig `yaml:"backup" mapstructure:"backup"`
	Import   ImportConfig `yaml:"import" mapstructure:"import"`
	Log      LogConfig    `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures `guidebook serve`.
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// BackupConfig configures snapshot rotation.
type BackupConfig struct {
	Retain    int  `yaml:"retain" mapstructure:"retain"`         // generations kept per kind
	OnStartup bool `yaml:"on_startup" mapstructure:"on_startup"` // snapshot when the server starts
}

// ImportConfig configures folder import.
type ImportConfig struct {
	Patterns []string `yaml:"patterns" mapstructure:"patterns"` // glob patterns for manual files
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Mode string `yaml:"mode" mapstructure:"mode"` // "development" or "production"
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		DBFile: DefaultDBFile,
		Server: ServerConfig{Addr: "127.0.0.1:8420"},
		Backup: BackupConfig{Retain: 10, OnStartup: true},
		Import: ImportConfig{Patterns: []string{"*.{md,txt}"}},
		Log:    LogConfig{Mode: "development"},
	}
}

// DefaultDataRoot returns ~/.guidebook.
func DefaultDataRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".guidebook"), nil
}

// DataRoot returns the effective data root: the custom path when set,
// otherwise the default.
func (c *Config) DataRoot() (string, error) {
	if c.DataPath != "" {
		return c.DataPath, nil
	}
	return DefaultDataRoot()
}

// Paths resolves every on-disk location derived from the data root.
func (c *Config) Paths() (Paths, error) {
	root, err := c.DataRoot()
	if err != nil {
		return Paths{}, err
	}
	return Paths{
		Root:      root,
		DBPath:    filepath.Join(root, c.DBFile),
		MediaDir:  filepath.Join(root, "media"),
		BackupDir: filepath.Join(root, "backups"),
		IsCustom:  c.DataPath != "",
	}, nil
}

// Paths holds the persisted state layout.
type Paths struct {
	Root      string
	DBPath    string
	MediaDir  string
	BackupDir string
	IsCustom  bool
}

// EnsureDirs creates the data root, media and backup directories.
func (p Paths) EnsureDirs() error {
	for _, dir := range []string{p.Root, p.MediaDir, p.BackupDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}
