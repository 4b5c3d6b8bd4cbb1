package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)

	// Save writes cfg to the config file, creating the directory if needed.
	Save(cfg *Config) error

	// Dir returns the directory holding config.yaml.
	Dir() string
}

type loader struct {
	configDir string
}

// NewLoader creates a configuration loader rooted at configDir.
func NewLoader(configDir string) Loader {
	return &loader{configDir: configDir}
}

// DefaultConfigDir returns $GUIDEBOOK_CONFIG_DIR, or <user config dir>/guidebook.
func DefaultConfigDir() (string, error) {
	if dir := os.Getenv("GUIDEBOOK_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(base, "guidebook"), nil
}

func (l *loader) Dir() string { return l.configDir }

func (l *loader) newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(l.configDir)

	v.SetEnvPrefix("GUIDEBOOK")
	v.AutomaticEnv()
	// GUIDEBOOK_SERVER_ADDR -> server.addr
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	return v
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (GUIDEBOOK_*)
// 2. Config file (<config dir>/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := l.newViper()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save persists cfg as <config dir>/config.yaml.
func (l *loader) Save(cfg *Config) error {
	if err := Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := os.MkdirAll(l.configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("data_path", cfg.DataPath)
	v.Set("db_file", cfg.DBFile)
	v.Set("server.addr", cfg.Server.Addr)
	v.Set("backup.retain", cfg.Backup.Retain)
	v.Set("backup.on_startup", cfg.Backup.OnStartup)
	v.Set("import.patterns", cfg.Import.Patterns)
	v.Set("log.mode", cfg.Log.Mode)

	path := filepath.Join(l.configDir, "config.yaml")
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("data_path", defaults.DataPath)
	v.SetDefault("db_file", defaults.DBFile)
	v.SetDefault("server.addr", defaults.Server.Addr)
	v.SetDefault("backup.retain", defaults.Backup.Retain)
	v.SetDefault("backup.on_startup", defaults.Backup.OnStartup)
	v.SetDefault("import.patterns", defaults.Import.Patterns)
	v.SetDefault("log.mode", defaults.Log.Mode)
}

// LoadConfig loads configuration from the default config directory.
func LoadConfig() (*Config, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return nil, err
	}
	return NewLoader(dir).Load()
}
