// Package config loads the orderkey CLI configuration from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied to fields the file leaves unset.
const (
	DefaultDatabase    = "orderkey.db"
	DefaultRetries     = 3
	DefaultLockTimeout = 5 * time.Second
	DefaultLogLevel    = "info"
)

// Config holds the settings shared by the list commands.
type Config struct {
	Database    string        `yaml:"database"`
	Retries     int           `yaml:"retries"`
	LockTimeout time.Duration `yaml:"lock_timeout"`
	LogLevel    string        `yaml:"log_level"`
}

// Default returns a Config with every field at its default.
func Default() Config {
	return Config{
		Database:    DefaultDatabase,
		Retries:     DefaultRetries,
		LockTimeout: DefaultLockTimeout,
		LogLevel:    DefaultLogLevel,
	}
}

// Load reads the YAML file at path over the defaults. An empty path or a
// missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Database    string `yaml:"database"`
		Retries     *int   `yaml:"retries"`
		LockTimeout string `yaml:"lock_timeout"`
		LogLevel    string `yaml:"log_level"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if raw.Database != "" {
		cfg.Database = raw.Database
	}
	if raw.Retries != nil {
		cfg.Retries = *raw.Retries
	}
	if raw.LockTimeout != "" {
		d, err := time.ParseDuration(raw.LockTimeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse config %s: lock_timeout: %w", path, err)
		}
		cfg.LockTimeout = d
	}
	if raw.LogLevel != "" {
		cfg.LogLevel = raw.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Database == "" {
		return errors.New("database must not be empty")
	}
	if c.Retries < 1 {
		return fmt.Errorf("retries must be at least 1, got %d", c.Retries)
	}
	if c.LockTimeout <= 0 {
		return fmt.Errorf("lock_timeout must be positive, got %s", c.LockTimeout)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a log_level value to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log_level %q: must be one of debug, info, warn, error", s)
	}
}
