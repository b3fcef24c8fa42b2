// Package config loads runtime configuration from defaults, an optional YAML
// file, and environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config defines runtime settings for the local store and CLI.
type Config struct {
	DataDir  string `yaml:"data_dir" env:"STITCHLOOM_DATA_DIR"`
	DBFile   string `yaml:"db_file" env:"STITCHLOOM_DB_FILE"`
	LogLevel string `yaml:"log_level" env:"STITCHLOOM_LOG_LEVEL"`

	SessionTTL time.Duration `yaml:"session_ttl" env:"STITCHLOOM_SESSION_TTL"`

	LoginWindow   time.Duration `yaml:"login_window" env:"STITCHLOOM_LOGIN_WINDOW"`
	LoginMaxFails int           `yaml:"login_max_fails" env:"STITCHLOOM_LOGIN_MAX_FAILS"`
	LoginLockFor  time.Duration `yaml:"login_lock_for" env:"STITCHLOOM_LOGIN_LOCK_FOR"`
}

// Load reads configuration. A YAML file pointed to by STITCHLOOM_CONFIG, if
// set, overrides the defaults; environment variables override both.
func Load() (Config, error) {
	cfg := Config{
		DBFile:        "stitchloom.db",
		LogLevel:      "info",
		SessionTTL:    30 * 24 * time.Hour,
		LoginWindow:   15 * time.Minute,
		LoginMaxFails: 5,
		LoginLockFor:  15 * time.Minute,
	}

	if dir, err := os.UserConfigDir(); err == nil {
		cfg.DataDir = filepath.Join(dir, "stitchloom")
	} else {
		cfg.DataDir = ".stitchloom"
	}

	if path := os.Getenv("STITCHLOOM_CONFIG"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// DBPath returns the full path of the SQLite file.
func (c Config) DBPath() string { return filepath.Join(c.DataDir, c.DBFile) }

func loadFromFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}
