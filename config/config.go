// Package config holds the application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

// Config is the application configuration, read from a YAML file and
// overridable by flags.
type Config struct {
	// DataDir is where the ledger documents live.
	DataDir string `yaml:"dataDir"`

	// Store selects the persistence backend, json or sqlite.
	Store string `yaml:"store"`

	// DBPath is the SQLite database file, relative to DataDir unless
	// absolute. Ignored by the json backend.
	DBPath string `yaml:"dbPath"`

	// Currency is the reporting fiat currency.
	Currency string `yaml:"currency"`

	Log LogConfig `yaml:"log"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the configuration used when no file exists.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		DataDir:  filepath.Join(home, ".coinfolio"),
		Store:    StoreJSON,
		DBPath:   "coinfolio.db",
		Currency: "USD",
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Validate checks the configuration for values the application cannot run
// with.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("dataDir must not be empty")
	}
	switch c.Store {
	case StoreJSON, StoreSQLite:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store)
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// SQLitePath resolves the database path against DataDir.
func (c Config) SQLitePath() string {
	if filepath.IsAbs(c.DBPath) {
		return c.DBPath
	}
	return filepath.Join(c.DataDir, c.DBPath)
}

// Load reads the configuration from path, falling back to defaults when the
// file does not exist. Fields absent from the file keep their defaults.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}
