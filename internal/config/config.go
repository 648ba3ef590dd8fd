// Package config loads the service configuration (TOML) and scenario files (YAML).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

const (
	defaultLogLevel      = "info"
	defaultStore         = "memory"
	defaultDBPath        = "fuzzylight.db"
	defaultExportsDir    = "exports"
	defaultListenAddress = "127.0.0.1:8080"
)

type Config struct {
	LogLevel      string `toml:"log_level,omitempty"`
	Store         string `toml:"store,omitempty"`
	DBPath        string `toml:"db_path,omitempty"`
	ExportsDir    string `toml:"exports_dir,omitempty"`
	ListenAddress string `toml:"listen_address,omitempty"`
}

func Default() Config {
	return Config{
		LogLevel:      defaultLogLevel,
		Store:         defaultStore,
		DBPath:        defaultDBPath,
		ExportsDir:    defaultExportsDir,
		ListenAddress: defaultListenAddress,
	}
}

// Load reads a TOML file over the defaults. An empty path yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load configuration: %w", err)
	}
	return Parse(raw)
}

// Parse decodes TOML over the defaults, rejecting unknown keys.
func Parse(raw []byte) (Config, error) {
	cfg := Default()
	err := toml.NewDecoder(bytes.NewReader(raw)).DisallowUnknownFields().Decode(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	switch c.Store {
	case "memory":
	case "sqlite":
		if c.DBPath == "" {
			return errors.New("db_path is required for the sqlite store")
		}
	default:
		return fmt.Errorf("invalid store %q", c.Store)
	}
	return nil
}
