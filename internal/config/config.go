// Package config loads driftcrew settings from a YAML file and the
// environment. Environment variables win over the file; the file wins over
// the built-in defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/roach88/driftcrew/internal/ledger"
)

// DefaultDB is the database path used when neither the file nor the
// environment names one.
const DefaultDB = "driftcrew.db"

// Config holds process-wide settings.
type Config struct {
	// DB is the SQLite database path.
	DB string `yaml:"db" env:"DRIFTCREW_DB"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" env:"DRIFTCREW_LOG_LEVEL"`

	// Seed seeds the dice of newly created campaigns. Zero picks a
	// random seed.
	Seed uint64 `yaml:"seed" env:"DRIFTCREW_SEED"`

	// Tables and Catalog replace the bundled roll tables (CUE) and item
	// catalog (YAML) when set.
	Tables  string `yaml:"tables" env:"DRIFTCREW_TABLES"`
	Catalog string `yaml:"catalog" env:"DRIFTCREW_CATALOG"`

	// Rates overrides economy constants. Fields absent from the file keep
	// their default values.
	Rates ledger.Rates `yaml:"rates"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		DB:       DefaultDB,
		LogLevel: "info",
		Rates:    ledger.DefaultRates(),
	}
}

// Load reads path, then applies environment overrides. An empty path or a
// missing file yields the defaults plus environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := decode(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decode unmarshals data over cfg. Unknown keys are rejected so a typo in a
// rate name does not silently fall back to the default.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ParseLevel maps a configured level name onto a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", name)
	}
}
