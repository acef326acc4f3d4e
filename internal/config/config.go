package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all mechbus settings.
type Config struct {
	Logging LoggingConfig `toml:"logging"`
	Console ConsoleConfig `toml:"console"`
	Journal JournalConfig `toml:"journal"`
	Scripts ScriptsConfig `toml:"scripts"`
}

// LoggingConfig configures the application logger.
type LoggingConfig struct {
	Level  string `toml:"level" env:"MECHBUS_LOG_LEVEL"`
	Prefix string `toml:"prefix" env:"MECHBUS_LOG_PREFIX"`
}

// ConsoleConfig configures the console subscriber.
type ConsoleConfig struct {
	Enabled bool `toml:"enabled" env:"MECHBUS_CONSOLE"`

	// Filter limits console output to topics starting with it.
	Filter string `toml:"filter" env:"MECHBUS_CONSOLE_FILTER"`
}

// JournalConfig configures the SQLite message journal.
type JournalConfig struct {
	Enabled bool   `toml:"enabled" env:"MECHBUS_JOURNAL"`
	Path    string `toml:"path" env:"MECHBUS_JOURNAL_PATH"`
}

// ScriptsConfig configures Lua subscribers.
type ScriptsConfig struct {
	Paths   []string `toml:"paths" env:"MECHBUS_SCRIPTS" envSeparator:","`
	Watch   bool     `toml:"watch" env:"MECHBUS_SCRIPT_WATCH"`
	Timeout string   `toml:"timeout" env:"MECHBUS_SCRIPT_TIMEOUT"`
}

// TimeoutDuration returns the parsed script timeout. Validate guarantees
// it parses.
func (s ScriptsConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return time.Second
	}
	return d
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Prefix: "mechbus"},
		Console: ConsoleConfig{Enabled: true},
		Journal: JournalConfig{Path: "mechbus.db"},
		Scripts: ScriptsConfig{Timeout: "1s"},
	}
}

// Load reads the TOML file at path over the defaults, applies environment
// overrides, and validates the result. An empty path or a missing file
// leaves the defaults in place.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := cfg.decode(path, data); err != nil {
				return nil, err
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML data over the defaults without consulting the
// environment.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode("<data>", data); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode unmarshals data into c, rejecting unknown keys.
func (c *Config) decode(source string, data []byte) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return perr
	}
	return nil
}

// ApplyEnv overrides settings from MECHBUS_* environment variables.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks the settings.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalid, c.Logging.Level)
	}

	if c.Journal.Enabled && c.Journal.Path == "" {
		return fmt.Errorf("%w: journal enabled without a path", ErrInvalid)
	}

	d, err := time.ParseDuration(c.Scripts.Timeout)
	if err != nil {
		return fmt.Errorf("%w: script timeout %q: %v", ErrInvalid, c.Scripts.Timeout, err)
	}
	if d <= 0 {
		return fmt.Errorf("%w: script timeout must be positive", ErrInvalid)
	}
	return nil
}
