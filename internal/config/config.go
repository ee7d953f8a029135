// Package config provides application configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"synergism-calc/internal/errors"
	"synergism-calc/internal/logging"
)

// FileName is the default config file name in the user's home directory.
const FileName = ".synergism-calc.json"

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Inputs contains default input files
	Inputs InputsConfig `json:"inputs"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Server contains HTTP API configuration
	Server ServerConfig `json:"server"`

	// History contains report history configuration
	History HistoryConfig `json:"history"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// HistoryConfig selects where analyzed reports are kept
type HistoryConfig struct {
	// Backend is "file", "postgres" or "memory"
	Backend string `json:"backend"`

	// Dir is the file backend directory (default is $HOME/.synergism-calc/history)
	Dir string `json:"dir,omitempty"`

	// DSN is the postgres backend connection string
	DSN string `json:"dsn,omitempty"`

	// Profile is the profile reports are recorded under
	Profile string `json:"profile,omitempty"`
}

// Location returns the directory or DSN the backend opens.
func (h HistoryConfig) Location() string {
	if h.Backend == "postgres" {
		return h.DSN
	}
	return h.Path()
}

// Path returns the file backend directory.
func (h HistoryConfig) Path() string {
	if h.Dir != "" {
		return h.Dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".synergism-calc", "history")
	}
	return filepath.Join(home, ".synergism-calc", "history")
}

// InputsConfig names the files used when a command is given none
type InputsConfig struct {
	// Settings is the default settings file (JSON, YAML or HCL)
	Settings string `json:"settings,omitempty"`

	// Prices is the default price table file (CSV or YAML)
	Prices string `json:"prices,omitempty"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format"`

	// NoColor disables terminal colors
	NoColor bool `json:"no_color"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	// Address is the listen address
	Address string `json:"address"`

	// ReadTimeoutSeconds bounds reading a request
	ReadTimeoutSeconds int `json:"read_timeout_seconds"`

	// WriteTimeoutSeconds bounds writing a response
	WriteTimeoutSeconds int `json:"write_timeout_seconds"`

	// MaxBodyBytes bounds request bodies
	MaxBodyBytes int64 `json:"max_body_bytes"`

	// RequestsPerMinute limits analyze requests per client address (0 disables)
	RequestsPerMinute int `json:"requests_per_minute"`

	// RequestBurst is how many requests a client may send at once
	RequestBurst int `json:"request_burst"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Output: OutputConfig{
			DefaultFormat: "cli",
		},
		Server: ServerConfig{
			Address:             ":8080",
			ReadTimeoutSeconds:  30,
			WriteTimeoutSeconds: 60,
			MaxBodyBytes:        8 << 20,
			RequestsPerMinute:   60,
			RequestBurst:        10,
		},
		History: HistoryConfig{
			Backend: "file",
		},
		Logging: logging.DefaultConfig(),
	}
}

// DefaultPath returns the config path in the user's home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return FileName
	}
	return filepath.Join(home, FileName)
}

// Load loads configuration from a file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.Config("cannot read "+path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Config("invalid config "+path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later.
func (c *Config) Validate() error {
	if c.Server.MaxBodyBytes <= 0 {
		return errors.Config("server.max_body_bytes must be positive", nil)
	}
	if c.Server.ReadTimeoutSeconds < 0 || c.Server.WriteTimeoutSeconds < 0 {
		return errors.Config("server timeouts cannot be negative", nil)
	}
	if c.Server.RequestsPerMinute < 0 || c.Server.RequestBurst < 0 {
		return errors.Config("server rate limits cannot be negative", nil)
	}
	switch c.History.Backend {
	case "file", "memory":
	case "postgres":
		if c.History.DSN == "" {
			return errors.Config("history.dsn is required for the postgres backend", nil)
		}
	default:
		return errors.Config("history.backend must be file, postgres or memory, got "+c.History.Backend, nil)
	}
	return nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Config("cannot create "+dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Internal("cannot encode config", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Config("cannot write "+path, err)
	}
	return nil
}

var (
	mu           sync.RWMutex
	globalConfig = Default()
)

// Get returns the global configuration
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	mu.Lock()
	defer mu.Unlock()
	globalConfig = config
}
