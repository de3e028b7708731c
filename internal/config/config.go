// Package config loads process settings from an optional YAML file and the
// environment. Environment variables take precedence over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"tasklist/internal/logger"
	"tasklist/internal/store"
)

// Config is the full process configuration.
type Config struct {
	Server ServerConfig  `yaml:"server"`
	Store  StoreConfig   `yaml:"store"`
	Log    logger.Config `yaml:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StoreConfig selects the task store backend.
type StoreConfig struct {
	Driver          string        `yaml:"driver"`
	Path            string        `yaml:"path"`
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            "8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Driver: store.DriverSQLite,
			Path:   "./data/tasklist.db",
		},
		Log: logger.Config{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path, if any, then applies environment
// overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		cfg.resolvePaths(filepath.Dir(path))
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// resolvePaths makes a relative database path relative to the config file.
func (c *Config) resolvePaths(baseDir string) {
	p := c.Store.Path
	if p == "" || p == ":memory:" || strings.HasPrefix(p, "file:") || filepath.IsAbs(p) {
		return
	}
	c.Store.Path = filepath.Join(baseDir, p)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	getEnv := func(key string, target *string) {
		if value, ok := lookup(key); ok && value != "" {
			*target = value
		}
	}

	getEnv("PORT", &c.Server.Port)
	getEnv("DB_DRIVER", &c.Store.Driver)
	getEnv("DB_PATH", &c.Store.Path)
	getEnv("DB_DSN", &c.Store.DSN)
	getEnv("LOG_LEVEL", &c.Log.Level)
	getEnv("LOG_FORMAT", &c.Log.Format)
	getEnv("LOG_FILE", &c.Log.File)

	if value, ok := lookup("SHUTDOWN_TIMEOUT"); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid SHUTDOWN_TIMEOUT %q: %w", value, err)
		}
		c.Server.ShutdownTimeout = d
	}

	if value, ok := lookup("DB_MAX_OPEN_CONNS"); ok && value != "" {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DB_MAX_OPEN_CONNS %q: %w", value, err)
		}
		c.Store.MaxOpenConns = n
	}

	return nil
}

// Validate checks that the configuration can be used to start the process.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Port) == "" {
		return errors.New("server port is required")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("server port must be numeric, got %q", c.Server.Port)
	}

	if !store.IsSupportedDriver(c.Store.Driver) {
		return fmt.Errorf("unsupported store driver %q", c.Store.Driver)
	}
	if c.Store.Driver == store.DriverMySQL && strings.TrimSpace(c.Store.DSN) == "" {
		return errors.New("store dsn is required for the mysql driver")
	}

	return nil
}

// StoreConfig converts the store section to store.Config.
func (c Config) StoreConfig() store.Config {
	return store.Config{
		Driver:          c.Store.Driver,
		Path:            c.Store.Path,
		DSN:             c.Store.DSN,
		MaxOpenConns:    c.Store.MaxOpenConns,
		MaxIdleConns:    c.Store.MaxIdleConns,
		ConnMaxLifetime: c.Store.ConnMaxLifetime,
	}
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Server.Port
}
