// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the variable [Load] reads the config path
// from.
const EnvironmentVariable = "REMOTEFILE_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for CI and release builds.
	Production Environment = "production"
)

// Config is the master configuration for remotefile.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	// OutputRoot is the directory rule outputs are published under.
	OutputRoot string `yaml:"output_root"`

	// Concurrency bounds how many rules fetch at once.
	Concurrency int `yaml:"concurrency"`

	// HTTP configures the http and https transport.
	HTTP HTTPConfig `yaml:"http"`

	// Cache configures the local content-addressed download cache.
	Cache CacheConfig `yaml:"cache"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log"`

	// Tracing configures OpenTelemetry spans.
	Tracing TracingConfig `yaml:"tracing"`

	// Metrics configures the Prometheus textfile written after a run.
	Metrics MetricsConfig `yaml:"metrics"`

	// EnvironmentOverrides contains per-environment overrides.
	// These are applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	OutputRoot  string            `yaml:"output_root,omitempty"`
	Concurrency int               `yaml:"concurrency,omitempty"`
	HTTP        *HTTPConfig       `yaml:"http,omitempty"`
	Cache       *CacheConfig      `yaml:"cache,omitempty"`
	Log         *LogConfig        `yaml:"log,omitempty"`
	Tracing     *TracingOverrides `yaml:"tracing,omitempty"`
}

// TracingOverrides overrides tracing per environment. Enabled is a
// pointer so an override that only names an exporter leaves it alone.
type TracingOverrides struct {
	Enabled  *bool  `yaml:"enabled,omitempty"`
	Exporter string `yaml:"exporter,omitempty"`
}

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	// Timeout bounds a whole request including the body, as a Go
	// duration. "0" disables the limit.
	// Default: 10m
	Timeout string `yaml:"timeout"`

	// UserAgent is sent with every request.
	UserAgent string `yaml:"user_agent"`

	// MaxBytes caps the size of a response body. Zero means no cap.
	MaxBytes int64 `yaml:"max_bytes"`
}

// CacheConfig configures the download cache.
type CacheConfig struct {
	// Dir is the cache root. Empty disables the cache.
	Dir string `yaml:"dir"`

	// Compression is how blobs are stored: "zstd", "lz4", or "none".
	// Default: zstd
	Compression string `yaml:"compression"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	// Default: info
	Level string `yaml:"level"`

	// Format is "text", "json", or "auto" (text on a terminal, JSON
	// otherwise).
	// Default: auto (development), json (production)
	Format string `yaml:"format"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	// Enabled turns on span export.
	Enabled bool `yaml:"enabled"`

	// Exporter is "none" or "stdout".
	// Default: stdout
	Exporter string `yaml:"exporter"`
}

// MetricsConfig configures metrics output.
type MetricsConfig struct {
	// Textfile is where Prometheus text-format metrics are written at
	// the end of a run, for node_exporter's textfile collector. Empty
	// disables it.
	Textfile string `yaml:"textfile"`
}

// Default returns the default configuration.
// These defaults are used as a base before loading the config file,
// and on their own when no config file is given.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Environment: Development,
		OutputRoot:  "buck-out",
		Concurrency: 4,
		HTTP: HTTPConfig{
			Timeout:   "10m",
			UserAgent: "remotefile",
		},
		Cache: CacheConfig{
			Dir:         filepath.Join(homeDir, ".cache", "remotefile"),
			Compression: "zstd",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		Tracing: TracingConfig{
			Exporter: "stdout",
		},
	}
}

// Load loads configuration from the REMOTEFILE_CONFIG environment
// variable. There are no fallbacks: if the variable is not set, this
// fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your remotefile.yaml config file, or use --config flag", EnvironmentVariable)
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. The only expansion
// performed is ${HOME} and similar path variables for portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	// Apply environment-specific overrides (development/staging/production sections in the file).
	cfg.applyEnvironmentOverrides()

	// Expand ${HOME} and similar variables in paths for portability.
	cfg.expandVariables()

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		// Production defaults: machine-readable logs.
		if overrides == nil {
			overrides = &ConfigOverrides{
				Log: &LogConfig{Format: "json"},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.OutputRoot != "" {
		c.OutputRoot = overrides.OutputRoot
	}
	if overrides.Concurrency != 0 {
		c.Concurrency = overrides.Concurrency
	}

	if overrides.HTTP != nil {
		if overrides.HTTP.Timeout != "" {
			c.HTTP.Timeout = overrides.HTTP.Timeout
		}
		if overrides.HTTP.UserAgent != "" {
			c.HTTP.UserAgent = overrides.HTTP.UserAgent
		}
		if overrides.HTTP.MaxBytes != 0 {
			c.HTTP.MaxBytes = overrides.HTTP.MaxBytes
		}
	}

	if overrides.Cache != nil {
		if overrides.Cache.Dir != "" {
			c.Cache.Dir = overrides.Cache.Dir
		}
		if overrides.Cache.Compression != "" {
			c.Cache.Compression = overrides.Cache.Compression
		}
	}

	if overrides.Log != nil {
		if overrides.Log.Level != "" {
			c.Log.Level = overrides.Log.Level
		}
		if overrides.Log.Format != "" {
			c.Log.Format = overrides.Log.Format
		}
	}

	if overrides.Tracing != nil {
		if overrides.Tracing.Enabled != nil {
			c.Tracing.Enabled = *overrides.Tracing.Enabled
		}
		if overrides.Tracing.Exporter != "" {
			c.Tracing.Exporter = overrides.Tracing.Exporter
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"REMOTEFILE_OUTPUT_ROOT": c.OutputRoot,
		"HOME":                   os.Getenv("HOME"),
	}

	c.OutputRoot = expandVars(c.OutputRoot, vars)
	vars["REMOTEFILE_OUTPUT_ROOT"] = c.OutputRoot // Update for dependent paths.

	c.Cache.Dir = expandVars(c.Cache.Dir, vars)
	c.Metrics.Textfile = expandVars(c.Metrics.Textfile, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.OutputRoot == "" {
		errs = append(errs, errors.New("output_root is required"))
	}

	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency))
	}

	if _, err := c.HTTPTimeout(); err != nil {
		errs = append(errs, err)
	}
	if c.HTTP.MaxBytes < 0 {
		errs = append(errs, fmt.Errorf("http.max_bytes must not be negative, got %d", c.HTTP.MaxBytes))
	}

	compressionValues := []string{"zstd", "lz4", "none"}
	if !slices.Contains(compressionValues, c.Cache.Compression) {
		errs = append(errs, fmt.Errorf("cache.compression must be one of: %v", compressionValues))
	}

	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	formatValues := []string{"auto", "text", "json"}
	if !slices.Contains(formatValues, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of: %v", formatValues))
	}

	exporterValues := []string{"none", "stdout"}
	if !slices.Contains(exporterValues, c.Tracing.Exporter) {
		errs = append(errs, fmt.Errorf("tracing.exporter must be one of: %v", exporterValues))
	}

	return errors.Join(errs...)
}

// HTTPTimeout parses HTTP.Timeout. An empty value means no timeout.
func (c *Config) HTTPTimeout() (time.Duration, error) {
	if c.HTTP.Timeout == "" {
		return 0, nil
	}
	timeout, err := time.ParseDuration(c.HTTP.Timeout)
	if err != nil {
		return 0, fmt.Errorf("http.timeout: %w", err)
	}
	if timeout < 0 {
		return 0, fmt.Errorf("http.timeout must not be negative, got %s", timeout)
	}
	return timeout, nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// EnsurePaths creates the output root and cache directory if they
// don't exist.
func (c *Config) EnsurePaths() error {
	for _, path := range []string{c.OutputRoot, c.Cache.Dir} {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}
	return nil
}
