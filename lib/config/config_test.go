// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "remotefile.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return configPath
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}

	if cfg.Cache.Compression != "zstd" {
		t.Errorf("expected compression=zstd, got %s", cfg.Cache.Compression)
	}

	if cfg.Log.Format != "auto" {
		t.Errorf("expected log.format=auto, got %s", cfg.Log.Format)
	}

	if cfg.Tracing.Enabled {
		t.Error("expected tracing disabled by default")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_RequiresConfigVariable(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when REMOTEFILE_CONFIG not set, got nil")
	}

	expectedMsg := "REMOTEFILE_CONFIG environment variable not set"
	if !strings.HasPrefix(err.Error(), expectedMsg) {
		t.Errorf("expected error message to start with %q, got %q", expectedMsg, err.Error())
	}
}

func TestLoad_WithConfigVariable(t *testing.T) {
	configPath := writeConfig(t, `
environment: staging
output_root: /test/out
`)
	t.Setenv(EnvironmentVariable, configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Environment != Staging {
		t.Errorf("expected environment=staging, got %s", cfg.Environment)
	}

	if cfg.OutputRoot != "/test/out" {
		t.Errorf("expected output_root=/test/out, got %s", cfg.OutputRoot)
	}
}

func TestLoadFile(t *testing.T) {
	configPath := writeConfig(t, `
environment: staging

output_root: /custom/out
concurrency: 16

http:
  timeout: 90s
  user_agent: ci-fetcher/1.0
  max_bytes: 1048576

cache:
  dir: /var/cache/remotefile
  compression: lz4

log:
  level: debug
  format: text

tracing:
  enabled: true
  exporter: stdout

metrics:
  textfile: /var/lib/node_exporter/remotefile.prom
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.OutputRoot != "/custom/out" {
		t.Errorf("expected output_root=/custom/out, got %s", cfg.OutputRoot)
	}

	if cfg.Concurrency != 16 {
		t.Errorf("expected concurrency=16, got %d", cfg.Concurrency)
	}

	timeout, err := cfg.HTTPTimeout()
	if err != nil || timeout != 90*time.Second {
		t.Errorf("expected timeout=90s, got %v (%v)", timeout, err)
	}

	if cfg.HTTP.UserAgent != "ci-fetcher/1.0" || cfg.HTTP.MaxBytes != 1048576 {
		t.Errorf("unexpected http config %+v", cfg.HTTP)
	}

	if cfg.Cache.Dir != "/var/cache/remotefile" || cfg.Cache.Compression != "lz4" {
		t.Errorf("unexpected cache config %+v", cfg.Cache)
	}

	level, err := cfg.LogLevel()
	if err != nil || level != slog.LevelDebug {
		t.Errorf("expected level=debug, got %v (%v)", level, err)
	}

	if !cfg.Tracing.Enabled {
		t.Error("expected tracing enabled")
	}

	if cfg.Metrics.Textfile != "/var/lib/node_exporter/remotefile.prom" {
		t.Errorf("unexpected metrics textfile %s", cfg.Metrics.Textfile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	configPath := writeConfig(t, "output_root: [unterminated\n")
	if _, err := LoadFile(configPath); err == nil {
		t.Fatal("expected error for malformed YAML")
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	configPath := writeConfig(t, `
environment: production

output_root: /default/out

tracing:
  enabled: true

production:
  output_root: /prod/out
  concurrency: 32
  cache:
    compression: none
  log:
    level: warn
  tracing:
    enabled: false
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	// Production overrides should be applied.
	if cfg.OutputRoot != "/prod/out" {
		t.Errorf("expected output_root=/prod/out, got %s", cfg.OutputRoot)
	}

	if cfg.Concurrency != 32 {
		t.Errorf("expected concurrency=32, got %d", cfg.Concurrency)
	}

	if cfg.Cache.Compression != "none" {
		t.Errorf("expected compression=none, got %s", cfg.Cache.Compression)
	}

	if cfg.Log.Level != "warn" {
		t.Errorf("expected log.level=warn, got %s", cfg.Log.Level)
	}

	if cfg.Tracing.Enabled {
		t.Error("expected tracing disabled from production override")
	}
}

func TestTracingOverrideKeepsEnabled(t *testing.T) {
	configPath := writeConfig(t, `
environment: staging

tracing:
  enabled: true

staging:
  tracing:
    exporter: none
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if !cfg.Tracing.Enabled {
		t.Error("an exporter-only tracing override should not disable tracing")
	}
	if cfg.Tracing.Exporter != "none" {
		t.Errorf("expected tracing.exporter=none, got %s", cfg.Tracing.Exporter)
	}
}

func TestProductionDefaults(t *testing.T) {
	configPath := writeConfig(t, "environment: production\n")

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Log.Format != "json" {
		t.Errorf("expected production log.format=json, got %s", cfg.Log.Format)
	}
}

func TestEnvVarsDoNotOverride(t *testing.T) {
	// Environment variables that look like config keys are ignored.
	t.Setenv("REMOTEFILE_OUTPUT_ROOT", "/env/out")
	t.Setenv("REMOTEFILE_ENVIRONMENT", "staging")

	configPath := writeConfig(t, `
environment: development
output_root: /file/out
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Environment != Development {
		t.Errorf("expected environment=development from file, got %s (env vars should not override)", cfg.Environment)
	}

	if cfg.OutputRoot != "/file/out" {
		t.Errorf("expected output_root=/file/out from file, got %s (env vars should not override)", cfg.OutputRoot)
	}
}

func TestPathExpansion(t *testing.T) {
	t.Setenv("HOME", "/home/builder")

	configPath := writeConfig(t, `
output_root: ${HOME}/out
cache:
  dir: ${REMOTEFILE_OUTPUT_ROOT}/.cache
metrics:
  textfile: ${METRICS_DIR:-/tmp}/remotefile.prom
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.OutputRoot != "/home/builder/out" {
		t.Errorf("expected output_root=/home/builder/out, got %s", cfg.OutputRoot)
	}

	if cfg.Cache.Dir != "/home/builder/out/.cache" {
		t.Errorf("expected cache.dir under the output root, got %s", cfg.Cache.Dir)
	}

	if cfg.Metrics.Textfile != "/tmp/remotefile.prom" {
		t.Errorf("expected metrics.textfile=/tmp/remotefile.prom, got %s", cfg.Metrics.Textfile)
	}
}

func TestExpandVars(t *testing.T) {
	tests := []struct {
		input    string
		vars     map[string]string
		expected string
	}{
		{
			input:    "${HOME}/remotefile",
			vars:     map[string]string{"HOME": "/home/user"},
			expected: "/home/user/remotefile",
		},
		{
			input:    "${MISSING_REMOTEFILE_TEST_VAR:-default}",
			vars:     map[string]string{},
			expected: "default",
		},
		{
			input:    "${PRESENT:-default}",
			vars:     map[string]string{"PRESENT": "value"},
			expected: "value",
		},
		{
			input:    "${A}/${B}",
			vars:     map[string]string{"A": "first", "B": "second"},
			expected: "first/second",
		},
		{
			input:    "no variables here",
			vars:     map[string]string{},
			expected: "no variables here",
		},
	}

	for _, tt := range tests {
		result := expandVars(tt.input, tt.vars)
		if result != tt.expected {
			t.Errorf("expandVars(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "no timeout",
			modify:  func(c *Config) { c.HTTP.Timeout = "" },
			wantErr: false,
		},
		{
			name:    "invalid environment",
			modify:  func(c *Config) { c.Environment = "invalid" },
			wantErr: true,
		},
		{
			name:    "empty output root",
			modify:  func(c *Config) { c.OutputRoot = "" },
			wantErr: true,
		},
		{
			name:    "zero concurrency",
			modify:  func(c *Config) { c.Concurrency = 0 },
			wantErr: true,
		},
		{
			name:    "unparseable timeout",
			modify:  func(c *Config) { c.HTTP.Timeout = "soon" },
			wantErr: true,
		},
		{
			name:    "negative max bytes",
			modify:  func(c *Config) { c.HTTP.MaxBytes = -1 },
			wantErr: true,
		},
		{
			name:    "invalid compression",
			modify:  func(c *Config) { c.Cache.Compression = "gzip" },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			modify:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: true,
		},
		{
			name:    "invalid log format",
			modify:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: true,
		},
		{
			name:    "invalid exporter",
			modify:  func(c *Config) { c.Tracing.Exporter = "jaeger" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnsurePaths(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := Default()
	cfg.OutputRoot = filepath.Join(tmpDir, "out")
	cfg.Cache.Dir = filepath.Join(tmpDir, "cache", "remotefile")

	if err := cfg.EnsurePaths(); err != nil {
		t.Fatalf("EnsurePaths failed: %v", err)
	}

	// Verify directories were created.
	for _, path := range []string{cfg.OutputRoot, cfg.Cache.Dir} {
		info, err := os.Stat(path)
		if err != nil {
			t.Errorf("path %s not created: %v", path, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("path %s is not a directory", path)
		}
	}
}
