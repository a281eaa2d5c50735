package config

import (
	"bytes"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/vstore/internal/errors"
	"github.com/vango-dev/vstore/pkg/equality"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Name != DefaultName {
		t.Errorf("Name = %q, want %q", cfg.Name, DefaultName)
	}
	if cfg.Inspector.Addr != DefaultInspectorAddr {
		t.Errorf("Inspector.Addr = %q, want %q", cfg.Inspector.Addr, DefaultInspectorAddr)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should default to true")
	}
	if cfg.Tracing.Enabled {
		t.Error("Tracing.Enabled should default to false")
	}
	if cfg.Policy() != equality.Shallow {
		t.Errorf("Policy() = %v, want shallow", cfg.Policy())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "json",
			file: "vstore.json",
			content: `{
  "name": "todos",
  "equality": "deep",
  "log": {"level": "debug", "format": "json"},
  "inspector": {"addr": ":9000", "allowOrigins": ["http://localhost:3000"]},
  "metrics": {"enabled": false},
  "tracing": {"enabled": true}
}
`,
		},
		{
			name: "toml",
			file: "vstore.toml",
			content: `name = "todos"
equality = "deep"

[log]
level = "debug"
format = "json"

[inspector]
addr = ":9000"
allowOrigins = ["http://localhost:3000"]

[metrics]
enabled = false

[tracing]
enabled = true
`,
		},
		{
			name: "yaml",
			file: "vstore.yaml",
			content: `name: todos
equality: deep
log:
  level: debug
  format: json
inspector:
  addr: ":9000"
  allowOrigins:
    - http://localhost:3000
metrics:
  enabled: false
tracing:
  enabled: true
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, tt.file, tt.content)

			cfg, err := Load(dir)
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}

			if cfg.Name != "todos" {
				t.Errorf("Name = %q, want %q", cfg.Name, "todos")
			}
			if cfg.Policy() != equality.Deep {
				t.Errorf("Policy() = %v, want deep", cfg.Policy())
			}
			if cfg.LogLevel() != slog.LevelDebug {
				t.Errorf("LogLevel() = %v, want debug", cfg.LogLevel())
			}
			if cfg.Inspector.Addr != ":9000" {
				t.Errorf("Inspector.Addr = %q, want %q", cfg.Inspector.Addr, ":9000")
			}
			if len(cfg.Inspector.AllowOrigins) != 1 || cfg.Inspector.AllowOrigins[0] != "http://localhost:3000" {
				t.Errorf("Inspector.AllowOrigins = %v", cfg.Inspector.AllowOrigins)
			}
			if cfg.Metrics.Enabled {
				t.Error("Metrics.Enabled should be false")
			}
			if cfg.Metrics.Namespace != DefaultMetricsNamespace {
				t.Errorf("Metrics.Namespace = %q, want default", cfg.Metrics.Namespace)
			}
			if !cfg.Tracing.Enabled {
				t.Error("Tracing.Enabled should be true")
			}
			if cfg.Path() != filepath.Join(dir, tt.file) {
				t.Errorf("Path() = %q", cfg.Path())
			}
			if cfg.Dir() != dir {
				t.Errorf("Dir() = %q, want %q", cfg.Dir(), dir)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("Validate error: %v", err)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing config")
	}
	if !stderrors.Is(err, errors.ErrConfigRead) {
		t.Errorf("expected S120, got %v", err)
	}
}

func TestLoadPrefersJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "vstore.yaml", "name: from-yaml\n")
	writeFile(t, dir, "vstore.json", `{"name": "from-json"}`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Name != "from-json" {
		t.Errorf("Name = %q, want %q", cfg.Name, "from-json")
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		want    error
	}{
		{"unsupported extension", "vstore.ini", "name=x", errors.ErrConfigFormat},
		{"invalid json", "bad.json", "{", errors.ErrConfigRead},
		{"unknown json key", "extra.json", `{"port": 1}`, errors.ErrConfigRead},
		{"invalid toml", "bad.toml", "name = ", errors.ErrConfigRead},
		{"unknown toml key", "extra.toml", "port = 1\n", errors.ErrConfigRead},
		{"unknown yaml key", "extra.yml", "port: 1\n", errors.ErrConfigRead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.content)
			_, err := LoadFile(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !stderrors.Is(err, tt.want) {
				t.Errorf("LoadFile error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEmptyFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "vstore.yml", "")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if cfg.Name != DefaultName || cfg.Inspector.Addr != DefaultInspectorAddr {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		detail string
	}{
		{"bad equality", func(c *Config) { c.Equality = "strict" }, "equality"},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"empty addr", func(c *Config) { c.Inspector.Addr = "" }, "inspector.addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !stderrors.Is(err, errors.ErrConfigInvalid) {
				t.Fatalf("Validate error = %v, want S122", err)
			}
			var se *errors.StoreError
			if !stderrors.As(err, &se) || !strings.Contains(se.Detail, tt.detail) {
				t.Errorf("expected detail mentioning %q, got %v", tt.detail, err)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	cfg := New()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"

	var buf bytes.Buffer
	logger := cfg.Logger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "store", "todos")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"store":"todos"`) {
		t.Errorf("expected JSON record, got %q", out)
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	if Exists(dir) {
		t.Error("Exists should be false for an empty directory")
	}
	writeFile(t, dir, "vstore.toml", "name = \"x\"\n")
	if !Exists(dir) {
		t.Error("Exists should be true once vstore.toml is present")
	}
}
