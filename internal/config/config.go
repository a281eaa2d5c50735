package config

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vstore/internal/errors"
	"github.com/vango-dev/vstore/pkg/equality"
)

const (
	// ConfigBaseName is the base name of the configuration file. Load looks
	// for it with each supported extension in FileExtensions order.
	ConfigBaseName = "vstore"

	// DefaultName is the store name used when none is configured.
	DefaultName = "vstore"

	// DefaultInspectorAddr is the default inspector listen address.
	DefaultInspectorAddr = "localhost:7070"

	// DefaultMetricsNamespace is the default Prometheus namespace.
	DefaultMetricsNamespace = "vstore"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "github.com/vango-dev/vstore"
)

// FileExtensions are the supported config file extensions, in lookup order.
var FileExtensions = []string{".json", ".toml", ".yaml", ".yml"}

// Config represents a vstore configuration file.
type Config struct {
	// Name is the name of the served store.
	Name string `json:"name,omitempty" toml:"name" yaml:"name,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty" toml:"log" yaml:"log,omitempty"`

	// Equality is the default equality policy for inspector watches
	// ("shallow" or "deep").
	Equality string `json:"equality,omitempty" toml:"equality" yaml:"equality,omitempty"`

	// Inspector contains inspector server configuration.
	Inspector InspectorConfig `json:"inspector,omitempty" toml:"inspector" yaml:"inspector,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty" toml:"metrics" yaml:"metrics,omitempty"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing,omitempty" toml:"tracing" yaml:"tracing,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level,omitempty" toml:"level" yaml:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty" toml:"format" yaml:"format,omitempty"`
}

// InspectorConfig contains inspector server settings.
type InspectorConfig struct {
	// Addr is the address the inspector listens on.
	Addr string `json:"addr,omitempty" toml:"addr" yaml:"addr,omitempty"`

	// AllowOrigins are the origins allowed to open /watch websockets.
	// Empty means same-origin only.
	AllowOrigins []string `json:"allowOrigins,omitempty" toml:"allowOrigins" yaml:"allowOrigins,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled controls whether store instruments are registered.
	Enabled bool `json:"enabled" toml:"enabled" yaml:"enabled"`

	// Namespace is the Prometheus namespace.
	Namespace string `json:"namespace,omitempty" toml:"namespace" yaml:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// Enabled controls whether notification passes are traced.
	Enabled bool `json:"enabled" toml:"enabled" yaml:"enabled"`

	// Name is the tracer name.
	Name string `json:"name,omitempty" toml:"name" yaml:"name,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Name: DefaultName,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Equality: equality.Shallow.String(),
		Inspector: InspectorConfig{
			Addr: DefaultInspectorAddr,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultMetricsNamespace,
		},
		Tracing: TracingConfig{
			Name: DefaultTracerName,
		},
	}
}

// Load reads configuration from the specified directory. It uses the first
// of vstore.json, vstore.toml, vstore.yaml and vstore.yml that exists.
func Load(dir string) (*Config, error) {
	for _, ext := range FileExtensions {
		path := filepath.Join(dir, ConfigBaseName+ext)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("S120").
		WithDetail("No vstore config found in " + dir).
		WithSuggestion("Create vstore.json, vstore.toml or vstore.yaml, or pass --config")
}

// Exists reports whether dir contains a config file Load would read.
func Exists(dir string) bool {
	for _, ext := range FileExtensions {
		if _, err := os.Stat(filepath.Join(dir, ConfigBaseName+ext)); err == nil {
			return true
		}
	}
	return false
}

// LoadFile reads configuration from the specified file path. The format is
// chosen by the file extension.
func LoadFile(path string) (*Config, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !supported(ext) {
		return nil, errors.New("S121").
			WithDetail("Unsupported config extension " + ext + " in " + path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("S120").Wrap(err)
	}

	cfg := New()
	if err := decode(ext, data, cfg); err != nil {
		return nil, errors.New("S120").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check the file syntax and that every key is a known setting")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

func supported(ext string) bool {
	for _, e := range FileExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// decode parses data into cfg. Keys absent from the file keep their defaults;
// unknown keys are rejected.
func decode(ext string, data []byte, cfg *Config) error {
	switch ext {
	case ".toml":
		meta, err := toml.Decode(string(data), cfg)
		if err != nil {
			return err
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return errors.Newf(errors.CategoryConfig, "unknown key %q", undecoded[0].String())
		}
		return nil
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && err != io.EOF {
			return err
		}
		return nil
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	}
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Name) == "" {
		c.Name = DefaultName
	}
	c.Name = strings.TrimSpace(c.Name)

	// Log
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Equality == "" {
		c.Equality = equality.Shallow.String()
	}

	// Inspector
	if c.Inspector.Addr == "" {
		c.Inspector.Addr = DefaultInspectorAddr
	}

	// Metrics
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}

	// Tracing
	if c.Tracing.Name == "" {
		c.Tracing.Name = DefaultTracerName
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := equality.ParsePolicy(c.Equality); err != nil {
		return errors.New("S122").
			WithDetail("equality must be \"shallow\" or \"deep\", got " + quote(c.Equality))
	}
	if _, ok := parseLevel(c.Log.Level); !ok {
		return errors.New("S122").
			WithDetail("log.level must be debug, info, warn or error, got " + quote(c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.New("S122").
			WithDetail("log.format must be \"text\" or \"json\", got " + quote(c.Log.Format))
	}
	if c.Inspector.Addr == "" {
		return errors.New("S122").
			WithDetail("inspector.addr must not be empty")
	}
	return nil
}

// Policy returns the configured equality policy, or Shallow if it is invalid.
func (c *Config) Policy() equality.Policy {
	p, _ := equality.ParsePolicy(c.Equality)
	return p
}

// LogLevel returns the configured log level, or Info if it is invalid.
func (c *Config) LogLevel() slog.Level {
	level, _ := parseLevel(c.Log.Level)
	return level
}

// Logger builds a logger writing to w with the configured level and format.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel()}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "", "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

func quote(s string) string {
	return "\"" + s + "\""
}
