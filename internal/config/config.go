package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vango-dev/vcache/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "vcache.json"

	// DefaultAddr is the default devtools listen address.
	DefaultAddr = "localhost:7070"

	// DefaultSnapshotDir is the default directory for the disk backend.
	DefaultSnapshotDir = ".vcache/snapshots"

	// DefaultSnapshotName is the snapshot name used when none is given.
	DefaultSnapshotName = "latest"
)

// Snapshot backends.
const (
	BackendDisk = "disk"
	BackendS3   = "s3"
)

// Config represents the complete vcache.json configuration.
type Config struct {
	// Server contains devtools server configuration.
	Server ServerConfig `json:"server,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Snapshot contains snapshot persistence configuration.
	Snapshot SnapshotConfig `json:"snapshot,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains devtools server settings.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty"`

	// TracerName is the OpenTelemetry tracer name.
	TracerName string `json:"tracerName,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes metrics on Path.
	Enabled *bool `json:"enabled,omitempty"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty"`

	// Path is the HTTP path metrics are served on.
	Path string `json:"path,omitempty"`
}

// SnapshotConfig contains snapshot backend settings.
type SnapshotConfig struct {
	// Backend is "disk" or "s3".
	Backend string `json:"backend,omitempty"`

	// Dir is the disk backend directory, relative to the config file.
	Dir string `json:"dir,omitempty"`

	// Bucket is the S3 bucket.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is the S3 key prefix.
	Prefix string `json:"prefix,omitempty"`

	// Region is the AWS region.
	Region string `json:"region,omitempty"`

	// Endpoint overrides the S3 endpoint (MinIO, localstack).
	Endpoint string `json:"endpoint,omitempty"`

	// UsePathStyle enables path-style bucket addressing.
	UsePathStyle bool `json:"usePathStyle,omitempty"`

	// Name is the default snapshot name.
	Name string `json:"name,omitempty"`

	// RestoreOnStart restores Name when the server starts.
	RestoreOnStart bool `json:"restoreOnStart,omitempty"`
}

// New returns a config with all defaults applied.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads vcache.json from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile loads the configuration from path, applies defaults and
// environment overrides, and validates it.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("C021").
				WithDetail("no %s found in %s", ConfigFileName, filepath.Dir(path)).
				WithSuggestion("Create vcache.json or run without --config to use defaults")
		}
		return nil, errors.New("C021").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("C020").
			WithDetail("failed to parse %s: %v", path, err).
			WithSuggestion("Check that vcache.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads path when it is non-empty and returns defaults
// (with environment overrides) otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}
	cfg := New()
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("C020").Wrap(err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return errors.New("C021").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path the configuration was loaded from, if any.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the configuration file, or ".".
func (c *Config) Dir() string {
	if c.configPath == "" {
		return "."
	}
	return filepath.Dir(c.configPath)
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.TracerName == "" {
		c.Server.TracerName = "vcache"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Metrics.Enabled == nil {
		enabled := true
		c.Metrics.Enabled = &enabled
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "vcache"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Snapshot.Backend == "" {
		c.Snapshot.Backend = BackendDisk
	}
	if c.Snapshot.Dir == "" {
		c.Snapshot.Dir = DefaultSnapshotDir
	}
	if c.Snapshot.Name == "" {
		c.Snapshot.Name = DefaultSnapshotName
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("VCACHE_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("VCACHE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("C020").WithDetail("log.format must be text or json, got %q", c.Log.Format)
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("C020").WithDetail("metrics.path must start with /, got %q", c.Metrics.Path)
	}
	switch c.Snapshot.Backend {
	case BackendDisk:
	case BackendS3:
		if c.Snapshot.Bucket == "" {
			return errors.New("C020").WithDetail("snapshot.bucket is required for the s3 backend")
		}
		if c.Snapshot.Region == "" {
			return errors.New("C020").WithDetail("snapshot.region is required for the s3 backend")
		}
	default:
		return errors.New("C020").WithDetail("snapshot.backend must be disk or s3, got %q", c.Snapshot.Backend)
	}
	return nil
}

// MetricsEnabled reports whether metrics are exposed.
func (c *Config) MetricsEnabled() bool {
	return c.Metrics.Enabled == nil || *c.Metrics.Enabled
}

// SnapshotDir returns the disk backend directory resolved against Dir.
func (c *Config) SnapshotDir() string {
	if filepath.IsAbs(c.Snapshot.Dir) {
		return c.Snapshot.Dir
	}
	return filepath.Join(c.Dir(), c.Snapshot.Dir)
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, errors.New("C020").WithDetail("log.level %q: want debug, info, warn or error", s)
	}
	return level, nil
}

// Logger builds a logger writing to w per the log section.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
