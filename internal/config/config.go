package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vbind/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "vbind.yaml"

	// DefaultAddr is the default preview server address.
	DefaultAddr = "localhost:3000"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default log format.
	DefaultLogFormat = "text"
)

// Config represents the complete vbind.yaml configuration.
type Config struct {
	// Name is the project name.
	Name string `yaml:"name,omitempty"`

	// Root is the path of the root template.
	Root string `yaml:"root,omitempty"`

	// Data is the path of a YAML or JSON file holding the root model.
	Data string `yaml:"data,omitempty"`

	// Templates is the directory that component template URLs are
	// resolved against.
	Templates string `yaml:"templates,omitempty"`

	// Components maps component names to their definitions.
	Components map[string]ComponentConfig `yaml:"components,omitempty"`

	// Cache enables pooling of destroyed components (default: true).
	Cache *bool `yaml:"cache,omitempty"`

	// PoolCap limits pooled instances per component name. Zero is
	// unbounded.
	PoolCap int `yaml:"poolCap,omitempty"`

	// Metrics exposes Prometheus metrics on the preview server.
	Metrics bool `yaml:"metrics,omitempty"`

	// Server contains preview server configuration.
	Server ServerConfig `yaml:"server,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `yaml:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ComponentConfig defines one named component. Exactly one of Template,
// File and URL must be set.
type ComponentConfig struct {
	// Template is inline markup.
	Template string `yaml:"template,omitempty"`

	// File is a template file read when the config is applied.
	File string `yaml:"file,omitempty"`

	// URL is a template path loaded lazily from the templates directory.
	URL string `yaml:"url,omitempty"`

	// Inner inserts the template inside the host element.
	Inner bool `yaml:"inner,omitempty"`

	// Directive marks the component as a directive.
	Directive bool `yaml:"directive,omitempty"`

	// Isolate lists model paths that do not propagate to descendants.
	Isolate []string `yaml:"isolate,omitempty"`

	// Restrict limits parent and child component names.
	Restrict RestrictConfig `yaml:"restrict,omitempty"`

	// Data is the initial model of each instance.
	Data map[string]any `yaml:"data,omitempty"`
}

// RestrictConfig lists allowed parent and child names.
type RestrictConfig struct {
	Parents  []string `yaml:"parents,omitempty"`
	Children []string `yaml:"children,omitempty"`
}

// ServerConfig contains preview server settings.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `yaml:"addr,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level,omitempty"`

	// Format is text or json.
	Format string `yaml:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cache := true
	return &Config{
		Cache:  &cache,
		Server: ServerConfig{Addr: DefaultAddr},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Load loads vbind.yaml from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFromDir loads vbind.yaml from dir or the nearest parent directory
// that has one.
func LoadFromDir(dir string) (*Config, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.New(errors.CodeConfigNotFound).Wrap(err)
	}
	for d := abs; ; {
		path := filepath.Join(d, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
		parent := filepath.Dir(d)
		if parent == d {
			return nil, errors.New(errors.CodeConfigNotFound).WithDetail(abs)
		}
		d = parent
	}
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigNotFound).WithDetail(path)
		}
		return nil, errors.New(errors.CodeConfigInvalid).WithDetail(path).Wrap(err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.configPath = path
	return cfg, nil
}

// Parse decodes YAML configuration and applies defaults.
func Parse(data []byte) (*Config, error) {
	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(errors.CodeConfigInvalid).
			WithDetail("failed to parse " + ConfigFileName).
			Wrap(err)
	}
	cfg.applyDefaults()
	return cfg, nil
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

// applyDefaults fills in default values for missing fields.
func (c *Config) applyDefaults() {
	if c.Cache == nil {
		cache := true
		c.Cache = &cache
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

var componentName = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.PoolCap < 0 {
		return errors.New(errors.CodeConfigInvalid).WithDetail("poolCap must not be negative")
	}
	if _, ok := levels[strings.ToLower(c.Log.Level)]; !ok {
		return errors.New(errors.CodeConfigInvalid).WithDetailf("unknown log level %q", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New(errors.CodeConfigInvalid).WithDetailf("unknown log format %q", c.Log.Format)
	}
	for name, comp := range c.Components {
		if !componentName.MatchString(name) {
			return errors.New(errors.CodeConfigInvalid).WithDetailf("invalid component name %q", name)
		}
		sources := 0
		for _, s := range []string{comp.Template, comp.File, comp.URL} {
			if s != "" {
				sources++
			}
		}
		if sources != 1 {
			return errors.New(errors.CodeConfigInvalid).
				WithDetailf("component %q needs exactly one of template, file or url", name)
		}
		if comp.URL != "" && c.Templates == "" {
			return errors.New(errors.CodeConfigInvalid).
				WithDetailf("component %q uses url but no templates directory is set", name)
		}
	}
	return nil
}

// CacheEnabled reports whether component pooling is on.
func (c *Config) CacheEnabled() bool {
	return c.Cache == nil || *c.Cache
}

// Resolve returns path relative to the config directory unless it is
// absolute.
func (c *Config) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// RootPath returns the absolute root template path.
func (c *Config) RootPath() string {
	return c.Resolve(c.Root)
}

// TemplatesPath returns the templates directory.
func (c *Config) TemplatesPath() string {
	return c.Resolve(c.Templates)
}

// LoadData reads the root model from the data file. It returns an empty
// map when no data file is configured.
func (c *Config) LoadData() (map[string]any, error) {
	if c.Data == "" {
		return map[string]any{}, nil
	}
	return ReadData(c.Resolve(c.Data))
}

// ReadData decodes a YAML or JSON document into a map.
func ReadData(path string) (map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.CodeConfigInvalid).WithDetail(path).Wrap(err)
	}
	data := map[string]any{}
	if err := yaml.Unmarshal(b, &data); err != nil {
		return nil, errors.New(errors.CodeConfigInvalid).WithDetail(path).Wrap(err)
	}
	return data, nil
}

// ReadTemplate returns the markup of a component definition, reading File
// relative to the config directory.
func (c *Config) ReadTemplate(comp ComponentConfig) (string, error) {
	if comp.File == "" {
		return comp.Template, nil
	}
	b, err := os.ReadFile(c.Resolve(comp.File))
	if err != nil {
		return "", errors.New(errors.CodeConfigInvalid).WithDetail(comp.File).Wrap(err)
	}
	return string(b), nil
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel returns the configured level.
func (l LogConfig) SlogLevel() slog.Level {
	if lv, ok := levels[strings.ToLower(l.Level)]; ok {
		return lv
	}
	return slog.LevelInfo
}

// NewLogger builds a logger writing to w in the configured format.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.SlogLevel()}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// String returns a one-line summary for diagnostics.
func (c *Config) String() string {
	return fmt.Sprintf("%s (root=%s, components=%d)", c.Name, c.Root, len(c.Components))
}
