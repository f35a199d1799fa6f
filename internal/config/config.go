// Package config loads libyear settings from .libyear.toml or .libyear.yaml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrConfigValidation wraps every validation failure, as opposed to
// syntax or filesystem errors.
var ErrConfigValidation = errors.New("config validation failed")

// Files are searched for in this order.
var Files = []string{".libyear.toml", ".libyear.yaml", ".libyear.yml"}

const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config holds every setting the CLI can take from a file.
type Config struct {
	Registry    Registry `toml:"registry" yaml:"registry"`
	Concurrency int      `toml:"concurrency" yaml:"concurrency"`
	Limits      Limits   `toml:"limits" yaml:"limits"`
	Quiet       bool     `toml:"quiet" yaml:"quiet"`
	Recursive   bool     `toml:"recursive" yaml:"recursive"`
	Output      string   `toml:"output" yaml:"output"`

	// Source is the file the config was read from, empty for defaults.
	Source string `toml:"-" yaml:"-"`
}

// Registry configures the NuGet feed and the HTTP client talking to it.
type Registry struct {
	URL        string   `toml:"url" yaml:"url"`
	Timeout    Duration `toml:"timeout" yaml:"timeout"`
	MaxRetries int      `toml:"max_retries" yaml:"max_retries"`
	UserAgent  string   `toml:"user_agent" yaml:"user_agent"`
}

// Limits are optional libyear thresholds.
type Limits struct {
	Total   *float64 `toml:"total" yaml:"total"`
	Project *float64 `toml:"project" yaml:"project"`
	Any     *float64 `toml:"any" yaml:"any"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Registry: Registry{
			Timeout:    Duration{30 * time.Second},
			MaxRetries: 5,
			UserAgent:  "libyear",
		},
		Concurrency: 15,
		Output:      OutputText,
	}
}

// Find returns the first config file present in dir, or "" if none is.
func Find(dir string) string {
	for _, name := range Files {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Load reads the config at path, or the one found in the working
// directory when path is empty. With no file at all the defaults are
// returned. Values in the file override the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("finding config: %w", err)
		}
		path = Find(wd)
		if path == "" {
			return Default(), nil
		}
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expanding %s: %w", path, err)
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data, expanded)
}

// Parse decodes data on top of the defaults and validates the result. The
// format follows the extension of source; unknown keys are rejected.
func Parse(data []byte, source string) (*Config, error) {
	cfg := Default()

	switch ext := strings.ToLower(filepath.Ext(source)); ext {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", source, err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing %s: %w", source, err)
		}
	default:
		return nil, fmt.Errorf("parsing %s: unsupported config format %q", source, ext)
	}

	cfg.Source = source
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Output != OutputText && c.Output != OutputJSON {
		problems = append(problems, fmt.Sprintf("output must be %q or %q, got %q", OutputText, OutputJSON, c.Output))
	}
	if c.Concurrency <= 0 {
		problems = append(problems, fmt.Sprintf("concurrency must be positive, got %d", c.Concurrency))
	}
	if c.Registry.Timeout.Duration < 0 {
		problems = append(problems, fmt.Sprintf("registry.timeout must not be negative, got %s", c.Registry.Timeout))
	}
	if c.Registry.MaxRetries < 0 {
		problems = append(problems, fmt.Sprintf("registry.max_retries must not be negative, got %d", c.Registry.MaxRetries))
	}
	for name, v := range map[string]*float64{"total": c.Limits.Total, "project": c.Limits.Project, "any": c.Limits.Any} {
		if v != nil && *v < 0 {
			problems = append(problems, fmt.Sprintf("limits.%s must not be negative, got %g", name, *v))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	source := c.Source
	if source == "" {
		source = "config"
	}
	return fmt.Errorf("%w: %s: %s", ErrConfigValidation, source, strings.Join(problems, "; "))
}
