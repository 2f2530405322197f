// Package config loads ack settings from ack.toml or ack.yaml.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file Find looks for.
const FileName = "ack.toml"

type Config struct {
	Runtime RuntimeConfig `toml:"runtime" yaml:"runtime"`
	Runner  RunnerConfig  `toml:"runner" yaml:"runner"`
	Log     LogConfig     `toml:"log" yaml:"log"`
}

// Zero numeric fields count as unset: Load replaces them with the Default
// values, so max_call_depth = 0 or gc_threshold = 0 in a file has no effect.
type RuntimeConfig struct {
	// StrictAssignment turns assignment to undeclared names into a
	// ReferenceError.
	StrictAssignment bool `toml:"strict_assignment" yaml:"strict_assignment"`
	MaxCallDepth     int  `toml:"max_call_depth" yaml:"max_call_depth"`
	// GCThreshold is the allocation count that triggers a store collection.
	// A negative value disables collection; 0 keeps the default.
	GCThreshold int `toml:"gc_threshold" yaml:"gc_threshold"`
}

type RunnerConfig struct {
	Dir     string `toml:"dir" yaml:"dir"`
	Jobs    int    `toml:"jobs" yaml:"jobs"`
	Filter  string `toml:"filter" yaml:"filter"`
	Timeout string `toml:"timeout" yaml:"timeout"`
	Verbose bool   `toml:"verbose" yaml:"verbose"`
}

type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

func Default() Config {
	return Config{
		Runtime: RuntimeConfig{
			MaxCallDepth: 512,
			GCThreshold:  4096,
		},
		Runner: RunnerConfig{
			Dir:     "tests/js",
			Timeout: "5s",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads path as TOML or YAML depending on its extension. Fields the
// file leaves unset keep their Default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("%s: unsupported config format %q", path, ext)
	}

	if err := mergo.Merge(&cfg, Default()); err != nil {
		return Config{}, fmt.Errorf("%s: apply defaults: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Find walks from startDir up to the filesystem root looking for ack.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func (c Config) Validate() error {
	if c.Runtime.MaxCallDepth < 0 {
		return fmt.Errorf("runtime.max_call_depth must not be negative, got %d", c.Runtime.MaxCallDepth)
	}
	if c.Runner.Jobs < 0 {
		return fmt.Errorf("runner.jobs must not be negative, got %d", c.Runner.Jobs)
	}
	if _, err := c.Runner.TimeoutDuration(); err != nil {
		return err
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// TimeoutDuration parses the per-script timeout. Empty means zero.
func (r RunnerConfig) TimeoutDuration() (time.Duration, error) {
	if r.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(r.Timeout)
	if err != nil {
		return 0, fmt.Errorf("runner.timeout: %w", err)
	}
	return d, nil
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
