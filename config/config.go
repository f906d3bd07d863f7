// Package config loads the .bzl.yaml settings file and applies environment
// overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/xyproto/env/v2"
	"gopkg.in/yaml.v3"
)

// FileName is the settings file looked up in the workspace root.
const FileName = ".bzl.yaml"

type Log struct {
	Level int    `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

type Config struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
	Color   string   `yaml:"color"`
	Log     Log      `yaml:"log"`
	Jobs    int      `yaml:"jobs"`
}

func Default() *Config {
	return &Config{
		Include: []string{"BUILD", "BUILD.bazel", "*.bzl", "WORKSPACE", "WORKSPACE.bazel"},
		Exclude: []string{".git", "node_modules", "bazel-*"},
		Color:   "auto",
		Jobs:    4,
	}
}

// Path returns the settings file to use: flag when it is not empty, then
// BZL_CONFIG, then fallback.
func Path(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	env.Load()
	return env.Str("BZL_CONFIG", fallback)
}

// Load reads the settings at path on top of the defaults. A missing file
// is not an error. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// applyEnv re-reads the environment first. env caches it on first use,
// which would hide variables set after an earlier Load.
func (c *Config) applyEnv() {
	env.Load()
	c.Log.Level = env.Int("BZL_LOG_LEVEL", c.Log.Level)
	c.Log.File = env.Str("BZL_LOG_FILE", c.Log.File)
	c.Jobs = env.Int("BZL_JOBS", c.Jobs)
	c.Color = env.Str("BZL_COLOR", c.Color)
}

func (c *Config) Validate() error {
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("color must be auto, always or never, got %q", c.Color)
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", c.Jobs)
	}
	for _, pattern := range append(append([]string(nil), c.Include...), c.Exclude...) {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
	}
	return nil
}

// Write stores cfg at path.
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Matches reports whether the base name of path matches an include pattern.
func (c *Config) Matches(path string) bool {
	return matchAny(c.Include, filepath.Base(path))
}

// Excluded reports whether a directory with the given name is skipped.
func (c *Config) Excluded(dirName string) bool {
	return matchAny(c.Exclude, dirName)
}

func matchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
