// Package config loads the optional stepjump YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chriserin/stepjump/internal/db"
	"github.com/chriserin/stepjump/internal/index"
	"github.com/chriserin/stepjump/internal/locate"
	"github.com/chriserin/stepjump/internal/navigate"
	"github.com/chriserin/stepjump/internal/stepmatch"
)

type Config struct {
	SearchEffort     int      `yaml:"search_effort"`
	ListHeight       int      `yaml:"list_height"`
	MinFeatureSize   int      `yaml:"min_feature_size"`
	StepsDir         string   `yaml:"steps_dir"`
	StepMatcher      string   `yaml:"step_matcher"`
	FeatureFileTypes []string `yaml:"feature_filetypes"`
	Log              Log      `yaml:"log"`
	Cache            Cache    `yaml:"cache"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Cache struct {
	Enabled *bool  `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// On reports whether the step cache is enabled. Unset means on.
func (c Cache) On() bool {
	return c.Enabled == nil || *c.Enabled
}

func Default() Config {
	opts := navigate.DefaultOptions()
	return Config{
		SearchEffort:     locate.DefaultEffort,
		ListHeight:       opts.ListHeight,
		MinFeatureSize:   index.DefaultMinSize,
		StepsDir:         opts.StepsDir,
		StepMatcher:      stepmatch.Parse,
		FeatureFileTypes: opts.FeatureFileTypes,
		Log:              Log{Level: "warn", Format: "text"},
		Cache:            Cache{Path: db.DefaultPath()},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/stepjump/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "stepjump", "config.yaml")
}

// Normalize fills unset values with defaults and rejects invalid ones.
func (c *Config) Normalize() error {
	def := Default()
	if c.SearchEffort <= 0 {
		c.SearchEffort = def.SearchEffort
	}
	if c.ListHeight <= 0 {
		c.ListHeight = def.ListHeight
	}
	if c.MinFeatureSize <= 0 {
		c.MinFeatureSize = def.MinFeatureSize
	}
	if c.StepsDir == "" {
		c.StepsDir = def.StepsDir
	}
	if filepath.IsAbs(c.StepsDir) || strings.Contains(filepath.ToSlash(c.StepsDir), "..") {
		return fmt.Errorf("steps_dir must be relative to the feature directory: %q", c.StepsDir)
	}
	matcher, err := stepmatch.Normalize(c.StepMatcher)
	if err != nil {
		return fmt.Errorf("step_matcher: %w", err)
	}
	c.StepMatcher = matcher
	if len(c.FeatureFileTypes) == 0 {
		c.FeatureFileTypes = def.FeatureFileTypes
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json: %q", c.Log.Format)
	}
	if c.Cache.Path == "" {
		c.Cache.Path = def.Cache.Path
	}
	if strings.HasPrefix(c.Cache.Path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve cache path: %w", err)
		}
		c.Cache.Path = filepath.Join(home, c.Cache.Path[2:])
	}
	return nil
}

// Navigation is the navigator's slice of the config.
func (c Config) Navigation() navigate.Options {
	return navigate.Options{
		SearchEffort:     c.SearchEffort,
		ListHeight:       c.ListHeight,
		StepsDir:         c.StepsDir,
		FeatureFileTypes: c.FeatureFileTypes,
	}
}

// Load reads path over the defaults. A missing file is not an error when
// the path was not given explicitly.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err) && !explicit:
		case err != nil:
			return Config{}, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	if err := cfg.Normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
