// Package config loads sprintlens settings from a YAML or JSON file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"sprintlens/internal/filter"
	"sprintlens/internal/logging"
	"sprintlens/internal/testrun"
)

// EnvPath names the environment variable consulted when no --config flag is
// given.
const EnvPath = "SPRINTLENS_CONFIG"

// Config holds process settings. Zero fields are filled by Default values.
type Config struct {
	LogLevel  string `yaml:"log_level" json:"log_level"`
	LogFormat string `yaml:"log_format" json:"log_format"`
	PageSize  int    `yaml:"page_size" json:"page_size"`
	MaxDepth  int    `yaml:"max_depth" json:"max_depth"`
	Parallel  int    `yaml:"parallel" json:"parallel"`
	RulesPath string `yaml:"rules_path" json:"rules_path"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: logging.FormatText,
		PageSize:  filter.DefaultPageSize,
		MaxDepth:  testrun.DefaultMaxDepth,
		Parallel:  4,
	}
}

// LoadFromPath reads a config file (YAML or JSON) and returns it merged over
// Default. Relative rules_path values resolve against the file's directory.
func LoadFromPath(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Load(data, filepath.Ext(path))
	if err != nil {
		return Config{}, err
	}
	if cfg.RulesPath != "" && !filepath.IsAbs(cfg.RulesPath) {
		cfg.RulesPath = filepath.Join(filepath.Dir(path), cfg.RulesPath)
	}
	return cfg, nil
}

// Load parses config bytes. ext is the file extension used as a format hint;
// empty means detect from content.
func Load(data []byte, ext string) (Config, error) {
	var cfg Config
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config json: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config yaml: %w", err)
		}
	default:
		if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
			return Load(data, ".json")
		}
		return Load(data, ".yaml")
	}
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Resolve loads path when set, else the file named by EnvPath, else the
// defaults.
func Resolve(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvPath)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFromPath(path)
}

func (c Config) withDefaults() Config {
	d := Default()
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = d.LogFormat
	}
	if c.PageSize <= 0 {
		c.PageSize = d.PageSize
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = d.MaxDepth
	}
	if c.Parallel <= 0 {
		c.Parallel = d.Parallel
	}
	return c
}

func (c Config) validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch strings.ToLower(c.LogFormat) {
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}
	return nil
}
