package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the sectionctl configuration.
type Config struct {
	Dimension     string `yaml:"dimension"`      // "overworld", "nether" or "end"
	SourceVersion int    `yaml:"source_version"` // data version of the input regions
	TargetVersion int    `yaml:"target_version"` // data version written by upgrade
	RegionDir     string `yaml:"region_dir"`
	OutputDir     string `yaml:"output_dir"`
	RegistryPath  string `yaml:"registry_path"` // minecraft-data blocks.json
	LegacyPath    string `yaml:"legacy_path"`   // minecraft-data legacy.json
	CachePath     string `yaml:"cache_path"`
	Workers       int    `yaml:"workers"`
	LogLevel      string `yaml:"log_level"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Dimension:     "overworld",
		SourceVersion: 1343,
		TargetVersion: 1519,
		RegionDir:     "world/region",
		OutputDir:     "world-1.13/region",
		RegistryPath:  "scheme/pc-1.13/blocks.json",
		LegacyPath:    "scheme/pc-common/legacy.json",
		CachePath:     "cache/sections.db",
		Workers:       4,
		LogLevel:      "info",
	}
}

// Load reads a YAML config file. Fields absent from the file keep their
// default values. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// Save writes cfg as YAML atomically.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["dimension"] {
		cfg.Dimension = fromFile.Dimension
	}
	if !explicitFlags["source-version"] {
		cfg.SourceVersion = fromFile.SourceVersion
	}
	if !explicitFlags["target-version"] {
		cfg.TargetVersion = fromFile.TargetVersion
	}
	if !explicitFlags["region-dir"] {
		cfg.RegionDir = fromFile.RegionDir
	}
	if !explicitFlags["output-dir"] {
		cfg.OutputDir = fromFile.OutputDir
	}
	if !explicitFlags["registry"] {
		cfg.RegistryPath = fromFile.RegistryPath
	}
	if !explicitFlags["legacy"] {
		cfg.LegacyPath = fromFile.LegacyPath
	}
	if !explicitFlags["cache"] {
		cfg.CachePath = fromFile.CachePath
	}
	if !explicitFlags["workers"] {
		cfg.Workers = fromFile.Workers
	}
	if !explicitFlags["log-level"] {
		cfg.LogLevel = fromFile.LogLevel
	}
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}
