// Package config loads the tool configuration from
// .flowtrace/config.json, with defaults for anything unset.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"flowtrace/internal/errors"
	"flowtrace/internal/slice"
)

// Config is the complete tool configuration.
type Config struct {
	Version int           `json:"version" mapstructure:"version"`
	Slicer  SlicerConfig  `json:"slicer" mapstructure:"slicer"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
	History HistoryConfig `json:"history" mapstructure:"history"`
}

// SlicerConfig mirrors the slicing engine options plus the optional
// factory-registry file.
type SlicerConfig struct {
	MaxDepth           int    `json:"maxDepth" mapstructure:"maxDepth"`
	InterProcedural    bool   `json:"interProcedural" mapstructure:"interProcedural"`
	ContextSensitive   bool   `json:"contextSensitive" mapstructure:"contextSensitive"`
	FlowSensitive      bool   `json:"flowSensitive" mapstructure:"flowSensitive"`
	ExpandCollections  bool   `json:"expandCollections" mapstructure:"expandCollections"`
	MaxCollectionDepth int    `json:"maxCollectionDepth" mapstructure:"maxCollectionDepth"`
	FactoriesFile      string `json:"factoriesFile,omitempty" mapstructure:"factoriesFile"`
}

// LoggingConfig selects log format and level.
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// HistoryConfig controls the findings database.
type HistoryConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
}

// Default returns the default configuration.
func Default() *Config {
	d := slice.DefaultConfig()
	return &Config{
		Version: 1,
		Slicer: SlicerConfig{
			MaxDepth:           d.MaxDepth,
			InterProcedural:    d.InterProcedural,
			ContextSensitive:   d.ContextSensitive,
			FlowSensitive:      d.FlowSensitive,
			ExpandCollections:  d.ExpandCollections,
			MaxCollectionDepth: d.MaxCollectionDepth,
		},
		Logging: LoggingConfig{Format: "human", Level: "info"},
		History: HistoryConfig{Enabled: true},
	}
}

// Load reads .flowtrace/config.json under root. A missing file yields
// the defaults.
func Load(root string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ".flowtrace"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return Default(), nil
		}
		return nil, errors.New(errors.ConfigInvalid, "cannot read config", err)
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.New(errors.ConfigInvalid, "cannot parse config", err)
	}
	return cfg, nil
}

// Save writes the configuration to .flowtrace/config.json under root,
// creating the directory if needed.
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ".flowtrace")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0o644)
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Slicer.MaxDepth <= 0 {
		return errors.Newf(errors.ConfigInvalid, nil, "slicer.maxDepth must be positive, got %d", c.Slicer.MaxDepth)
	}
	if c.Slicer.MaxCollectionDepth < 0 {
		return errors.Newf(errors.ConfigInvalid, nil, "slicer.maxCollectionDepth must not be negative, got %d", c.Slicer.MaxCollectionDepth)
	}
	switch c.Logging.Format {
	case "", "human", "json":
	default:
		return errors.Newf(errors.ConfigInvalid, nil, "unknown logging format %q", c.Logging.Format)
	}
	return nil
}

// SliceConfig converts the slicer section into an engine config,
// loading the factory-registry file when one is set.
func (c *Config) SliceConfig() (slice.Config, error) {
	out := slice.Config{
		MaxDepth:           c.Slicer.MaxDepth,
		InterProcedural:    c.Slicer.InterProcedural,
		ContextSensitive:   c.Slicer.ContextSensitive,
		FlowSensitive:      c.Slicer.FlowSensitive,
		ExpandCollections:  c.Slicer.ExpandCollections,
		MaxCollectionDepth: c.Slicer.MaxCollectionDepth,
	}
	if c.Slicer.FactoriesFile != "" {
		factories, err := slice.LoadFactories(c.Slicer.FactoriesFile)
		if err != nil {
			return out, errors.New(errors.ConfigInvalid, "cannot load factory registry", err)
		}
		out.Factories = factories
	}
	return out, nil
}
