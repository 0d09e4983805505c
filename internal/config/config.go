// Package config provides configuration loading for classmap.
//
// Configuration Hierarchy (highest to lowest priority):
//  1. Command-line flags (applied by the cli package)
//  2. Environment variables (CLASSMAP_*)
//  3. Config file (.classmap/config.yml, or the file named by --config)
//  4. Built-in defaults
//
// Environment Variable Convention:
//   - Prefix: CLASSMAP_
//   - Nested fields: Use underscores (CLASSMAP_ORACLE_ENDPOINT)
//   - Automatic mapping via Viper's SetEnvKeyReplacer
package config

import (
	"time"

	"github.com/mvp-joe/classmap/internal/oracle"
	"github.com/mvp-joe/classmap/internal/render"
	"github.com/mvp-joe/classmap/internal/signature"
)

// DefaultOracleEndpoint is the code-search backend queried when no endpoint is configured.
const DefaultOracleEndpoint = "https://cs.chromium.org/codesearch/json"

// Config represents the complete classmap configuration.
type Config struct {
	Oracle    OracleConfig    `yaml:"oracle" mapstructure:"oracle"`
	Source    SourceConfig    `yaml:"source" mapstructure:"source"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Catalogue CatalogueConfig `yaml:"catalogue" mapstructure:"catalogue"`
	Traversal TraversalConfig `yaml:"traversal" mapstructure:"traversal"`
}

// OracleConfig configures the cross-reference service.
type OracleConfig struct {
	Endpoint          string  `yaml:"endpoint" mapstructure:"endpoint"`                       // Base URL of the code-search JSON API
	TimeoutSeconds    int     `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`         // Per-request timeout
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"` // 0 disables throttling
	Fixture           string  `yaml:"fixture" mapstructure:"fixture"`                         // JSON fixture for offline runs; overrides Endpoint
}

// Timeout returns the per-request timeout as a duration.
func (o OracleConfig) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// SourceConfig configures the source-browser links embedded in the output.
type SourceConfig struct {
	URLBase string `yaml:"url_base" mapstructure:"url_base"`
}

// OutputConfig configures where and how artifacts are written.
type OutputConfig struct {
	Dir           string `yaml:"dir" mapstructure:"dir"`
	OverrideColor string `yaml:"override_color" mapstructure:"override_color"`
	PlainColor    string `yaml:"plain_color" mapstructure:"plain_color"`
	YesMarker     string `yaml:"yes_marker" mapstructure:"yes_marker"`
	NoMarker      string `yaml:"no_marker" mapstructure:"no_marker"`
	Header        bool   `yaml:"header" mapstructure:"header"`
}

// CatalogueConfig selects the ancestor methods to track.
type CatalogueConfig struct {
	File string `yaml:"file" mapstructure:"file"` // Empty means the built-in catalogue
}

// TraversalConfig bounds the hierarchy walk.
type TraversalConfig struct {
	Exclude []string `yaml:"exclude" mapstructure:"exclude"` // Glob patterns matched against a child's file path
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Oracle: OracleConfig{
			Endpoint:          DefaultOracleEndpoint,
			TimeoutSeconds:    int(oracle.DefaultTimeout / time.Second),
			RequestsPerSecond: oracle.DefaultRequestsPerSecond,
			Fixture:           "",
		},
		Source: SourceConfig{
			URLBase: signature.DefaultSourceBase,
		},
		Output: OutputConfig{
			Dir:           ".",
			OverrideColor: render.DefaultOverrideColor,
			PlainColor:    render.DefaultPlainColor,
			YesMarker:     render.DefaultYesMarker,
			NoMarker:      render.DefaultNoMarker,
			Header:        false,
		},
		Catalogue: CatalogueConfig{
			File: "",
		},
		Traversal: TraversalConfig{
			Exclude: []string{},
		},
	}
}
