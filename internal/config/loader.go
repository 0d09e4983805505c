package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DirName is the per-project configuration directory.
const DirName = ".classmap"

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	// The result is not validated; call Validate once flag overrides are applied.
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// NewFileLoader creates a loader that reads exactly the given file.
// Unlike the directory loader, a missing file is an error.
func NewFileLoader(path string) Loader {
	return &loader{
		configFile: path,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (CLASSMAP_*)
// 2. Config file (.classmap/config.yml or .classmap/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, DirName))
	}

	v.SetEnvPrefix("CLASSMAP")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., CLASSMAP_ORACLE_ENDPOINT)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable when searching a directory
		var notFound viper.ConfigFileNotFoundError
		if l.configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// Oracle configuration
	v.BindEnv("oracle.endpoint")
	v.BindEnv("oracle.timeout_seconds")
	v.BindEnv("oracle.requests_per_second")
	v.BindEnv("oracle.fixture")

	// Source links
	v.BindEnv("source.url_base")

	// Output configuration
	v.BindEnv("output.dir")
	v.BindEnv("output.override_color")
	v.BindEnv("output.plain_color")
	v.BindEnv("output.yes_marker")
	v.BindEnv("output.no_marker")
	v.BindEnv("output.header")

	v.BindEnv("catalogue.file")
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("oracle.endpoint", defaults.Oracle.Endpoint)
	v.SetDefault("oracle.timeout_seconds", defaults.Oracle.TimeoutSeconds)
	v.SetDefault("oracle.requests_per_second", defaults.Oracle.RequestsPerSecond)
	v.SetDefault("oracle.fixture", defaults.Oracle.Fixture)

	v.SetDefault("source.url_base", defaults.Source.URLBase)

	v.SetDefault("output.dir", defaults.Output.Dir)
	v.SetDefault("output.override_color", defaults.Output.OverrideColor)
	v.SetDefault("output.plain_color", defaults.Output.PlainColor)
	v.SetDefault("output.yes_marker", defaults.Output.YesMarker)
	v.SetDefault("output.no_marker", defaults.Output.NoMarker)
	v.SetDefault("output.header", defaults.Output.Header)

	v.SetDefault("catalogue.file", defaults.Catalogue.File)
	v.SetDefault("traversal.exclude", defaults.Traversal.Exclude)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}
