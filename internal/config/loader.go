package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root
// directory.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

// Load loads configuration with the following priority (highest to
// lowest):
// 1. Environment variables (REROUTE_*)
// 2. Config file (.reroute/config.yml or .reroute/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".reroute")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("REROUTE")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., REROUTE_CONVERSION_SOURCE)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("conversion.source")
	v.BindEnv("conversion.target")
	v.BindEnv("conversion.routing")
	v.BindEnv("conversion.data_fetching")
	v.BindEnv("conversion.markup")
	v.BindEnv("conversion.update_dependencies")
	v.BindEnv("conversion.preserve_types")
	v.BindEnv("conversion.preserve_comments")
	v.BindEnv("report.database")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - defaults + env vars apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("conversion.source", defaults.Conversion.Source)
	v.SetDefault("conversion.target", defaults.Conversion.Target)
	v.SetDefault("conversion.routing", defaults.Conversion.Routing)
	v.SetDefault("conversion.data_fetching", defaults.Conversion.DataFetching)
	v.SetDefault("conversion.markup", defaults.Conversion.Markup)
	v.SetDefault("conversion.update_dependencies", defaults.Conversion.UpdateDependencies)
	v.SetDefault("conversion.preserve_types", defaults.Conversion.PreserveTypes)
	v.SetDefault("conversion.preserve_comments", defaults.Conversion.PreserveComments)

	v.SetDefault("paths.include", defaults.Paths.Include)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("report.database", defaults.Report.Database)
}

// LoadConfig is a convenience function that creates a loader and loads
// config from the current working directory.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
