package config

import "fmt"

// Config represents the complete reroute configuration.
// It can be loaded from .reroute/config.yml with environment variable
// overrides.
type Config struct {
	Conversion ConversionConfig `yaml:"conversion" mapstructure:"conversion"`
	Paths      PathsConfig      `yaml:"paths" mapstructure:"paths"`
	Report     ReportConfig     `yaml:"report" mapstructure:"report"`
}

// ConversionConfig selects the framework pair and the feature toggles.
type ConversionConfig struct {
	Source             string `yaml:"source" mapstructure:"source"`                           // source framework ("nextjs")
	Target             string `yaml:"target" mapstructure:"target"`                           // target framework ("react")
	Routing            bool   `yaml:"routing" mapstructure:"routing"`                         // convert routing APIs
	DataFetching       bool   `yaml:"data_fetching" mapstructure:"data_fetching"`             // convert data-fetching exports
	Markup             bool   `yaml:"markup" mapstructure:"markup"`                           // convert framework markup components
	UpdateDependencies bool   `yaml:"update_dependencies" mapstructure:"update_dependencies"` // rewrite package.json dependency list
	PreserveTypes      bool   `yaml:"preserve_types" mapstructure:"preserve_types"`           // keep type annotations in output
	PreserveComments   bool   `yaml:"preserve_comments" mapstructure:"preserve_comments"`     // keep comments in output
}

// PathsConfig defines which files to convert and which to ignore.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for source files
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to ignore
}

// ReportConfig defines where batch run reports are persisted.
type ReportConfig struct {
	Database string `yaml:"database" mapstructure:"database"` // sqlite path; empty disables persistence
}

// ConversionOptions is the immutable per-run snapshot handed to the
// engine. It is supplied at batch start and never mutated mid-run.
type ConversionOptions struct {
	Source              string
	Target              string
	ConvertRouting      bool
	ConvertDataFetching bool
	ConvertMarkup       bool
	UpdateDependencies  bool
	PreserveTypes       bool
	PreserveComments    bool
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Conversion: ConversionConfig{
			Source:             "nextjs",
			Target:             "react",
			Routing:            true,
			DataFetching:       true,
			Markup:             true,
			UpdateDependencies: false,
			PreserveTypes:      true,
			PreserveComments:   true,
		},
		Paths: PathsConfig{
			Include: []string{
				"**/*.js",
				"**/*.jsx",
				"**/*.ts",
				"**/*.tsx",
				"**/*.json",
			},
			Ignore: []string{
				"node_modules/**",
				".next/**",
				"out/**",
				"dist/**",
				"build/**",
				".git/**",
			},
		},
		Report: ReportConfig{
			Database: "",
		},
	}
}

// Options snapshots the conversion section into an immutable options
// value.
func (c *Config) Options() ConversionOptions {
	return ConversionOptions{
		Source:              c.Conversion.Source,
		Target:              c.Conversion.Target,
		ConvertRouting:      c.Conversion.Routing,
		ConvertDataFetching: c.Conversion.DataFetching,
		ConvertMarkup:       c.Conversion.Markup,
		UpdateDependencies:  c.Conversion.UpdateDependencies,
		PreserveTypes:       c.Conversion.PreserveTypes,
		PreserveComments:    c.Conversion.PreserveComments,
	}
}

// DefaultOptions returns the default conversion options snapshot.
func DefaultOptions() ConversionOptions {
	return Default().Options()
}

// Validate checks that the configuration names a supported framework
// pair. Only the nextjs → react catalog exists.
func Validate(cfg *Config) error {
	if cfg.Conversion.Source != "nextjs" {
		return fmt.Errorf("unsupported source framework %q (supported: nextjs)", cfg.Conversion.Source)
	}
	if cfg.Conversion.Target != "react" {
		return fmt.Errorf("unsupported target framework %q (supported: react)", cfg.Conversion.Target)
	}
	return nil
}
