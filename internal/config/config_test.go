package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for configuration:
// - Defaults: nextjs → react with all conversions on
// - Options snapshot mirrors the conversion section
// - Validate rejects unsupported framework pairs
// - Loader: defaults when no file exists, file values, env overrides
// - Invalid config files surface an error

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, "nextjs", cfg.Conversion.Source)
	assert.Equal(t, "react", cfg.Conversion.Target)
	assert.True(t, cfg.Conversion.Routing)
	assert.True(t, cfg.Conversion.DataFetching)
	assert.True(t, cfg.Conversion.Markup)
	assert.False(t, cfg.Conversion.UpdateDependencies)
	assert.True(t, cfg.Conversion.PreserveTypes)
	assert.True(t, cfg.Conversion.PreserveComments)
	assert.Contains(t, cfg.Paths.Include, "**/*.tsx")
	assert.Contains(t, cfg.Paths.Ignore, "node_modules/**")
	assert.NoError(t, Validate(cfg))
}

func TestOptionsSnapshot(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Conversion.Routing = false
	cfg.Conversion.UpdateDependencies = true

	opts := cfg.Options()
	assert.False(t, opts.ConvertRouting)
	assert.True(t, opts.UpdateDependencies)
	assert.Equal(t, "nextjs", opts.Source)

	// The snapshot is a copy; later config edits must not leak into it.
	cfg.Conversion.Markup = false
	assert.True(t, opts.ConvertMarkup)
}

func TestValidate_UnsupportedPair(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Conversion.Source = "vue"
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vue")

	cfg = Default()
	cfg.Conversion.Target = "svelte"
	assert.Error(t, Validate(cfg))
}

func TestLoader_DefaultsWithoutFile(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfigFromDir(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "nextjs", cfg.Conversion.Source)
	assert.True(t, cfg.Conversion.PreserveTypes)
}

func TestLoader_ReadsConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".reroute"), 0755))
	content := []byte(`conversion:
  source: nextjs
  target: react
  preserve_types: false
  update_dependencies: true
paths:
  ignore:
    - node_modules/**
    - vendor/**
report:
  database: .reroute/runs.db
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".reroute", "config.yml"), content, 0644))

	cfg, err := LoadConfigFromDir(dir)
	require.NoError(t, err)
	assert.False(t, cfg.Conversion.PreserveTypes)
	assert.True(t, cfg.Conversion.UpdateDependencies)
	assert.Contains(t, cfg.Paths.Ignore, "vendor/**")
	assert.Equal(t, ".reroute/runs.db", cfg.Report.Database)
	// Untouched keys keep their defaults.
	assert.True(t, cfg.Conversion.Routing)
}

func TestLoader_EnvOverrides(t *testing.T) {
	t.Setenv("REROUTE_CONVERSION_MARKUP", "false")
	t.Setenv("REROUTE_REPORT_DATABASE", "/tmp/reroute.db")

	cfg, err := LoadConfigFromDir(t.TempDir())
	require.NoError(t, err)
	assert.False(t, cfg.Conversion.Markup)
	assert.Equal(t, "/tmp/reroute.db", cfg.Report.Database)
}

func TestLoader_RejectsUnsupportedFramework(t *testing.T) {
	t.Setenv("REROUTE_CONVERSION_SOURCE", "angular")

	_, err := LoadConfigFromDir(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "angular")
}
