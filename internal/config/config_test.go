package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserin/stepjump/internal/locate"
	"github.com/chriserin/stepjump/internal/navigate"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingImplicitFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), false)
	require.NoError(t, err)

	assert.Equal(t, 9, cfg.SearchEffort)
	assert.Equal(t, 6, cfg.ListHeight)
	assert.Equal(t, 16, cfg.MinFeatureSize)
	assert.Equal(t, "steps", cfg.StepsDir)
	assert.Equal(t, "parse", cfg.StepMatcher)
	assert.Equal(t, []string{"cucumber", "gherkin", "feature"}, cfg.FeatureFileTypes)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.Cache.On())
	assert.NotEmpty(t, cfg.Cache.Path)
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), true)
	assert.True(t, os.IsNotExist(err))
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
search_effort: 3
list_height: 10
steps_dir: step_defs
step_matcher: cfparse
feature_filetypes: [cucumber]
log:
  level: debug
  format: json
cache:
  enabled: false
  path: /tmp/stepjump.db
`)
	cfg, err := Load(path, true)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.SearchEffort)
	assert.Equal(t, 10, cfg.ListHeight)
	assert.Equal(t, 16, cfg.MinFeatureSize)
	assert.Equal(t, "step_defs", cfg.StepsDir)
	assert.Equal(t, "parse", cfg.StepMatcher)
	assert.Equal(t, []string{"cucumber"}, cfg.FeatureFileTypes)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Cache.On())
	assert.Equal(t, "/tmp/stepjump.db", cfg.Cache.Path)

	opts := cfg.Navigation()
	assert.Equal(t, 3, opts.SearchEffort)
	assert.Equal(t, "step_defs", opts.StepsDir)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "search_effort: [\n"), true)
	assert.Error(t, err)
}

func TestNormalize_Rejects(t *testing.T) {
	cfg := Default()
	cfg.StepMatcher = "glob"
	assert.Error(t, cfg.Normalize())

	cfg = Default()
	cfg.StepsDir = "../elsewhere"
	assert.Error(t, cfg.Normalize())

	cfg = Default()
	cfg.Log.Format = "xml"
	assert.Error(t, cfg.Normalize())
}

func TestNormalize_ExpandsHomeInCachePath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := Default()
	cfg.Cache.Path = "~/cache/steps.db"
	require.NoError(t, cfg.Normalize())
	assert.Equal(t, filepath.Join(home, "cache", "steps.db"), cfg.Cache.Path)
}

func TestDefault_MatchesNavigatorDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, locate.DefaultEffort, cfg.SearchEffort)
	assert.Equal(t, navigate.DefaultOptions(), cfg.Navigation())
}
