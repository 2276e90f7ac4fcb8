package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadmap/roadmap/internal/config"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultStoreBusyTimeoutMS, cfg.StoreBusyTimeoutMS)
	assert.Equal(t, config.DefaultResolverMargin, cfg.ResolverMargin)
	assert.Equal(t, config.DefaultResolverMinScore, cfg.ResolverMinScore)
}

func TestLoadParsesFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
check-timeout-seconds: 30
store-busy-timeout-ms: 10000
resolver-ambiguity-margin: 0.15
resolver-min-score: 0.3
default-scopes:
  - "internal/**"
  - "!internal/generated/**"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.CheckTimeoutSeconds)
	assert.Equal(t, 10000, cfg.StoreBusyTimeoutMS)
	assert.Equal(t, 0.15, cfg.ResolverMargin)
	assert.Equal(t, 0.3, cfg.ResolverMinScore)
	assert.Equal(t, []string{"internal/**", "!internal/generated/**"}, cfg.DefaultScopes)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not: valid: yaml: ["), 0o644))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestCheckTimeoutDefaultsWhenZero(t *testing.T) {
	cfg := &config.Config{}
	assert.Equal(t, config.DefaultCheckTimeout, cfg.CheckTimeout())
}
