package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.NoError(t, cfg.Validate())

	gran, err := cfg.Fetch.ParseGranularity()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, gran)
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
cache:
  path: /tmp/candles.db
fetch:
  granularity: 6h
  max_bars_per_call: 200
  request_delay: 250ms
  delay_after_calls: 3
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/candles.db", cfg.Cache.Path)
	assert.Equal(t, 200, cfg.Fetch.MaxBarsPerCall)

	gran, err := cfg.Fetch.ParseGranularity()
	require.NoError(t, err)
	assert.Equal(t, 6*time.Hour, gran)
}

func TestLoadRejectsBadGranularity(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
cache:
  path: /tmp/candles.db
fetch:
  granularity: sixhours
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, Default().SaveToFile(path))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
