package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "tram.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)

	expected := Default()
	assert.Equal(t, &expected, cfg)
	assert.Equal(t, 60000, cfg.Polling.RemainingIntervalMS)
	assert.Equal(t, "memory", cfg.Storage.Backend)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
api:
  baseURL: https://tram.example.dz/api
  retries: 2
  headers:
    X-Api-Key: secret
polling:
  remainingIntervalMS: 30000
storage:
  backend: sqlite
  onDisk: true
  directory: /var/lib/tram
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://tram.example.dz/api", cfg.API.BaseURL)
	assert.Equal(t, 2, cfg.API.Retries)
	assert.Equal(t, map[string]string{"X-Api-Key": "secret"}, cfg.API.Headers)
	assert.Equal(t, "/get_schedule.php", cfg.API.SchedulePath)
	assert.Equal(t, 30000, cfg.Polling.RemainingIntervalMS)
	assert.Equal(t, 60000, cfg.Polling.StatusIntervalMS)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.True(t, cfg.Storage.OnDisk)
	assert.Equal(t, "/var/lib/tram", cfg.Storage.Directory)
}

func TestLoadFirstExistingPath(t *testing.T) {
	path := writeConfig(t, "api:\n  baseURL: http://first.example\n")
	other := writeConfig(t, "api:\n  baseURL: http://second.example\n")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"), path, other)
	require.NoError(t, err)
	assert.Equal(t, "http://first.example", cfg.API.BaseURL)
}

func TestLoadInvalid(t *testing.T) {
	for name, content := range map[string]string{
		"bad_yaml":           "api: [",
		"bad_url":            "api:\n  baseURL: not a url\n",
		"relative_path":      "api:\n  schedulePath: get_schedule.php\n",
		"negative_retries":   "api:\n  retries: -1\n",
		"zero_interval":      "polling:\n  remainingIntervalMS: 0\n",
		"unknown_backend":    "storage:\n  backend: redis\n",
		"postgres_no_conn":   "storage:\n  backend: postgres\n",
		"on_disk_no_dir":     "storage:\n  backend: sqlite\n  onDisk: true\n",
		"negative_fetch_tmo": "polling:\n  fetchTimeoutMS: -5\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}
