package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PREDICTOR_API_BASE", "")
	t.Setenv("REQUEST_TIMEOUT", "")
	t.Setenv("HISTORY_BACKEND", "")

	cfg, err := Load(Overrides{})
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIBase, cfg.APIBase)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, BackendFile, cfg.HistoryBackend)
	assert.NotEmpty(t, cfg.HistoryPath)
}

func TestLoadRuntimeOverrideWins(t *testing.T) {
	t.Setenv("PREDICTOR_API_BASE", "https://risk.example.com/api/")

	cfg, err := Load(Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "https://risk.example.com/api", cfg.APIBase)

	cfg, err = Load(Overrides{APIBase: "http://127.0.0.1:9000"})
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.APIBase)
}

func TestLoadBuildDefault(t *testing.T) {
	t.Setenv("PREDICTOR_API_BASE", "")
	saved := DefaultAPIBase
	t.Cleanup(func() { DefaultAPIBase = saved })

	DefaultAPIBase = ""
	cfg, err := Load(Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "", cfg.APIBase)
}

func TestLoadNumbers(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "30")
	t.Setenv("REQUESTS_PER_SEC", "not-a-number")
	t.Setenv("HISTORY_BACKEND", "SQLite")

	cfg, err := Load(Overrides{LogLevel: "debug"})
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5, cfg.RequestsPerSec)
	assert.Equal(t, BackendSQLite, cfg.HistoryBackend)
	assert.Equal(t, "debug", cfg.LogLevel)
}
