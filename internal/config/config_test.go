package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TMS_BASE_URL", "")
	t.Setenv("TMS_LOG_LEVEL", "")
	t.Setenv("TMS_TIMEOUT", "")
	t.Setenv("TMS_RATE_LIMIT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.rahtash-tms.ir", cfg.BaseURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Zero(t, cfg.RequestsPerSecond)
	assert.True(t, cfg.AllowCLIConfigToken)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("TMS_BASE_URL", "http://localhost:8000/")
	t.Setenv("TMS_LOG_LEVEL", "DEBUG")
	t.Setenv("TMS_TIMEOUT", "5s")
	t.Setenv("TMS_RATE_LIMIT", "2.5")
	t.Setenv("TMS_ALLOW_CLI_CONFIG_TOKEN", "no")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.BaseURL, "trailing slash trimmed")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 2.5, cfg.RequestsPerSecond)
	assert.False(t, cfg.AllowCLIConfigToken)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Run("bad timeout", func(t *testing.T) {
		t.Setenv("TMS_TIMEOUT", "soon")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TMS_TIMEOUT")
	})

	t.Run("bad rate limit", func(t *testing.T) {
		t.Setenv("TMS_TIMEOUT", "")
		t.Setenv("TMS_RATE_LIMIT", "fast")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TMS_RATE_LIMIT")
	})

	t.Run("negative rate limit", func(t *testing.T) {
		t.Setenv("TMS_RATE_LIMIT", "-1")
		_, err := Load()
		require.Error(t, err)
	})
}
