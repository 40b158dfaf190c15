package config_test

import (
	"testing"

	"partition-manager/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "s3.amazonaws.com", cfg.Storage.Endpoint)
	assert.True(t, cfg.Storage.UseSSL)
	assert.Equal(t, 30, cfg.Storage.TimeoutSeconds)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Empty(t, cfg.Catalog.Region)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CATALOG_REGION", "eu-west-1")
	t.Setenv("CATALOG_ENDPOINT", "http://localhost:4566")
	t.Setenv("STORAGE_USE_SSL", "false")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.LoadConfig(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.Catalog.Region)
	assert.Equal(t, "http://localhost:4566", cfg.Catalog.Endpoint)
	assert.False(t, cfg.Storage.UseSSL)
	assert.Equal(t, "debug", cfg.Log.Level)
}
