package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_AppliesDefaultsWithoutConfigFile(t *testing.T) {
	t.Setenv("FILEZ_DATABASE_DSN", "postgres://localhost/filez")
	t.Setenv("FILEZ_JWT_SECRET", "test-secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, "migrations", cfg.MigrationsDir)
	assert.Equal(t, "5s", cfg.JobPollInterval)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoad_MissingRequiredFieldFails(t *testing.T) {
	t.Setenv("FILEZ_DATABASE_DSN", "")
	t.Setenv("FILEZ_JWT_SECRET", "")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_FileIndirectionOverridesSecret(t *testing.T) {
	dir := t.TempDir()
	secretPath := filepath.Join(dir, "dsn")
	require.NoError(t, os.WriteFile(secretPath, []byte("postgres://from-file/filez\n"), 0o600))

	t.Setenv("FILEZ_DATABASE_DSN", "postgres://inline/filez")
	t.Setenv("FILEZ_DATABASE_DSN_FILE", secretPath)
	t.Setenv("FILEZ_JWT_SECRET", "test-secret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://from-file/filez", cfg.DatabaseDSN)
}
