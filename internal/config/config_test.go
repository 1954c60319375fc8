package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 6, cfg.Geo.IndexPrecision)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GEO_INDEX_PRECISION", "7")
	t.Setenv("GEO_SEARCH_RADIUS_KM", "0.25")
	t.Setenv("SERVER_READ_TIMEOUT", "3s")
	t.Setenv("STORE_BACKEND", "REDIS")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 7, cfg.Geo.IndexPrecision)
	assert.Equal(t, 0.25, cfg.Geo.SearchRadiusKm)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("GEO_INDEX_PRECISION=8\nLOG_FORMAT=json\n"), 0o600))
	// godotenv never overrides variables that are already set, so make sure
	// these two start out unset and are restored afterwards.
	t.Setenv("GEO_INDEX_PRECISION", "")
	t.Setenv("LOG_FORMAT", "")
	os.Unsetenv("GEO_INDEX_PRECISION")
	os.Unsetenv("LOG_FORMAT")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Geo.IndexPrecision)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadKeepsDefaultsOnBadValues(t *testing.T) {
	t.Setenv("GEO_INDEX_PRECISION", "six")
	t.Setenv("GEO_SEARCH_RADIUS_KM", "far")
	t.Setenv("STORE_BACKEND", "postgres")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEO_INDEX_PRECISION")
	assert.Contains(t, err.Error(), "GEO_SEARCH_RADIUS_KM")
	assert.Contains(t, err.Error(), "STORE_BACKEND")

	defaults := NewDefaultConfig()
	assert.Equal(t, defaults.Geo.IndexPrecision, cfg.Geo.IndexPrecision)
	assert.Equal(t, defaults.Geo.SearchRadiusKm, cfg.Geo.SearchRadiusKm)
	assert.Equal(t, defaults.Store.Backend, cfg.Store.Backend)
}

func TestLoadRejectsNonPositivePrecision(t *testing.T) {
	t.Setenv("GEO_INDEX_PRECISION", "0")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Equal(t, 6, cfg.Geo.IndexPrecision)
}
