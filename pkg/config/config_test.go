package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"DB_HOST", "DB_NAME", "CACHE_BACKEND", "CACHE_TTL", "SEARCH_TIMEOUT", "REDIS_DB", "SEARCH_API_URL", "SEARCH_MODEL"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, CacheBackendNone, cfg.CacheBackend)
	assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL)
	assert.Equal(t, DefaultSearchURL, cfg.SearchURL)
	assert.Equal(t, DefaultSearchModel, cfg.SearchModel)
	assert.Equal(t, 60*time.Second, cfg.SearchTimeout)
}

func TestLoad_PostgresWhenDatabaseConfigured(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_NAME", "scanner")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, CacheBackendPostgres, cfg.CacheBackend)
	assert.Contains(t, cfg.DB.DSN(), "dbname=scanner")
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("backend", func(t *testing.T) {
		t.Setenv("CACHE_BACKEND", "dynamo")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("ttl", func(t *testing.T) {
		t.Setenv("CACHE_BACKEND", "memory")
		t.Setenv("CACHE_TTL", "a day")
		_, err := Load()
		assert.Error(t, err)
	})
}
