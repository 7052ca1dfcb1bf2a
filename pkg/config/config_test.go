package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, CacheBackendRedis, cfg.Cache.Backend)
	assert.Equal(t, CacheCodecJSON, cfg.Cache.Codec)
	assert.Equal(t, time.Hour, cfg.Cache.DefaultTTL)
	assert.Equal(t, 2*time.Hour, cfg.Cache.RegionTTLs["courses"])
	assert.Equal(t, 5*time.Minute, cfg.Cache.RegionTTLs["statistics"])
	assert.Equal(t, 30*time.Minute, cfg.Cache.RegionTTLs["compositions"])
	assert.Less(t, cfg.Cache.OperationTimeout, cfg.Database.QueryTimeout)
}

func TestLoadRegionOverrides(t *testing.T) {
	t.Setenv("CACHE_DEFAULT_TTL_MS", "60000")
	t.Setenv("CACHE_TTL_COURSES_MS", "1500")
	t.Setenv("CACHE_CODEC", "MSGPACK")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.Cache.DefaultTTL)
	assert.Equal(t, 1500*time.Millisecond, cfg.Cache.RegionTTLs["courses"])
	assert.Equal(t, 15*time.Minute, cfg.Cache.RegionTTLs["search"])
	assert.Equal(t, CacheCodecMsgpack, cfg.Cache.Codec)
}

func TestLoadClampsCacheTimeoutBelowDatabaseTimeout(t *testing.T) {
	t.Setenv("DB_QUERY_TIMEOUT", "1s")
	t.Setenv("CACHE_OPERATION_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Cache.OperationTimeout)
}
