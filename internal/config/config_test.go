package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadCacheConfigDefaults(t *testing.T) {
	cfg := LoadCacheConfig()
	require.True(t, cfg.Enabled)
	require.True(t, cfg.Methods["GET"])
	require.False(t, cfg.Methods["POST"])
	require.Equal(t, 30*time.Second, cfg.TTL)
}

func TestLoadCacheConfigOverrides(t *testing.T) {
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("CACHE_METHODS", "get, head")

	cfg := LoadCacheConfig()
	require.False(t, cfg.Enabled)
	require.Equal(t, 2*time.Minute, cfg.TTL)
	require.True(t, cfg.Methods["GET"])
	require.True(t, cfg.Methods["HEAD"])
}

func TestLoadRateLimitConfigClamping(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "-5")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	require.Equal(t, 1, cfg.Capacity)
	require.Equal(t, 1, cfg.RefillTokens)
	require.Equal(t, 2*time.Second, cfg.RefillInterval)
	// TTL is raised so idle buckets outlive several refill intervals
	require.Equal(t, 10*time.Second, cfg.TTL)
}

func TestParseMethods(t *testing.T) {
	m := parseMethods("GET,,post ")
	require.True(t, m["GET"])
	require.True(t, m["POST"])
	require.Len(t, m, 2)
}
