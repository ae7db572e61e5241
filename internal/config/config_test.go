package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/catalog-console/internal/config"
	"github.com/stretchr/testify/require"
)

func TestEnvDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("BIND_ADDR", "")
	t.Setenv("ENV", "")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("SESSION_BACKEND", "")

	c := config.New()
	require.Equal(t, "127.0.0.1:3000", c.GetListenAddr())
	require.True(t, config.IsLoopback(c.GetListenAddr()))
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "http://localhost:5000", c.GetAPIBaseURL())
	require.Equal(t, config.SessionBackendFile, c.GetSessionBackend())
	require.Equal(t, "persist", c.GetSessionNamespace())
	require.Equal(t, 15*time.Second, c.GetAPITimeout())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("BIND_ADDR", "")
	t.Setenv("API_BASE_URL", "https://api.example.com/")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("SESSION_BACKEND", "REDIS")

	c := config.New()
	require.Equal(t, "127.0.0.1:8081", c.GetListenAddr())
	require.Equal(t, "https://api.example.com", c.GetAPIBaseURL())
	require.Equal(t, 3*time.Second, c.GetAPITimeout())
	require.Equal(t, config.SessionBackendRedis, c.GetSessionBackend())
}

func TestListenAddr(t *testing.T) {
	t.Run("port with colon", func(t *testing.T) {
		t.Setenv("PORT", ":4000")
		t.Setenv("BIND_ADDR", "")
		require.Equal(t, "127.0.0.1:4000", config.New().GetListenAddr())
	})

	t.Run("all interfaces is opt in", func(t *testing.T) {
		t.Setenv("PORT", "3000")
		t.Setenv("BIND_ADDR", "0.0.0.0")
		addr := config.New().GetListenAddr()
		require.Equal(t, "0.0.0.0:3000", addr)
		require.False(t, config.IsLoopback(addr))
	})

	t.Run("ipv6 loopback", func(t *testing.T) {
		t.Setenv("PORT", "3000")
		t.Setenv("BIND_ADDR", "::1")
		addr := config.New().GetListenAddr()
		require.Equal(t, "[::1]:3000", addr)
		require.True(t, config.IsLoopback(addr))
	})

	t.Run("loopback check", func(t *testing.T) {
		require.True(t, config.IsLoopback("localhost:3000"))
		require.False(t, config.IsLoopback(":3000"))
		require.False(t, config.IsLoopback("192.168.1.10:3000"))
		require.False(t, config.IsLoopback("not an address"))
	})
}

func TestUnknownSessionBackendFallsBackToFile(t *testing.T) {
	t.Setenv("SESSION_BACKEND", "etcd")
	require.Equal(t, config.SessionBackendFile, config.New().GetSessionBackend())
}

func TestPageSize(t *testing.T) {
	t.Run("allowed option", func(t *testing.T) {
		t.Setenv("PAGE_SIZE", "25")
		require.Equal(t, 25, config.New().GetDefaultPageSize())
	})

	t.Run("not an option", func(t *testing.T) {
		t.Setenv("PAGE_SIZE", "7")
		require.Equal(t, 5, config.New().GetDefaultPageSize())
	})

	t.Run("options are copied", func(t *testing.T) {
		opts := config.New().GetPageSizeOptions()
		opts[0] = 99
		require.Equal(t, []int{5, 10, 25}, config.New().GetPageSizeOptions())
	})
}
