package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "morsechat", cfg.ServiceName)
	assert.Equal(t, 12345, cfg.HTTPPort)
	assert.Equal(t, ":12345", cfg.Addr())
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, 100, cfg.HistoryLimit)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.AuthEnabled())
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeFile(t, `
service:
  name: morse-test
  http_port: 9000
log:
  level: debug
  format: text
store:
  driver: redis
  history_limit: 25
  redis_url: redis://localhost:6379/0
supabase:
  jwt_secret: file-secret
websocket:
  allowed_origins: ["https://chat.example.com"]
shutdown_timeout_seconds: 3
`)
	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "morse-test", cfg.ServiceName)
	assert.Equal(t, 9100, cfg.HTTPPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, DriverRedis, cfg.StoreDriver)
	assert.Equal(t, 25, cfg.HistoryLimit)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.True(t, cfg.AuthEnabled())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestLoadValidation(t *testing.T) {
	t.Run("redis without url", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "redis")
		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "REDIS_URL")
	})

	t.Run("supabase without key", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "supabase")
		t.Setenv("SUPABASE_URL", "https://project.supabase.co")
		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SUPABASE_KEY")
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "cassandra")
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("bad port", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "70000")
		_, err := Load("")
		assert.Error(t, err)
	})

	for _, name := range []string{"HTTP_PORT", "HISTORY_LIMIT", "SHUTDOWN_TIMEOUT_SECONDS"} {
		t.Run("non-numeric "+name, func(t *testing.T) {
			t.Setenv(name, "ten")
			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeFile(t, "service: [unterminated")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}
