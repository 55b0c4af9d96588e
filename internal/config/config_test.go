package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileWithDefaults(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: http://api.test/api
payment:
  default_amount: 49900
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "5173", cfg.Port)
	assert.Equal(t, "http://api.test/api", cfg.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.APITimeout)
	assert.Equal(t, 30*time.Second, cfg.PredictorTimeout)
	assert.Equal(t, DriverSQLite, cfg.TokenStoreDriver)
	assert.Equal(t, "profile.db", cfg.TokenStoreDSN)
	assert.Equal(t, "default", cfg.Profile)
	assert.Equal(t, 60*time.Second, cfg.ResendCooldown)
	assert.Equal(t, 15*time.Minute, cfg.CheckoutTimeout)
	assert.Equal(t, int64(49900), cfg.DefaultAmount)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: http://api.test/api
token_store:
  driver: sqlite
  dsn: profile.db
`)
	t.Setenv("PREDICTOR_API_BASE_URL", "https://api.example.com/api")
	t.Setenv("PREDICTOR_TOKEN_STORE_DRIVER", "redis")
	t.Setenv("PREDICTOR_REDIS_ADDR", "redis:6379")
	t.Setenv("PREDICTOR_PORT", "8088")
	t.Setenv("PREDICTOR_LOG_DEV", "1")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, DriverRedis, cfg.TokenStoreDriver)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, "8088", cfg.Port)
	assert.True(t, cfg.LogDev)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing base url",
			body:    "app:\n  port: 1\n",
			wantErr: "api.base_url is required",
		},
		{
			name:    "bad duration",
			body:    "api:\n  base_url: http://x\n  timeout: soon\n",
			wantErr: "invalid API timeout",
		},
		{
			name:    "unknown driver",
			body:    "api:\n  base_url: http://x\ntoken_store:\n  driver: floppy\n",
			wantErr: `unknown token store driver "floppy"`,
		},
		{
			name:    "redis without address",
			body:    "api:\n  base_url: http://x\ntoken_store:\n  driver: redis\n",
			wantErr: "redis.addr is required",
		},
		{
			name:    "malformed yaml",
			body:    "api: [",
			wantErr: "could not parse config yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not read config file")
}
