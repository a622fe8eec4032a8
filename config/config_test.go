package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-sales-api/internal/bunstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"APP_ENV", "APP_ADDR", "LOG_LEVEL",
	"DB_DRIVER", "DB_DSN", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
	"CACHE_ENABLED", "CACHE_SLIDING_EXPIRATION", "CACHE_ABSOLUTE_EXPIRATION", "CACHE_CAPACITY", "CACHE_SHARDS",
	"IMAGE_DIR",
}

// clearEnv unsets every key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, bunstore.DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, DefaultDSN, cfg.Database.DSN)
	assert.Equal(t, DefaultImageDir, cfg.ImageDir)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 30*time.Minute, cfg.Cache.DefaultSlidingExpiration)
	assert.Equal(t, time.Hour, cfg.Cache.DefaultAbsoluteExpiration)
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.IsProduction())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("CACHE_SLIDING_EXPIRATION", "5m")
	t.Setenv("CACHE_ABSOLUTE_EXPIRATION", "4h")
	t.Setenv("CACHE_CAPACITY", "50")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Cache.DefaultSlidingExpiration)
	assert.Equal(t, 4*time.Hour, cfg.Cache.TTL, "ttl ceiling grows with the absolute expiration")
	assert.Equal(t, 50, cfg.Cache.Capacity)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_PostgresDSN(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", bunstore.DriverPgx)
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "sales")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "postgres://app:secret@db:5432/sales?sslmode=disable", cfg.Database.DSN)

	t.Setenv("DB_DSN", "postgres://explicit")
	cfg, err = FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "postgres://explicit", cfg.Database.DSN)
}

func TestFromEnv_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"CACHE_ENABLED", "maybe"},
		{"CACHE_SLIDING_EXPIRATION", "soon"},
		{"CACHE_ABSOLUTE_EXPIRATION", "10"},
		{"CACHE_CAPACITY", "lots"},
		{"CACHE_SHARDS", "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := FromEnv()

			var cfgErr *Error
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.key, cfgErr.Field)
		})
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty addr", func(c *Config) { c.Addr = "" }, "APP_ADDR"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }, "DB_DRIVER"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "LOG_LEVEL"},
		{"no image dir", func(c *Config) { c.ImageDir = "" }, "IMAGE_DIR"},
		{"bad cache", func(c *Config) { c.Cache.Capacity = 0 }, "CACHE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := FromEnv()
			require.NoError(t, err)
			tt.mutate(cfg)

			var cfgErr *Error
			require.True(t, errors.As(cfg.Validate(), &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, DefaultAddr, cfg.Addr)
}

func TestLoad_ReadsEnvFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("APP_ADDR=:9090\nIMAGE_DIR=/tmp/pics\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "/tmp/pics", cfg.ImageDir)
}

func TestNewLogger(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)

	cfg.LogLevel = "loud"
	_, err = NewLogger(cfg)
	assert.Error(t, err)
}
