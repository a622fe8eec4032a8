package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-sales-api/cache"
	"github.com/goliatone/go-sales-api/internal/bunstore"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DefaultAddr     = ":8080"
	DefaultDSN      = "file:vendas.db?cache=shared&_foreign_keys=on"
	DefaultImageDir = "images"
)

type Config struct {
	Env      string
	Addr     string
	LogLevel string
	Database bunstore.DatabaseConfig
	Cache    cache.Config
	ImageDir string
}

// Load reads .env files when present, then the process environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (*Config, error) {
	cacheCfg := cache.DefaultConfig()

	var err error
	if cacheCfg.Enabled, err = getEnvAsBool("CACHE_ENABLED", cacheCfg.Enabled); err != nil {
		return nil, err
	}
	if cacheCfg.DefaultSlidingExpiration, err = getEnvAsDuration("CACHE_SLIDING_EXPIRATION", cacheCfg.DefaultSlidingExpiration); err != nil {
		return nil, err
	}
	if cacheCfg.DefaultAbsoluteExpiration, err = getEnvAsDuration("CACHE_ABSOLUTE_EXPIRATION", cacheCfg.DefaultAbsoluteExpiration); err != nil {
		return nil, err
	}
	if cacheCfg.Capacity, err = getEnvAsInt("CACHE_CAPACITY", cacheCfg.Capacity); err != nil {
		return nil, err
	}
	if cacheCfg.NumShards, err = getEnvAsInt("CACHE_SHARDS", cacheCfg.NumShards); err != nil {
		return nil, err
	}
	if cacheCfg.TTL < cacheCfg.DefaultAbsoluteExpiration {
		cacheCfg.TTL = cacheCfg.DefaultAbsoluteExpiration
	}

	cfg := &Config{
		Env:      getEnv("APP_ENV", EnvDevelopment),
		Addr:     getEnv("APP_ADDR", DefaultAddr),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Cache:    cacheCfg,
		ImageDir: getEnv("IMAGE_DIR", DefaultImageDir),
		Database: bunstore.DatabaseConfig{
			Driver: getEnv("DB_DRIVER", bunstore.DriverSQLite),
			DSN:    os.Getenv("DB_DSN"),
		},
	}

	if cfg.Database.DSN == "" {
		cfg.Database.DSN = defaultDSN(cfg.Database.Driver)
	}

	return cfg, nil
}

func defaultDSN(driver string) string {
	switch driver {
	case bunstore.DriverPostgres, bunstore.DriverPgx:
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", "postgres"),
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_NAME", "vendas"),
			getEnv("DB_SSLMODE", "disable"),
		)
	default:
		return DefaultDSN
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return &Error{Field: "APP_ADDR", Message: "must not be empty"}
	}

	switch c.Database.Driver {
	case bunstore.DriverSQLite, bunstore.DriverPostgres, bunstore.DriverPgx:
	default:
		return &Error{Field: "DB_DRIVER", Message: fmt.Sprintf("unsupported driver %q", c.Database.Driver)}
	}

	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return &Error{Field: "LOG_LEVEL", Message: err.Error()}
	}

	if c.ImageDir == "" {
		return &Error{Field: "IMAGE_DIR", Message: "must not be empty"}
	}

	if err := c.Cache.Validate(); err != nil {
		return &Error{Field: "CACHE", Message: err.Error()}
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// NewLogger builds a production logger in production and a development
// logger otherwise, at the configured level.
func NewLogger(c *Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, &Error{Field: "LOG_LEVEL", Message: err.Error()}
	}

	zc := zap.NewDevelopmentConfig()
	if c.IsProduction() {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}

// Error is a configuration validation failure.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config error for field %s: %s", e.Field, e.Message)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &Error{Field: key, Message: "must be an integer"}
	}
	return n, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, &Error{Field: key, Message: "must be a boolean"}
	}
	return b, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, &Error{Field: key, Message: "must be a duration such as 30m"}
	}
	return d, nil
}
