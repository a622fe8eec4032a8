package cache

import (
	"time"

	"github.com/goliatone/go-sales-api/internal/cacheinfra"
	"go.uber.org/zap"
)

// Config exposes cache configuration options for consumers of the cache package.
type Config struct {
	// Enabled is the process-wide switch. A disabled cache computes every
	// value from the factory and stores nothing.
	Enabled bool

	// DefaultSlidingExpiration applies when the caller passes a zero ttl.
	DefaultSlidingExpiration time.Duration
	// DefaultAbsoluteExpiration caps an entry's lifetime regardless of access.
	DefaultAbsoluteExpiration time.Duration

	Capacity           int
	NumShards          int
	TTL                time.Duration
	EvictionPercentage int
	EvictionInterval   time.Duration
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return convertFromInternal(cacheinfra.DefaultConfig())
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return c.toInternal().Validate()
}

// NewCacheService constructs the default cache service implementation using the provided configuration.
func NewCacheService(cfg Config, logger *zap.Logger) (CacheService, error) {
	return cacheinfra.NewService(cfg.toInternal(), logger)
}

func (c Config) toInternal() cacheinfra.Config {
	return cacheinfra.Config{
		Enabled:                   c.Enabled,
		DefaultSlidingExpiration:  c.DefaultSlidingExpiration,
		DefaultAbsoluteExpiration: c.DefaultAbsoluteExpiration,
		Capacity:                  c.Capacity,
		NumShards:                 c.NumShards,
		TTL:                       c.TTL,
		EvictionPercentage:        c.EvictionPercentage,
		EvictionInterval:          c.EvictionInterval,
	}
}

func convertFromInternal(cfg cacheinfra.Config) Config {
	return Config{
		Enabled:                   cfg.Enabled,
		DefaultSlidingExpiration:  cfg.DefaultSlidingExpiration,
		DefaultAbsoluteExpiration: cfg.DefaultAbsoluteExpiration,
		Capacity:                  cfg.Capacity,
		NumShards:                 cfg.NumShards,
		TTL:                       cfg.TTL,
		EvictionPercentage:        cfg.EvictionPercentage,
		EvictionInterval:          cfg.EvictionInterval,
	}
}
