package cacheinfra

import (
	"sync/atomic"
	"time"

	"github.com/viccon/sturdyc"
)

// Config holds the configuration for the sturdyc cache adapter.
type Config struct {
	// Enabled turns caching on for the whole process.
	Enabled bool

	// DefaultSlidingExpiration is how long an entry survives without being read.
	// Each hit restarts the window. Default: 30m
	DefaultSlidingExpiration time.Duration

	// DefaultAbsoluteExpiration is the hard lifetime of an entry, counted
	// from the moment it was stored. Default: 1h
	DefaultAbsoluteExpiration time.Duration

	// Capacity defines the maximum number of entries that the cache can store.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	// Must be greater than 0. Default: 256
	NumShards int

	// TTL is the sturdyc level ceiling. Entries past it are dropped by the
	// client even if their own policy would keep them. It must be at least
	// DefaultAbsoluteExpiration.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the cache reaches its capacity. Must be between 1-100.
	EvictionPercentage int

	// EvictionInterval sets how often the cache checks for expired entries.
	// Zero value uses the default interval.
	EvictionInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Enabled:                   true,
		DefaultSlidingExpiration:  30 * time.Minute,
		DefaultAbsoluteExpiration: time.Hour,
		Capacity:                  10000,
		NumShards:                 256,
		TTL:                       2 * time.Hour,
		EvictionPercentage:        10,
	}
}

// ToSturdycOptions converts the Config to sturdyc.Option slice.
// Capacity, NumShards, TTL, and EvictionPercentage are passed directly
// to sturdyc.New() and are not included here.
func (c Config) ToSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option

	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}

	return options
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.DefaultSlidingExpiration <= 0 {
		return &ConfigError{Field: "DefaultSlidingExpiration", Message: "must be greater than 0"}
	}

	if c.DefaultAbsoluteExpiration <= 0 {
		return &ConfigError{Field: "DefaultAbsoluteExpiration", Message: "must be greater than 0"}
	}

	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}

	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}

	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	if c.TTL < c.DefaultAbsoluteExpiration {
		return &ConfigError{Field: "TTL", Message: "must not be shorter than DefaultAbsoluteExpiration"}
	}

	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// Expiration is the per-entry policy: an entry expires when it has not been
// read for Sliding, or when Absolute has elapsed since it was stored.
type Expiration struct {
	Sliding  time.Duration
	Absolute time.Duration
}

// Store is the raw key/value backend behind Service. Implementations may fail;
// Service is the layer that turns failures into log lines.
type Store interface {
	Get(key string) (any, bool)
	Set(key string, value any, exp Expiration) error
	Delete(key string) error
	Keys() []string
}

// Clock returns the current time. Tests swap it to move time forward.
type Clock func() time.Time

type entry struct {
	value      any
	storedAt   time.Time
	expiration Expiration
	lastAccess atomic.Int64
}

func (e *entry) expired(now time.Time) bool {
	if e.expiration.Absolute > 0 && now.Sub(e.storedAt) >= e.expiration.Absolute {
		return true
	}
	last := time.Unix(0, e.lastAccess.Load())
	return e.expiration.Sliding > 0 && now.Sub(last) >= e.expiration.Sliding
}

// sturdycStore keeps entries in a sturdyc client and layers sliding and
// absolute expiry on top of the client's single TTL.
type sturdycStore struct {
	client *sturdyc.Client[*entry]
	now    Clock
}

// NewSturdycStore creates a sturdyc backed Store.
//
// The constructor translates Config parameters to sturdyc initialization:
// - Capacity, NumShards, TTL, EvictionPercentage are passed to sturdyc.New()
// - Other options are applied via ToSturdycOptions()
func NewSturdycStore(cfg Config, clock Clock) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = time.Now
	}

	client := sturdyc.New[*entry](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &sturdycStore{client: client, now: clock}, nil
}

func (s *sturdycStore) Get(key string) (any, bool) {
	e, ok := s.client.Get(key)
	if !ok || e == nil {
		return nil, false
	}

	now := s.now()
	if e.expired(now) {
		s.client.Delete(key)
		return nil, false
	}

	e.lastAccess.Store(now.UnixNano())
	return e.value, true
}

func (s *sturdycStore) Set(key string, value any, exp Expiration) error {
	now := s.now()
	e := &entry{value: value, storedAt: now, expiration: exp}
	e.lastAccess.Store(now.UnixNano())

	s.client.Set(key, e)
	return nil
}

func (s *sturdycStore) Delete(key string) error {
	s.client.Delete(key)
	return nil
}

func (s *sturdycStore) Keys() []string {
	return s.client.ScanKeys()
}
