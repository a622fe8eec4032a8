package cacheinfra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Service implements cache.CacheService on top of a Store.
//
// Store failures, returned errors and panics alike, are logged and swallowed.
// Only factory errors reach the caller of GetOrSet.
type Service struct {
	store    Store
	logger   *zap.Logger
	enabled  bool
	sliding  time.Duration
	absolute time.Duration
	ceiling  time.Duration
}

// NewService validates cfg and builds a Service backed by a sturdyc store.
func NewService(cfg Config, logger *zap.Logger) (*Service, error) {
	store, err := NewSturdycStore(cfg, time.Now)
	if err != nil {
		return nil, err
	}
	return NewServiceWithStore(store, cfg, logger), nil
}

// NewServiceWithStore builds a Service around an existing Store.
func NewServiceWithStore(store Store, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		logger:   logger.Named("cache"),
		enabled:  cfg.Enabled,
		sliding:  cfg.DefaultSlidingExpiration,
		absolute: cfg.DefaultAbsoluteExpiration,
		ceiling:  cfg.TTL,
	}
}

// IsEnabled reports the process-wide cache switch.
func (s *Service) IsEnabled() bool {
	return s.enabled
}

// GetOrSet returns the value stored under key, or runs factory and stores its
// result. A failed write-back is logged and the computed value still returned.
// Nil results are never stored, so a later call runs the factory again.
func (s *Service) GetOrSet(ctx context.Context, key string, factory func(ctx context.Context) (any, error), ttl time.Duration) (any, error) {
	if factory == nil {
		return nil, fmt.Errorf("cache: nil factory for key %q", key)
	}

	if !s.enabled {
		return factory(ctx)
	}

	if value, ok := s.Get(ctx, key); ok && value != nil {
		s.logger.Debug("cache hit", zap.String("key", key))
		return value, nil
	}

	s.logger.Debug("cache miss", zap.String("key", key))

	value, err := factory(ctx)
	if err != nil {
		return nil, err
	}

	if value != nil {
		s.guard("write-back", key, zap.WarnLevel, func() error {
			return s.store.Set(key, value, s.expiration(ttl))
		})
	}

	return value, nil
}

// Get returns the cached value for key. Errors degrade to a miss.
func (s *Service) Get(ctx context.Context, key string) (any, bool) {
	if !s.enabled {
		return nil, false
	}

	var (
		value any
		found bool
	)
	s.guard("get", key, zap.ErrorLevel, func() error {
		value, found = s.store.Get(key)
		return nil
	})
	return value, found
}

// Set stores value under key using ttl, or the default policy when ttl is zero.
func (s *Service) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if !s.enabled {
		return
	}

	s.guard("set", key, zap.ErrorLevel, func() error {
		return s.store.Set(key, value, s.expiration(ttl))
	})
}

// Remove deletes a single key.
func (s *Service) Remove(ctx context.Context, key string) {
	if !s.enabled {
		return
	}

	s.guard("remove", key, zap.ErrorLevel, func() error {
		return s.store.Delete(key)
	})
}

// RemoveByPrefix scans every live key and deletes the ones containing prefix.
// Keys always begin with their namespace, so containment and prefix matching
// agree for the namespaces this service hands out.
func (s *Service) RemoveByPrefix(ctx context.Context, prefix string) {
	if !s.enabled {
		return
	}

	var keys []string
	s.guard("scan", prefix, zap.ErrorLevel, func() error {
		keys = s.store.Keys()
		return nil
	})

	removed := 0
	for _, key := range keys {
		if !strings.Contains(key, prefix) {
			continue
		}
		key := key
		s.guard("remove", key, zap.ErrorLevel, func() error {
			if err := s.store.Delete(key); err != nil {
				return err
			}
			removed++
			return nil
		})
	}

	s.logger.Debug("cache invalidated",
		zap.String("prefix", prefix),
		zap.Int("removed", removed),
	)
}

// expiration resolves the policy for a write: the defaults for a zero ttl,
// otherwise sliding = ttl and absolute = 2*ttl. Both are clamped to the
// store TTL, which drops entries past it regardless of the envelope.
func (s *Service) expiration(ttl time.Duration) Expiration {
	if ttl <= 0 {
		return Expiration{Sliding: s.sliding, Absolute: s.absolute}
	}
	exp := Expiration{Sliding: ttl, Absolute: 2 * ttl}
	if s.ceiling > 0 {
		exp.Sliding = min(exp.Sliding, s.ceiling)
		exp.Absolute = min(exp.Absolute, s.ceiling)
	}
	return exp
}

func (s *Service) guard(op, key string, level zapcore.Level, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			s.log(level, op, key, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := fn(); err != nil {
		s.log(level, op, key, err)
	}
}

func (s *Service) log(level zapcore.Level, op, key string, err error) {
	if ce := s.logger.Check(level, "cache "+op+" failed"); ce != nil {
		ce.Write(zap.String("key", key), zap.Error(err))
	}
}
