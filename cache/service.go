package cache

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidResultType is returned by the typed helpers when the cached value
// cannot be converted to the requested type.
var ErrInvalidResultType = errors.New("cache: invalid result type")

// KeySerializer builds a cache key from a namespace + arbitrary args.
// It is responsible for producing stable keys across calls.
type KeySerializer interface {
	SerializeKey(namespace string, args ...any) string
	// Namespace returns the prefix shared by every key produced for name.
	Namespace(name string) string
}

// Factory computes a value on a cache miss.
type Factory = func(ctx context.Context) (any, error)

// FetchFn is the typed factory used by GetOrSet.
type FetchFn[T any] func(ctx context.Context) (T, error)

// CacheService exposes the cache-aside operations used by the CRUD services.
//
// Implementations never return internal cache failures to callers; they log
// them and degrade to a miss. The only error GetOrSet returns is the one
// produced by the factory.
//
// A ttl of zero selects the default expiration policy.
type CacheService interface {
	GetOrSet(ctx context.Context, key string, factory Factory, ttl time.Duration) (any, error)
	Get(ctx context.Context, key string) (any, bool)
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	Remove(ctx context.Context, key string)
	RemoveByPrefix(ctx context.Context, prefix string)
	IsEnabled() bool
}

// GetOrSet is a type-safe wrapper function that provides generic support for CacheService.
func GetOrSet[T any](ctx context.Context, service CacheService, key string, fetchFn FetchFn[T], ttl time.Duration) (T, error) {
	var zero T

	result, err := service.GetOrSet(ctx, key, func(ctx context.Context) (any, error) {
		return fetchFn(ctx)
	}, ttl)
	if err != nil {
		return zero, err
	}

	return convert[T](result)
}

// Get returns the typed value stored under key. A stored value of a different
// type is reported as ErrInvalidResultType.
func Get[T any](ctx context.Context, service CacheService, key string) (T, bool, error) {
	var zero T

	result, ok := service.Get(ctx, key)
	if !ok {
		return zero, false, nil
	}

	value, err := convert[T](result)
	if err != nil {
		return zero, false, err
	}
	return value, true, nil
}

func convert[T any](result any) (T, error) {
	var zero T
	if result == nil {
		return zero, nil
	}

	typed, ok := result.(T)
	if !ok {
		return zero, ErrInvalidResultType
	}
	return typed, nil
}
