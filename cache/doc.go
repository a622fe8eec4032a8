// Package cache provides the cache-aside contract and key serialization used by
// the CRUD services.
//
// # Overview
//
// This package exports two main interfaces and their default implementations:
//
//   - CacheService: get-or-set, get, set, remove and remove-by-prefix over an
//     in-process store with sliding and absolute expiration
//   - KeySerializer: builds stable cache keys from a namespace and arguments
//
// # Basic Usage
//
//	svc, err := cache.NewCacheService(cache.DefaultConfig(), logger)
//	serializer := cache.NewDefaultKeySerializer()
//
//	key := serializer.SerializeKey("customer", 42) // customer::42
//	c, err := cache.GetOrSet(ctx, svc, key, func(ctx context.Context) (*Customer, error) {
//		return repo.FindByID(ctx, 42)
//	}, 0)
//
// A zero ttl selects the configured defaults (30m sliding, 1h absolute). Any
// other ttl sets sliding to ttl and absolute to twice ttl, both capped at
// Config.TTL.
//
// # Invalidation
//
// Every key for an entity begins with serializer.Namespace(entity). Writers
// call RemoveByPrefix with that namespace, which drops both list pages and
// single-entity lookups in one scan.
//
// # Error Handling
//
// CacheService implementations log and swallow their own failures. A broken
// cache degrades to a miss, never to a failed read. GetOrSet only returns
// errors produced by the factory, so callers can still tell a store failure
// from a cache failure.
package cache
