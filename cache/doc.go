// Package cache provides a bounded in-memory store with TTL expiry, LRU
// eviction and single-flight computation.
//
// A Store holds at most Policy.MaxEntries entries. Each entry carries its own
// expiry; an expired entry is treated as absent and purged lazily. When an
// insert finds the store full, expired entries are purged first and the least
// recently accessed live entry is evicted only if that was not enough.
//
// GetOrCompute guarantees that concurrent misses for the same key run the
// compute function once. Every waiter receives the same value or the same
// error, and errors are never stored.
//
// Keys are built with Key so that every component shares the
// <namespace>:<part> convention.
package cache
