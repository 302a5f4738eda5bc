package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Sentinel errors for cache operations.
var (
	ErrNilCompute = errors.New("cache: compute function is nil")
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
)

// ComputeFunc produces the value for a key on a cache miss.
type ComputeFunc[V any] func(ctx context.Context) (V, error)

// Cache is a time-bounded, capacity-bounded key/value store.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Get is a side-effecting read: hits refresh recency, expired hits are purged.
// - GetOrCompute runs at most one ComputeFunc per key at a time; concurrent
// callers share its value or its error. Errors are never stored.
// - Invalidate and InvalidatePrefix drop stored values and mark matching
// in-flight computes stale. A stale compute keeps running and answers every
// caller that joined it, including callers that arrived after the
// invalidation, but its result is not stored. No second compute for the key
// starts until it finishes.
type Cache[V any] interface {
	// Get retrieves a live value. Returns (zero, false) on miss or expiry.
	Get(key string) (V, bool)

	// Set stores a value with the given TTL. The TTL is passed through the
	// store's Policy before use.
	Set(key string, value V, ttl time.Duration) error

	// Invalidate removes a value. Idempotent - no error on miss.
	Invalidate(key string)

	// InvalidatePrefix removes every key starting with prefix and returns
	// how many were removed.
	InvalidatePrefix(prefix string) int

	// GetOrCompute returns the cached value for key, or runs compute once
	// for all concurrent callers and stores its result. The boolean reports
	// whether the value was served from the cache.
	GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute ComputeFunc[V]) (V, bool, error)

	// Stats returns a point-in-time snapshot of store counters.
	Stats() Stats
}

// Stats reports cache usage counters.
type Stats struct {
	Size      int     `json:"size"`
	Capacity  int     `json:"capacity"`
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	Evictions uint64  `json:"evictions"`
	HitRate   float64 `json:"hit_rate"`
}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
