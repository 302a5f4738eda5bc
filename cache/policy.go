package cache

import "time"

// DefaultMaxEntries is the capacity used when Policy.MaxEntries is unset.
const DefaultMaxEntries = 2048

// Policy configures caching behavior.
type Policy struct {
	// DefaultTTL is the TTL to use when none is specified.
	// If zero, values stored without an explicit TTL are not cached.
	DefaultTTL time.Duration

	// MaxTTL is the maximum allowed TTL. Override TTLs are clamped to this.
	// If zero, no maximum is enforced.
	MaxTTL time.Duration

	// MaxEntries bounds the number of entries held by a Store.
	// Default: 2048
	MaxEntries int
}

// DefaultPolicy returns the default caching policy.
// DefaultTTL: 10 minutes, MaxTTL: 24 hours, MaxEntries: 2048
func DefaultPolicy() Policy {
	return Policy{
		DefaultTTL: 10 * time.Minute,
		MaxTTL:     24 * time.Hour,
		MaxEntries: DefaultMaxEntries,
	}
}

// NoCachePolicy returns a policy that disables caching entirely.
func NoCachePolicy() Policy {
	return Policy{MaxEntries: DefaultMaxEntries}
}

// ShouldCache returns true if caching is enabled by this policy.
func (p Policy) ShouldCache() bool {
	return p.DefaultTTL > 0
}

// EffectiveTTL returns the TTL to use, applying defaults and clamping.
func (p Policy) EffectiveTTL(override time.Duration) time.Duration {
	ttl := override
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}

	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}

	return ttl
}

// capacity returns MaxEntries with the default applied.
func (p Policy) capacity() int {
	if p.MaxEntries <= 0 {
		return DefaultMaxEntries
	}
	return p.MaxEntries
}
