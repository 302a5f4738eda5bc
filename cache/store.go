package cache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Store is an in-memory Cache with TTL expiry and LRU eviction.
//
// Entries are kept in a recency list (front = most recently accessed).
// Expired entries are logically absent and are purged lazily on access or
// in bulk when an insert needs room.
type Store[V any] struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	lru     *list.List
	policy  Policy
	now     func() time.Time

	// inflight holds the computes currently running, by key. Invalidating a
	// key marks its flight stale so the result is not stored.
	inflight map[string]*flight

	hits      uint64
	misses    uint64
	evictions uint64

	group singleflight.Group
}

type flight struct {
	stale bool
}

type entry[V any] struct {
	key            string
	value          V
	createdAt      time.Time
	expiresAt      time.Time
	lastAccessedAt time.Time
}

// StoreOption configures a Store.
type StoreOption func(*storeOptions)

type storeOptions struct {
	now func() time.Time
}

// WithClock overrides the time source used for expiry decisions.
func WithClock(now func() time.Time) StoreOption {
	return func(o *storeOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// NewStore creates a new in-memory store with the given policy.
func NewStore[V any](policy Policy, opts ...StoreOption) *Store[V] {
	o := storeOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[V]{
		entries:  make(map[string]*list.Element),
		lru:      list.New(),
		policy:   policy,
		now:      o.now,
		inflight: make(map[string]*flight),
	}
}

// Get retrieves a value from the store. Returns (zero, false) on miss or expiry.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.lookupLocked(key, true)
	if ok {
		s.hits++
	} else {
		s.misses++
	}
	return v, ok
}

// Set stores a value. A TTL that resolves to zero through the policy is a no-op.
func (s *Store[V]) Set(key string, value V, ttl time.Duration) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	ttl = s.policy.EffectiveTTL(ttl)
	if ttl <= 0 {
		return nil
	}

	s.mu.Lock()
	s.setLocked(key, value, ttl)
	s.mu.Unlock()
	return nil
}

// Invalidate removes a value from the store. Idempotent - no error on miss.
func (s *Store[V]) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(key)
	if f, ok := s.inflight[key]; ok {
		f.stale = true
	}
}

// InvalidatePrefix removes every key starting with prefix and returns the
// number of entries removed.
func (s *Store[V]) InvalidatePrefix(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doomed []string
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			doomed = append(doomed, key)
		}
	}
	for _, key := range doomed {
		s.removeLocked(key)
	}
	for key, f := range s.inflight {
		if strings.HasPrefix(key, prefix) {
			f.stale = true
		}
	}
	return len(doomed)
}

// GetOrCompute returns the live value for key or computes it.
//
// Concurrent callers for the same key share a single compute. The compute
// runs detached from the first caller's cancellation so that a caller giving
// up does not fail the others; each caller still stops waiting when its own
// ctx is done. A compute invalidated while running still answers its
// callers but is not stored.
func (s *Store[V]) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute ComputeFunc[V]) (V, bool, error) {
	var zero V
	if compute == nil {
		return zero, false, ErrNilCompute
	}
	if err := ValidateKey(key); err != nil {
		return zero, false, err
	}

	if v, ok := s.Get(key); ok {
		return v, true, nil
	}

	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		s.mu.Lock()
		if v, ok := s.lookupLocked(key, false); ok {
			s.mu.Unlock()
			return v, nil
		}
		f := &flight{}
		s.inflight[key] = f
		s.mu.Unlock()

		v, err := compute(detached)

		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.inflight, key)
		if err != nil {
			return nil, err
		}
		if eff := s.policy.EffectiveTTL(ttl); eff > 0 && !f.stale {
			s.setLocked(key, v, eff)
		}
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, false, res.Err
		}
		v, _ := res.Val.(V)
		return v, false, nil
	case <-ctx.Done():
		return zero, false, ctx.Err()
	}
}

// Len returns the number of stored entries, including expired entries that
// have not been purged yet.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Len()
}

// Stats returns a point-in-time snapshot of store counters.
func (s *Store[V]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		Size:      s.lru.Len(),
		Capacity:  s.policy.capacity(),
		Hits:      s.hits,
		Misses:    s.misses,
		Evictions: s.evictions,
	}
	if total := s.hits + s.misses; total > 0 {
		st.HitRate = float64(s.hits) / float64(total)
	}
	return st
}

// PurgeExpired removes every expired entry and returns how many were removed.
func (s *Store[V]) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.purgeExpiredLocked()
}

// lookupLocked returns the live value for key. When touch is set, a hit
// refreshes recency. An expired entry is purged. Must be called with mu held.
func (s *Store[V]) lookupLocked(key string, touch bool) (V, bool) {
	var zero V
	elem, ok := s.entries[key]
	if !ok {
		return zero, false
	}

	e := elem.Value.(*entry[V])
	now := s.now()
	if !now.Before(e.expiresAt) {
		s.removeLocked(key)
		return zero, false
	}

	if touch {
		e.lastAccessedAt = now
		s.lru.MoveToFront(elem)
	}
	return e.value, true
}

func (s *Store[V]) setLocked(key string, value V, ttl time.Duration) {
	now := s.now()

	if elem, ok := s.entries[key]; ok {
		e := elem.Value.(*entry[V])
		e.value = value
		e.createdAt = now
		e.expiresAt = now.Add(ttl)
		e.lastAccessedAt = now
		s.lru.MoveToFront(elem)
		return
	}

	if s.lru.Len() >= s.policy.capacity() {
		s.purgeExpiredLocked()
	}
	for s.lru.Len() >= s.policy.capacity() {
		s.evictLRULocked()
	}

	e := &entry[V]{
		key:            key,
		value:          value,
		createdAt:      now,
		expiresAt:      now.Add(ttl),
		lastAccessedAt: now,
	}
	s.entries[key] = s.lru.PushFront(e)
}

func (s *Store[V]) removeLocked(key string) bool {
	elem, ok := s.entries[key]
	if !ok {
		return false
	}
	s.lru.Remove(elem)
	delete(s.entries, key)
	return true
}

func (s *Store[V]) purgeExpiredLocked() int {
	now := s.now()
	removed := 0
	for elem := s.lru.Back(); elem != nil; {
		prev := elem.Prev()
		e := elem.Value.(*entry[V])
		if !now.Before(e.expiresAt) {
			s.lru.Remove(elem)
			delete(s.entries, e.key)
			removed++
		}
		elem = prev
	}
	return removed
}

// evictLRULocked removes the least recently accessed entry.
func (s *Store[V]) evictLRULocked() {
	oldest := s.lru.Back()
	if oldest == nil {
		return
	}
	e := oldest.Value.(*entry[V])
	s.lru.Remove(oldest)
	delete(s.entries, e.key)
	s.evictions++
}

// Ensure Store implements Cache
var _ Cache[string] = (*Store[string])(nil)
