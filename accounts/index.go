package accounts

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jonwraymond/analyticsresolve/cache"
	"github.com/jonwraymond/analyticsresolve/health"
	"github.com/jonwraymond/analyticsresolve/observe"
	"github.com/jonwraymond/analyticsresolve/platform"
	"github.com/jonwraymond/analyticsresolve/resilience"
)

// cacheNamespace prefixes every snapshot key: accounts:<platform>.
const cacheNamespace = "accounts"

// Index serves per-platform inventory snapshots from a cache, discovering
// them on a miss.
//
// Contract:
// - Concurrency: safe for concurrent use. Concurrent misses for one
// platform run a single discovery; every caller receives its snapshot or
// its error.
// - Failed discoveries are not cached.
// - Snapshots are immutable.
type Index struct {
	store    cache.Cache[*Snapshot]
	listers  map[platform.Platform]platform.Lister
	order    []platform.Platform
	limiters map[platform.Platform]*resilience.RateLimiter
	trackers map[platform.Platform]*health.Tracker
	opts     options
}

// New creates an index over the given listers. At most one lister per
// platform is accepted.
func New(store cache.Cache[*Snapshot], listers []platform.Lister, opts ...Option) (*Index, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if len(listers) == 0 {
		return nil, ErrNoListers
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ix := &Index{
		store:    store,
		listers:  make(map[platform.Platform]platform.Lister, len(listers)),
		limiters: make(map[platform.Platform]*resilience.RateLimiter, len(listers)),
		trackers: make(map[platform.Platform]*health.Tracker, len(listers)),
		opts:     o,
	}

	for _, l := range listers {
		if l == nil {
			continue
		}
		p := l.Platform()
		if !p.Valid() {
			return nil, fmt.Errorf("%w: %q", platform.ErrUnknownPlatform, p)
		}
		if _, dup := ix.listers[p]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateLister, p)
		}
		ix.listers[p] = l
		if o.rate > 0 {
			ix.limiters[p] = resilience.NewRateLimiter(resilience.RateLimiterConfig{Rate: o.rate, Burst: o.burst})
		}
		ix.trackers[p] = health.NewTracker("accounts."+string(p), health.TrackerConfig{
			MaxAge: o.staleAfter,
			Now:    o.now,
		})
	}
	if len(ix.listers) == 0 {
		return nil, ErrNoListers
	}

	for _, p := range platform.Platforms() {
		if _, ok := ix.listers[p]; ok {
			ix.order = append(ix.order, p)
		}
	}
	return ix, nil
}

// Platforms returns the registered platforms in fixed order.
func (ix *Index) Platforms() []platform.Platform {
	out := make([]platform.Platform, len(ix.order))
	copy(out, ix.order)
	return out
}

// Resolve expands p into the registered platforms it names. All expands to
// every registered platform.
func (ix *Index) Resolve(p platform.Platform) ([]platform.Platform, error) {
	if p == platform.All || p == "" {
		return ix.Platforms(), nil
	}
	if _, ok := ix.listers[p]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrPlatformNotRegistered, p)
	}
	return []platform.Platform{p}, nil
}

// Get returns the snapshot for p.
func (ix *Index) Get(ctx context.Context, p platform.Platform) (*Snapshot, error) {
	snap, _, err := ix.Fetch(ctx, p)
	return snap, err
}

// Fetch returns the snapshot for p and reports whether it came from the
// cache.
func (ix *Index) Fetch(ctx context.Context, p platform.Platform) (*Snapshot, bool, error) {
	lister, ok := ix.listers[p]
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", ErrPlatformNotRegistered, p)
	}

	key, err := cache.Key(cacheNamespace, string(p))
	if err != nil {
		return nil, false, err
	}

	snap, cached, err := ix.store.GetOrCompute(ctx, key, ix.opts.ttl, func(ctx context.Context) (*Snapshot, error) {
		return ix.discover(ctx, lister)
	})
	ix.opts.metrics.RecordCacheLookup(ctx, string(p), cached)
	if err != nil {
		return nil, false, err
	}
	return snap, cached, nil
}

// Invalidate drops the cached snapshot of p, or of every platform when p is
// All, and returns the platforms affected.
func (ix *Index) Invalidate(p platform.Platform) ([]platform.Platform, error) {
	targets, err := ix.Resolve(p)
	if err != nil {
		return nil, err
	}
	if p == platform.All || p == "" {
		ix.InvalidateAll()
		return targets, nil
	}
	for _, t := range targets {
		key, err := cache.Key(cacheNamespace, string(t))
		if err != nil {
			return nil, err
		}
		ix.store.Invalidate(key)
	}
	return targets, nil
}

// InvalidateAll drops every cached snapshot and returns how many were
// present.
func (ix *Index) InvalidateAll() int {
	return ix.store.InvalidatePrefix(cache.Prefix(cacheNamespace))
}

// Stats returns the counters of the underlying cache.
func (ix *Index) Stats() cache.Stats {
	return ix.store.Stats()
}

// discover runs one full discovery of a platform. It executes inside the
// cache's single-flight compute, so ctx is detached from any one caller.
func (ix *Index) discover(ctx context.Context, lister platform.Lister) (*Snapshot, error) {
	p := lister.Platform()
	ctx, cancel := context.WithTimeout(ctx, ix.opts.discoveryTimeout)
	defer cancel()

	ctx, span := ix.opts.tracer.StartOperation(ctx, "accounts.discover."+string(p),
		attribute.String("platform", string(p)),
	)
	logger := ix.opts.logger.With(observe.F("platform", string(p)))
	start := time.Now()

	var calls atomic.Int64
	exec := ix.executor(ctx, p, logger)
	do := func(ctx context.Context, op string, call func(context.Context) error) error {
		return exec.Execute(ctx, string(p)+"."+op, func(ctx context.Context) error {
			calls.Add(1)
			return call(ctx)
		})
	}

	raws, err := lister.ListAccounts(ctx, do)
	duration := time.Since(start)
	if err != nil {
		err = &DiscoveryError{Platform: p, Err: err}
		ix.trackers[p].RecordFailure(err)
		ix.opts.metrics.RecordDiscovery(ctx, string(p), duration, int(calls.Load()), 0, err)
		ix.opts.tracer.EndSpan(span, err)
		logger.Error(ctx, "account discovery failed",
			observe.F("duration_ms", float64(duration.Milliseconds())),
			observe.F("upstream_calls", calls.Load()),
			observe.F("error", err.Error()),
		)
		return nil, err
	}

	snap := NewSnapshot(p, Flatten(p, raws), ix.opts.now())
	ix.trackers[p].RecordSuccess(map[string]any{
		"records":  snap.Len(),
		"built_at": snap.BuiltAt().UTC().Format(time.RFC3339),
	})
	ix.opts.metrics.RecordDiscovery(ctx, string(p), duration, int(calls.Load()), snap.Len(), nil)
	span.SetAttributes(attribute.Int("records", snap.Len()))
	ix.opts.tracer.EndSpan(span, nil)
	logger.Info(ctx, "account discovery completed",
		observe.F("duration_ms", float64(duration.Milliseconds())),
		observe.F("upstream_calls", calls.Load()),
		observe.F("records", snap.Len()),
	)
	return snap, nil
}

// executor builds the resilience stack for one discovery. The rate limiter
// is shared by every discovery of the platform.
func (ix *Index) executor(ctx context.Context, p platform.Platform, logger observe.Logger) *resilience.Executor {
	retryOpts := []resilience.RetryOption{
		resilience.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logger.Warn(ctx, "upstream call failed, retrying",
				observe.F("attempt", attempt),
				observe.F("delay_ms", float64(delay.Milliseconds())),
				observe.F("error", err.Error()),
			)
		}),
	}
	if ix.opts.rand != nil {
		retryOpts = append(retryOpts, resilience.WithRand(ix.opts.rand))
	}

	execOpts := []resilience.ExecutorOption{
		resilience.WithRetry(resilience.NewRetry(ix.opts.retry, platform.Classify, retryOpts...)),
		resilience.WithAttemptTimeout(ix.opts.attemptTimeout),
	}
	if rl, ok := ix.limiters[p]; ok {
		execOpts = append(execOpts, resilience.WithRateLimiter(rl))
	}
	return resilience.NewExecutor(execOpts...)
}
