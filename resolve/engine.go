package resolve

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/analyticsresolve/accounts"
	"github.com/jonwraymond/analyticsresolve/cache"
	"github.com/jonwraymond/analyticsresolve/observe"
	"github.com/jonwraymond/analyticsresolve/platform"
)

// Index is the inventory an Engine resolves against. *accounts.Index
// satisfies it.
type Index interface {
	Resolve(p platform.Platform) ([]platform.Platform, error)
	Fetch(ctx context.Context, p platform.Platform) (*accounts.Snapshot, bool, error)
	Invalidate(p platform.Platform) ([]platform.Platform, error)
	Stats() cache.Stats
}

// Resolution is the detailed outcome of a resolve call.
type Resolution struct {
	Query      string                       `json:"query"`
	Normalized string                       `json:"normalized"`
	Platforms  []platform.Platform          `json:"platforms"`
	Matches    []Match                      `json:"matches"`
	Candidates int                          `json:"candidates"`
	Cached     bool                         `json:"cached"`
	Errors     map[platform.Platform]string `json:"errors,omitempty"`
}

// Top returns the best match.
func (r *Resolution) Top() (Match, bool) {
	if len(r.Matches) == 0 {
		return Match{}, false
	}
	return r.Matches[0], true
}

// Ambiguous reports whether the two best matches share tier and score.
func (r *Resolution) Ambiguous() bool {
	if len(r.Matches) < 2 {
		return false
	}
	a, b := r.Matches[0], r.Matches[1]
	return a.Type == b.Type && a.Score == b.Score
}

// Engine resolves queries against an Index.
//
// Contract:
// - Concurrency: safe for concurrent use; an Engine holds no mutable state.
// - No match is an empty result, not an error.
// - With platform.All, a platform whose discovery fails is reported in
// Resolution.Errors; the call fails only when every platform fails.
type Engine struct {
	index   Index
	config  Config
	logger  observe.Logger
	metrics observe.Metrics
	tracer  observe.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l observe.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observe.Metrics) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithTracer sets the tracer.
func WithTracer(t observe.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// New creates an engine. Zero Config fields take their defaults.
func New(index Index, config Config, opts ...Option) *Engine {
	e := &Engine{
		index:   index,
		config:  config.withDefaults(),
		logger:  observe.NopLogger(),
		metrics: observe.NopMetrics(),
		tracer:  observe.NopTracer(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the effective matcher configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Resolve returns the ranked matches for query on p. p may be platform.All.
func (e *Engine) Resolve(ctx context.Context, query string, p platform.Platform) ([]Match, error) {
	res, err := e.ResolveDetailed(ctx, query, p)
	if err != nil {
		return nil, err
	}
	return res.Matches, nil
}

// ResolveDetailed resolves query on p and reports cache use and
// per-platform failures. When kinds are given, only records of those kinds
// are matched, so an exact hit on another kind cannot shadow them.
// Candidates counts the records that were matched against.
func (e *Engine) ResolveDetailed(ctx context.Context, query string, p platform.Platform, kinds ...platform.Kind) (*Resolution, error) {
	q := Normalize(query)
	if q.Empty() {
		return nil, ErrEmptyQuery
	}
	targets, err := e.index.Resolve(p)
	if err != nil {
		return nil, err
	}
	if p == "" {
		p = platform.All
	}

	ctx, span := e.tracer.StartOperation(ctx, "resolve."+string(p),
		attribute.String("platform", string(p)),
	)
	start := time.Now()

	type outcome struct {
		matches    []Match
		candidates int
		cached     bool
		err        error
	}
	outcomes := make([]outcome, len(targets))

	// A platform failure lands in its outcome; only the caller going away
	// fails the group and stops the fan-out.
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range targets {
		g.Go(func() error {
			snap, cached, err := e.index.Fetch(gctx, t)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				outcomes[i] = outcome{err: err}
				return nil
			}
			records := ofKinds(snap.Records(), kinds)
			outcomes[i] = outcome{
				matches:    MatchRecords(q, records, e.config),
				candidates: len(records),
				cached:     cached,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.tracer.EndSpan(span, err)
		return nil, fmt.Errorf("resolve %q: %w", q.Raw, err)
	}

	res := &Resolution{
		Query:      q.Raw,
		Normalized: q.Normalized,
		Platforms:  targets,
		Matches:    []Match{},
		Cached:     true,
	}
	var errs []error
	for i, o := range outcomes {
		if o.err != nil {
			if res.Errors == nil {
				res.Errors = make(map[platform.Platform]string)
			}
			res.Errors[targets[i]] = o.err.Error()
			errs = append(errs, o.err)
			res.Cached = false
			continue
		}
		res.Matches = append(res.Matches, o.matches...)
		res.Candidates += o.candidates
		res.Cached = res.Cached && o.cached
	}

	if len(errs) == len(targets) {
		err := errors.Join(errs...)
		e.tracer.EndSpan(span, err)
		return nil, fmt.Errorf("resolve %q: %w", q.Raw, err)
	}

	SortMatches(res.Matches)
	duration := time.Since(start)

	top := "none"
	if m, ok := res.Top(); ok {
		top = m.Type.String()
	}
	span.SetAttributes(
		attribute.Int("matches", len(res.Matches)),
		attribute.String("top_match_type", top),
	)
	e.tracer.EndSpan(span, nil)
	e.metrics.RecordResolve(ctx, string(p), top, len(res.Matches), duration)

	fields := []observe.Field{
		observe.F("platform", string(p)),
		observe.F("matches", len(res.Matches)),
		observe.F("top_match_type", top),
		observe.F("cached", res.Cached),
		observe.F("duration_ms", float64(duration.Milliseconds())),
	}
	if len(errs) > 0 {
		fields = append(fields, observe.F("error", errors.Join(errs...).Error()))
		e.logger.Warn(ctx, "resolve completed with platform failures", fields...)
	} else {
		e.logger.Debug(ctx, "resolve completed", fields...)
	}
	return res, nil
}

// ofKinds returns the records of the given kinds, or all records when kinds
// is empty.
func ofKinds(records []platform.AccountRecord, kinds []platform.Kind) []platform.AccountRecord {
	if len(kinds) == 0 {
		return records
	}
	out := make([]platform.AccountRecord, 0, len(records))
	for _, r := range records {
		if slices.Contains(kinds, r.Kind) {
			out = append(out, r)
		}
	}
	return out
}

// Invalidate drops cached inventories for p, or all platforms for
// platform.All.
func (e *Engine) Invalidate(p platform.Platform) ([]platform.Platform, error) {
	return e.index.Invalidate(p)
}

// CacheStats returns the inventory cache counters.
func (e *Engine) CacheStats() cache.Stats {
	return e.index.Stats()
}
