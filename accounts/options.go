package accounts

import (
	"time"

	"github.com/jonwraymond/analyticsresolve/observe"
	"github.com/jonwraymond/analyticsresolve/resilience"
)

// Defaults for an Index.
const (
	// DefaultTTL is how long a snapshot is served before rediscovery.
	DefaultTTL = 10 * time.Minute

	// DefaultDiscoveryTimeout bounds one full discovery of a platform.
	DefaultDiscoveryTimeout = 60 * time.Second

	// DefaultStaleAfter marks a platform degraded when its last successful
	// discovery is older than this.
	DefaultStaleAfter = 24 * time.Hour
)

type options struct {
	ttl              time.Duration
	retry            resilience.Policy
	rate             float64
	burst            int
	attemptTimeout   time.Duration
	discoveryTimeout time.Duration
	staleAfter       time.Duration
	rand             func() float64
	now              func() time.Time
	logger           observe.Logger
	metrics          observe.Metrics
	tracer           observe.Tracer
}

func defaultOptions() options {
	return options{
		ttl:              DefaultTTL,
		retry:            resilience.DefaultPolicy(),
		discoveryTimeout: DefaultDiscoveryTimeout,
		staleAfter:       DefaultStaleAfter,
		now:              time.Now,
		logger:           observe.NopLogger(),
		metrics:          observe.NopMetrics(),
		tracer:           observe.NopTracer(),
	}
}

// Option configures an Index.
type Option func(*options)

// WithTTL sets how long a snapshot stays cached. The cache policy may
// clamp it.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithRetryPolicy sets the retry policy applied to every upstream call.
func WithRetryPolicy(p resilience.Policy) Option {
	return func(o *options) {
		o.retry = p
	}
}

// WithRateLimit limits upstream calls per platform to rps with the given
// burst. A non-positive rps disables limiting, which is the default.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		o.rate = rps
		o.burst = burst
	}
}

// WithAttemptTimeout bounds each individual upstream call.
func WithAttemptTimeout(d time.Duration) Option {
	return func(o *options) {
		o.attemptTimeout = d
	}
}

// WithDiscoveryTimeout bounds a whole platform discovery, retries included.
func WithDiscoveryTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.discoveryTimeout = d
		}
	}
}

// WithStaleAfter sets when a platform's health degrades for lack of a
// recent successful discovery. Zero disables the check.
func WithStaleAfter(d time.Duration) Option {
	return func(o *options) {
		o.staleAfter = d
	}
}

// WithRand overrides the jitter source of the retry executor.
func WithRand(fn func() float64) Option {
	return func(o *options) {
		o.rand = fn
	}
}

// WithClock overrides the time source used for snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l observe.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observe.Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithTracer sets the tracer.
func WithTracer(t observe.Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}
