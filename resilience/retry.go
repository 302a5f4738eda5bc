package resilience

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// Retry runs an operation with classification-aware retry and exponential
// backoff.
//
// Contract:
// - Concurrency: safe for concurrent use. A Retry holds no per-call state,
// so concurrent operations back off independently.
// - Only failures classified ClassRetryable consume further attempts.
// - Permanent failures and exhaustion return *Error wrapping the last
// operation error verbatim.
// - Backoff sleeps select on ctx.Done(); the loop stops as soon as the
// context or Policy.Timeout expires, even mid-backoff.
type Retry struct {
	policy   Policy
	classify Classifier
	rand     func() float64
	onRetry  func(attempt int, err error, delay time.Duration)
}

// RetryOption configures a Retry.
type RetryOption func(*Retry)

// WithRand overrides the uniform [0,1) source used for jitter.
func WithRand(fn func() float64) RetryOption {
	return func(r *Retry) {
		if fn != nil {
			r.rand = fn
		}
	}
}

// WithOnRetry registers a callback invoked before each backoff sleep.
func WithOnRetry(fn func(attempt int, err error, delay time.Duration)) RetryOption {
	return func(r *Retry) {
		r.onRetry = fn
	}
}

// NewRetry creates a new retry handler. A nil classifier treats every
// failure as permanent.
func NewRetry(policy Policy, classify Classifier, opts ...RetryOption) *Retry {
	if classify == nil {
		classify = func(error) Class { return ClassPermanent }
	}
	r := &Retry{
		policy:   policy.withDefaults(),
		classify: classify,
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		rand: rand.Float64,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Policy returns the effective policy with defaults applied.
func (r *Retry) Policy() Policy {
	return r.policy
}

// Execute runs op until it succeeds, fails permanently, exhausts
// MaxAttempts or the context ends. name labels the operation in errors.
func (r *Retry) Execute(ctx context.Context, name string, op func(context.Context) error) error {
	start := time.Now()
	if r.policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.policy.Timeout)
		defer cancel()
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return r.stopped(name, attempt-1, start, lastErr, ctxErr)
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			return r.stopped(name, attempt, start, lastErr, ctxErr)
		}

		class := r.classify(err)
		if class != ClassRetryable {
			return &Error{
				Op:       name,
				Attempts: attempt,
				Elapsed:  time.Since(start),
				Class:    ClassPermanent,
				Reason:   ErrPermanent,
				Err:      err,
			}
		}

		if attempt >= r.policy.MaxAttempts {
			return &Error{
				Op:       name,
				Attempts: attempt,
				Elapsed:  time.Since(start),
				Class:    ClassRetryable,
				Reason:   ErrExhausted,
				Err:      err,
			}
		}

		delay := r.policy.Delay(attempt, r.rand())
		if r.onRetry != nil {
			r.onRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return r.stopped(name, attempt, start, lastErr, ctx.Err())
		case <-timer.C:
		}
	}
}

// stopped builds the error for a loop ended by its context.
func (r *Retry) stopped(name string, attempts int, start time.Time, lastErr, ctxErr error) error {
	e := &Error{
		Op:       name,
		Attempts: attempts,
		Elapsed:  time.Since(start),
		Err:      lastErr,
		ctxErr:   ctxErr,
	}
	if errors.Is(ctxErr, context.DeadlineExceeded) {
		e.Class = ClassRetryable
		e.Reason = ErrTimeout
	} else {
		e.Class = ClassPermanent
		e.Reason = context.Canceled
	}
	return e
}

// Do runs op through r and returns its value.
func Do[T any](ctx context.Context, r *Retry, name string, op func(context.Context) (T, error)) (T, error) {
	var out T
	err := r.Execute(ctx, name, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
