package resilience

import (
	"context"
	"time"
)

// Executor composes retry, rate limiting and a per-attempt timeout around
// upstream calls.
type Executor struct {
	retry       *Retry
	rateLimiter *RateLimiter
	timeout     *Timeout
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates a new resilience executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithRetry adds retry logic to the executor.
func WithRetry(r *Retry) ExecutorOption {
	return func(e *Executor) {
		e.retry = r
	}
}

// WithRateLimiter adds rate limiting to the executor.
func WithRateLimiter(rl *RateLimiter) ExecutorOption {
	return func(e *Executor) {
		e.rateLimiter = rl
	}
}

// WithAttemptTimeout bounds every individual attempt.
func WithAttemptTimeout(timeout time.Duration) ExecutorOption {
	return func(e *Executor) {
		if timeout > 0 {
			e.timeout = NewTimeout(timeout)
		}
	}
}

// Execute runs the operation through all configured resilience patterns.
//
// The execution order is:
// 1. Retry (if configured) - outermost, owns backoff and the overall deadline
// 2. Rate Limiter (if configured) - one token per attempt
// 3. Timeout (if configured) - bounds each attempt
func (e *Executor) Execute(ctx context.Context, name string, op func(context.Context) error) error {
	execute := op

	if e.timeout != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.timeout.Execute(ctx, inner)
		}
	}

	if e.rateLimiter != nil {
		inner := execute
		execute = func(ctx context.Context) error {
			return e.rateLimiter.Execute(ctx, inner)
		}
	}

	if e.retry != nil {
		return e.retry.Execute(ctx, name, execute)
	}
	return execute(ctx)
}

// Run runs op through e and returns its value.
func Run[T any](ctx context.Context, e *Executor, name string, op func(context.Context) (T, error)) (T, error) {
	var out T
	err := e.Execute(ctx, name, func(ctx context.Context) error {
		v, err := op(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
