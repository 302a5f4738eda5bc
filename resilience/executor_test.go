package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewExecutor(t *testing.T) {
	e := NewExecutor()

	if e.retry != nil {
		t.Error("Default executor should not have retry")
	}
	if e.rateLimiter != nil {
		t.Error("Default executor should not have rate limiter")
	}
	if e.timeout != nil {
		t.Error("Default executor should not have timeout")
	}
}

func TestExecutor_WithOptions(t *testing.T) {
	retry := NewRetry(Policy{}, testClassifier)
	rl := NewRateLimiter(RateLimiterConfig{})

	e := NewExecutor(
		WithRetry(retry),
		WithRateLimiter(rl),
		WithAttemptTimeout(time.Second),
	)

	if e.retry != retry {
		t.Error("Retry not set")
	}
	if e.rateLimiter != rl {
		t.Error("RateLimiter not set")
	}
	if e.timeout == nil || e.timeout.Duration() != time.Second {
		t.Error("Timeout not set")
	}

	if NewExecutor(WithAttemptTimeout(0)).timeout != nil {
		t.Error("zero attempt timeout should leave timeout unset")
	}
}

func TestExecutor_NoPatterns(t *testing.T) {
	e := NewExecutor()

	calls := 0
	err := e.Execute(context.Background(), "op", func(context.Context) error {
		calls++
		return errTransient
	})
	if !errors.Is(err, errTransient) || calls != 1 {
		t.Errorf("Execute() = %v after %d calls, want raw error after 1 call", err, calls)
	}
}

func TestExecutor_RateLimitPerAttempt(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1000, Burst: 10})
	e := NewExecutor(
		WithRetry(NewRetry(fastPolicy(3), testClassifier)),
		WithRateLimiter(rl),
	)

	before := rl.Tokens()
	_ = e.Execute(context.Background(), "op", func(context.Context) error { return errTransient })
	after := rl.Tokens()

	// Three attempts consume roughly three tokens; refill at 1000/s over a
	// few milliseconds can return some of them.
	if after >= before {
		t.Errorf("tokens before=%v after=%v, want consumption", before, after)
	}
}

func TestExecutor_AttemptTimeoutIsRetried(t *testing.T) {
	classify := func(err error) Class {
		if errors.Is(err, ErrAttemptTimeout) {
			return ClassRetryable
		}
		return ClassPermanent
	}
	e := NewExecutor(
		WithRetry(NewRetry(fastPolicy(3), classify)),
		WithAttemptTimeout(10*time.Millisecond),
	)

	var attempts atomic.Int32
	err := e.Execute(context.Background(), "op", func(ctx context.Context) error {
		if attempts.Add(1) < 3 {
			<-ctx.Done()
			return ctx.Err()
		}
		return nil
	})

	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
}

func TestRun(t *testing.T) {
	e := NewExecutor(WithRetry(NewRetry(fastPolicy(2), testClassifier)))

	v, err := Run(context.Background(), e, "op", func(context.Context) (string, error) {
		return "ok", nil
	})
	if err != nil || v != "ok" {
		t.Errorf("Run() = %q, %v; want ok, nil", v, err)
	}
}
