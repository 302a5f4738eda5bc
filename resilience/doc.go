// Package resilience wraps upstream calls with classified retry, backoff,
// rate limiting and timeouts.
//
// # Retry
//
// Every failure is passed to a caller-supplied Classifier. Retryable
// failures (rate limiting, server errors, transient network trouble) back
// off and try again; permanent failures (bad credentials, not found,
// malformed request) return immediately. The delay after failure n is
//
//	min(MaxDelay, BaseDelay * 2^(n-1)) ± JitterFraction
//
// and is never negative. When the loop gives up it returns *Error, which
// carries the attempt count, elapsed time and class, and unwraps to both the
// reason (ErrExhausted, ErrPermanent, ErrTimeout) and the last upstream
// error.
//
// # Usage
//
//	retry := resilience.NewRetry(resilience.DefaultPolicy(), platform.Classify)
//	exec := resilience.NewExecutor(
//	    resilience.WithRetry(retry),
//	    resilience.WithRateLimiter(resilience.NewRateLimiter(resilience.RateLimiterConfig{Rate: 5})),
//	    resilience.WithAttemptTimeout(10*time.Second),
//	)
//
//	err := exec.Execute(ctx, "accounts.list", func(ctx context.Context) error {
//	    return callUpstream(ctx)
//	})
package resilience
