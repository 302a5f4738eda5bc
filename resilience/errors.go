package resilience

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for resilience operations.
var (
	// ErrExhausted is returned when every attempt failed retryably.
	ErrExhausted = errors.New("resilience: upstream unavailable after retries")

	// ErrPermanent is returned when an attempt failed with a permanent error.
	ErrPermanent = errors.New("resilience: permanent failure")

	// ErrTimeout is returned when the overall deadline elapses.
	ErrTimeout = errors.New("resilience: operation timed out")

	// ErrAttemptTimeout is returned when a single attempt exceeds its own timeout.
	ErrAttemptTimeout = errors.New("resilience: attempt timed out")

	// ErrRateLimitExceeded is returned when a rate limiter cannot grant a token
	// before the context deadline.
	ErrRateLimitExceeded = errors.New("resilience: rate limit exceeded")
)

// Error describes a failed retried operation.
//
// Reason is one of ErrExhausted, ErrPermanent, ErrTimeout or
// context.Canceled. Err is the last error returned by the operation,
// unmodified.
type Error struct {
	Op       string
	Attempts int
	Elapsed  time.Duration
	Class    Class
	Reason   error
	Err      error

	// ctxErr is the context error observed when the loop stopped, if any.
	ctxErr error
}

func (e *Error) Error() string {
	op := e.Op
	if op == "" {
		op = "operation"
	}
	msg := fmt.Sprintf("%s: %v after %d attempt(s) in %s", op, e.Reason, e.Attempts, e.Elapsed.Round(time.Millisecond))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the reason, the last operation error and the context error
// so errors.Is matches any of them.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 3)
	if e.Reason != nil {
		errs = append(errs, e.Reason)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.ctxErr != nil {
		errs = append(errs, e.ctxErr)
	}
	return errs
}

// Retryable reports whether the failure was transient. Callers use it to
// tell "try again later" apart from "fix your request or credentials".
func (e *Error) Retryable() bool {
	return e.Class == ClassRetryable
}
