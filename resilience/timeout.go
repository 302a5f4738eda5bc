package resilience

import (
	"context"
	"errors"
	"time"
)

// Timeout bounds a single attempt.
type Timeout struct {
	timeout time.Duration
}

// NewTimeout creates a new timeout wrapper.
// Default: 30 seconds
func NewTimeout(timeout time.Duration) *Timeout {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Timeout{timeout: timeout}
}

// Duration returns the configured timeout.
func (t *Timeout) Duration() time.Duration {
	return t.timeout
}

// Execute runs the operation with a timeout.
//
// When the attempt's own deadline fires while the parent context is still
// live, ErrAttemptTimeout is returned so the failure can be retried. When the
// parent context ends first, its error is returned.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	attemptCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	done := make(chan error, 1)

	go func() {
		done <- op(attemptCtx)
	}()

	select {
	case err := <-done:
		if err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return errors.Join(ErrAttemptTimeout, err)
		}
		return err
	case <-attemptCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrAttemptTimeout
	}
}
