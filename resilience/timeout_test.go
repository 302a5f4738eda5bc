package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewTimeout(t *testing.T) {
	if got := NewTimeout(0).Duration(); got != 30*time.Second {
		t.Errorf("Duration() = %v, want 30s", got)
	}
	if got := NewTimeout(time.Second).Duration(); got != time.Second {
		t.Errorf("Duration() = %v, want 1s", got)
	}
}

func TestTimeout_Success(t *testing.T) {
	to := NewTimeout(time.Second)
	if err := to.Execute(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Errorf("Execute() error = %v", err)
	}
}

func TestTimeout_AttemptDeadline(t *testing.T) {
	to := NewTimeout(10 * time.Millisecond)

	err := to.Execute(context.Background(), func(ctx context.Context) error {
		select {
		case <-time.After(time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if !errors.Is(err, ErrAttemptTimeout) {
		t.Errorf("Execute() error = %v, want ErrAttemptTimeout", err)
	}
}

func TestTimeout_ParentCancelled(t *testing.T) {
	to := NewTimeout(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := to.Execute(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
	if errors.Is(err, ErrAttemptTimeout) {
		t.Error("parent cancellation should not be reported as an attempt timeout")
	}
}

func TestTimeout_PassesError(t *testing.T) {
	to := NewTimeout(time.Second)
	want := errors.New("boom")
	if err := to.Execute(context.Background(), func(context.Context) error { return want }); !errors.Is(err, want) {
		t.Errorf("Execute() error = %v, want %v", err, want)
	}
}
