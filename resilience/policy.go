package resilience

import (
	"math"
	"time"
)

// Default retry policy values.
const (
	DefaultMaxAttempts    = 5
	DefaultBaseDelay      = 500 * time.Millisecond
	DefaultMaxDelay       = 20 * time.Second
	DefaultJitterFraction = 0.25
)

// Class tags an operation failure as worth retrying or not.
type Class int

const (
	// ClassPermanent failures are surfaced immediately.
	ClassPermanent Class = iota
	// ClassRetryable failures consume an attempt and back off.
	ClassRetryable
)

// String returns the lower-case class name.
func (c Class) String() string {
	switch c {
	case ClassRetryable:
		return "retryable"
	case ClassPermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// Classifier tags an error. It is called only with non-nil errors.
type Classifier func(err error) Class

// Policy configures retry behavior.
type Policy struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	// Default: 5
	MaxAttempts int

	// BaseDelay is the delay before the first retry.
	// Default: 500ms
	BaseDelay time.Duration

	// MaxDelay caps the un-jittered delay between retries.
	// Default: 20s
	MaxDelay time.Duration

	// JitterFraction perturbs each delay by up to ± this fraction of itself.
	// Clamped to [0, 1]. Zero disables jitter.
	JitterFraction float64

	// Timeout is the overall deadline for all attempts and backoff sleeps.
	// Zero means only the caller's context bounds the operation.
	Timeout time.Duration
}

// DefaultPolicy returns the policy used for discovery calls.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    DefaultMaxAttempts,
		BaseDelay:      DefaultBaseDelay,
		MaxDelay:       DefaultMaxDelay,
		JitterFraction: DefaultJitterFraction,
	}
}

// withDefaults fills unset fields. JitterFraction is only clamped because
// zero is a meaningful value.
func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultMaxDelay
	}
	if p.MaxDelay < p.BaseDelay {
		p.MaxDelay = p.BaseDelay
	}
	p.JitterFraction = clamp01(p.JitterFraction)
	if p.Timeout < 0 {
		p.Timeout = 0
	}
	return p
}

// BaseDelayFor returns the un-jittered delay after failure n (1-indexed):
// min(MaxDelay, BaseDelay*2^(n-1)).
func (p Policy) BaseDelayFor(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := float64(p.BaseDelay) * math.Pow(2, float64(attempt-1))
	if d >= float64(p.MaxDelay) || math.IsInf(d, 0) {
		return p.MaxDelay
	}
	return time.Duration(d)
}

// Delay returns the jittered delay after failure n. rnd is a uniform sample
// in [0, 1); 0.5 yields the un-jittered value. The result is never negative.
func (p Policy) Delay(attempt int, rnd float64) time.Duration {
	base := p.BaseDelayFor(attempt)
	j := clamp01(p.JitterFraction)
	if j == 0 || base <= 0 {
		return base
	}
	offset := j * float64(base) * (2*clamp01(rnd) - 1)
	d := time.Duration(float64(base) + offset)
	if d < 0 {
		return 0
	}
	return d
}

// MinDelay returns the smallest delay the policy can produce after failure n.
func (p Policy) MinDelay(attempt int) time.Duration {
	return p.Delay(attempt, 0)
}

func clamp01(f float64) float64 {
	switch {
	case math.IsNaN(f) || f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
