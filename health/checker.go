package health

import (
	"context"
	"time"
)

// Status is a component's health. Larger values are worse.
type Status int

const (
	StatusHealthy Status = iota
	StatusDegraded
	StatusUnhealthy
)

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusDegraded:
		return "degraded"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// MarshalText renders the status by name in JSON and logs.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Serving reports whether a probe should keep routing traffic to the
// component. Degraded components still serve.
func (s Status) Serving() bool {
	return s != StatusUnhealthy
}

// Worst returns the most severe status in statuses, or StatusHealthy when
// there are none.
func Worst(statuses ...Status) Status {
	worst := StatusHealthy
	for _, s := range statuses {
		if s > worst {
			worst = s
		}
	}
	return worst
}

// Result is the outcome of one check.
type Result struct {
	Status    Status
	Message   string
	Details   map[string]any
	Duration  time.Duration
	CheckedAt time.Time
	Error     error
}

func newResult(status Status, message string, err error) Result {
	return Result{Status: status, Message: message, Error: err, CheckedAt: time.Now()}
}

// Healthy creates a healthy result.
func Healthy(message string) Result {
	return newResult(StatusHealthy, message, nil)
}

// Degraded creates a degraded result.
func Degraded(message string) Result {
	return newResult(StatusDegraded, message, nil)
}

// Unhealthy creates an unhealthy result carrying the cause.
func Unhealthy(message string, err error) Result {
	return newResult(StatusUnhealthy, message, err)
}

// WithDetails returns a copy of r with details attached.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// WithDuration returns a copy of r with the check duration set.
func (r Result) WithDuration(d time.Duration) Result {
	r.Duration = d
	return r
}

// Checker is a named component that can report its health.
type Checker interface {
	Name() string
	Check(ctx context.Context) Result
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc struct {
	name string
	fn   func(ctx context.Context) Result
}

// NewCheckerFunc wraps fn as a Checker called name.
func NewCheckerFunc(name string, fn func(ctx context.Context) Result) *CheckerFunc {
	return &CheckerFunc{name: name, fn: fn}
}

func (c *CheckerFunc) Name() string { return c.name }

func (c *CheckerFunc) Check(ctx context.Context) Result { return c.fn(ctx) }

var _ Checker = (*CheckerFunc)(nil)
