package health

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// TrackerConfig configures an outcome tracker.
type TrackerConfig struct {
	// MaxAge marks the component degraded when the last success is older.
	// Zero disables the staleness check.
	MaxAge time.Duration

	// Now overrides the clock. Default: time.Now
	Now func() time.Time
}

// TrackerState is a point-in-time copy of a Tracker.
type TrackerState struct {
	LastSuccess time.Time
	LastFailure time.Time
	LastError   error
	Successes   uint64
	Failures    uint64
}

// Tracker records the outcome of a recurring operation, such as an
// inventory rebuild, and reports it as a health Result.
//
// A tracker that has never recorded anything is degraded. A failure more
// recent than the last success is unhealthy.
type Tracker struct {
	name   string
	config TrackerConfig

	mu      sync.RWMutex
	state   TrackerState
	details map[string]any
}

// NewTracker creates a new outcome tracker.
func NewTracker(name string, config TrackerConfig) *Tracker {
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Tracker{name: name, config: config}
}

// Name returns the name of this checker.
func (t *Tracker) Name() string {
	return t.name
}

// RecordSuccess records a successful run. details replaces the details
// reported by Check.
func (t *Tracker) RecordSuccess(details map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.LastSuccess = t.config.Now()
	t.state.Successes++
	t.details = details
}

// RecordFailure records a failed run.
func (t *Tracker) RecordFailure(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.LastFailure = t.config.Now()
	t.state.LastError = err
	t.state.Failures++
}

// State returns a copy of the recorded outcomes.
func (t *Tracker) State() TrackerState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Check reports the tracked component's health.
func (t *Tracker) Check(ctx context.Context) Result {
	select {
	case <-ctx.Done():
		return Unhealthy("context cancelled", ctx.Err())
	default:
	}

	t.mu.RLock()
	st := t.state
	details := make(map[string]any, len(t.details)+4)
	for k, v := range t.details {
		details[k] = v
	}
	t.mu.RUnlock()

	details["successes"] = st.Successes
	details["failures"] = st.Failures
	if !st.LastSuccess.IsZero() {
		details["last_success"] = st.LastSuccess.UTC().Format(time.RFC3339)
	}
	if !st.LastFailure.IsZero() {
		details["last_failure"] = st.LastFailure.UTC().Format(time.RFC3339)
	}

	switch {
	case st.LastSuccess.IsZero() && st.LastFailure.IsZero():
		return Degraded("not run yet").WithDetails(details)

	case st.LastFailure.After(st.LastSuccess):
		return Unhealthy(
			fmt.Sprintf("last run failed: %v", st.LastError),
			fmt.Errorf("%w: %w", ErrCheckFailed, st.LastError),
		).WithDetails(details)

	case t.config.MaxAge > 0 && t.config.Now().Sub(st.LastSuccess) > t.config.MaxAge:
		return Degraded(
			fmt.Sprintf("last success %s ago", t.config.Now().Sub(st.LastSuccess).Round(time.Second)),
		).WithDetails(details)
	}

	return Healthy("last run succeeded").WithDetails(details)
}

var _ Checker = (*Tracker)(nil)
