package health

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultCheckTimeout bounds each checker when no timeout is configured.
const DefaultCheckTimeout = 5 * time.Second

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithCheckTimeout bounds how long any single checker may run.
func WithCheckTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// Report is the combined outcome of running every registered checker.
type Report struct {
	Status    Status
	CheckedAt time.Time
	// Names lists checkers in registration order.
	Names  []string
	Checks map[string]Result
}

// Aggregator runs a set of named checkers concurrently and folds their
// results into one Report. Registration order is preserved so probes
// render components deterministically.
type Aggregator struct {
	timeout time.Duration

	mu       sync.RWMutex
	names    []string
	checkers map[string]Checker
}

// NewAggregator creates an empty aggregator.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		timeout:  DefaultCheckTimeout,
		checkers: make(map[string]Checker),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register adds checkers under their own names. A checker whose name is
// already registered replaces the earlier one in place.
func (a *Aggregator) Register(checkers ...Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, c := range checkers {
		name := c.Name()
		if _, ok := a.checkers[name]; !ok {
			a.names = append(a.names, name)
		}
		a.checkers[name] = c
	}
}

// Unregister removes the named checker if present.
func (a *Aggregator) Unregister(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.checkers[name]; !ok {
		return
	}
	delete(a.checkers, name)
	a.names = slices.DeleteFunc(a.names, func(n string) bool { return n == name })
}

// Names returns the registered checker names in registration order.
func (a *Aggregator) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.names)
}

// Check runs a single checker by name.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	c, ok := a.checkers[name]
	a.mu.RUnlock()
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrCheckerNotFound, name)
	}
	return a.run(ctx, c), nil
}

// Run executes every checker concurrently. An empty aggregator reports
// healthy.
func (a *Aggregator) Run(ctx context.Context) Report {
	a.mu.RLock()
	names := slices.Clone(a.names)
	checkers := make([]Checker, len(names))
	for i, n := range names {
		checkers[i] = a.checkers[n]
	}
	a.mu.RUnlock()

	results := make([]Result, len(checkers))
	var g errgroup.Group
	for i, c := range checkers {
		g.Go(func() error {
			results[i] = a.run(ctx, c)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{
		CheckedAt: time.Now(),
		Names:     names,
		Checks:    make(map[string]Result, len(names)),
	}
	statuses := make([]Status, len(results))
	for i, r := range results {
		report.Checks[names[i]] = r
		statuses[i] = r.Status
	}
	report.Status = Worst(statuses...)
	return report
}

// run bounds c by the check timeout. A checker that overruns is reported
// unhealthy with ErrCheckTimeout; its goroutine is left to finish on its own.
func (a *Aggregator) run(ctx context.Context, c Checker) Result {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan Result, 1)
	go func() { done <- c.Check(ctx) }()

	select {
	case r := <-done:
		return r.WithDuration(time.Since(start))
	case <-ctx.Done():
		return Unhealthy("check timed out", ErrCheckTimeout).WithDuration(time.Since(start))
	}
}
