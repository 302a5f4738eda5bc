package health

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"
)

func fixed(name string, r Result) Checker {
	return NewCheckerFunc(name, func(context.Context) Result { return r })
}

func TestWorst(t *testing.T) {
	tests := []struct {
		name string
		in   []Status
		want Status
	}{
		{"none", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Worst(tt.in...); got != tt.want {
				t.Errorf("Worst(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStatus_Text(t *testing.T) {
	tests := []struct {
		status  Status
		want    string
		serving bool
	}{
		{StatusHealthy, "healthy", true},
		{StatusDegraded, "degraded", true},
		{StatusUnhealthy, "unhealthy", false},
		{Status(9), "unknown", true},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			b, err := tt.status.MarshalText()
			if err != nil || string(b) != tt.want {
				t.Errorf("MarshalText() = %q, %v; want %q", b, err, tt.want)
			}
			if tt.status.Serving() != tt.serving {
				t.Errorf("Serving() = %v, want %v", tt.status.Serving(), tt.serving)
			}
		})
	}
}

func TestAggregator_RegisterOrder(t *testing.T) {
	agg := NewAggregator()
	agg.Register(
		fixed("accounts.web-analytics", Healthy("ok")),
		fixed("accounts.search-console", Healthy("ok")),
		fixed("accounts.cache", Healthy("ok")),
	)
	agg.Register(fixed("accounts.search-console", Degraded("stale")))

	want := []string{"accounts.web-analytics", "accounts.search-console", "accounts.cache"}
	if got := agg.Names(); !slices.Equal(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}

	r, err := agg.Check(context.Background(), "accounts.search-console")
	if err != nil {
		t.Fatal(err)
	}
	if r.Status != StatusDegraded {
		t.Errorf("replaced checker Status = %v, want degraded", r.Status)
	}

	agg.Unregister("accounts.search-console")
	agg.Unregister("never-registered")
	want = []string{"accounts.web-analytics", "accounts.cache"}
	if got := agg.Names(); !slices.Equal(got, want) {
		t.Errorf("after Unregister Names() = %v, want %v", got, want)
	}
}

func TestAggregator_CheckUnknown(t *testing.T) {
	agg := NewAggregator()
	if _, err := agg.Check(context.Background(), "accounts.merchant-center"); !errors.Is(err, ErrCheckerNotFound) {
		t.Errorf("Check() error = %v, want ErrCheckerNotFound", err)
	}
}

func TestAggregator_Run(t *testing.T) {
	tests := []struct {
		name     string
		checkers []Checker
		want     Status
	}{
		{"empty", nil, StatusHealthy},
		{
			name: "stale platform",
			checkers: []Checker{
				fixed("accounts.web-analytics", Healthy("ok")),
				fixed("accounts.merchant-center", Degraded("not run yet")),
			},
			want: StatusDegraded,
		},
		{
			name: "failed platform",
			checkers: []Checker{
				fixed("accounts.web-analytics", Degraded("not run yet")),
				fixed("accounts.merchant-center", Unhealthy("last run failed", ErrCheckFailed)),
			},
			want: StatusUnhealthy,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator()
			agg.Register(tt.checkers...)

			report := agg.Run(context.Background())
			if report.Status != tt.want {
				t.Errorf("Status = %v, want %v", report.Status, tt.want)
			}
			if len(report.Checks) != len(tt.checkers) || len(report.Names) != len(tt.checkers) {
				t.Errorf("report has %d checks and %d names, want %d", len(report.Checks), len(report.Names), len(tt.checkers))
			}
			if report.CheckedAt.IsZero() {
				t.Error("CheckedAt is zero")
			}
		})
	}
}

func TestAggregator_Timeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	agg := NewAggregator(WithCheckTimeout(20 * time.Millisecond))
	agg.Register(
		fixed("accounts.cache", Healthy("ok")),
		NewCheckerFunc("accounts.web-analytics", func(context.Context) Result {
			<-release
			return Healthy("late")
		}),
	)

	report := agg.Run(context.Background())
	slow := report.Checks["accounts.web-analytics"]
	if slow.Status != StatusUnhealthy || !errors.Is(slow.Error, ErrCheckTimeout) {
		t.Errorf("slow check = %v / %v, want unhealthy with ErrCheckTimeout", slow.Status, slow.Error)
	}
	if report.Checks["accounts.cache"].Status != StatusHealthy {
		t.Error("fast check should not be affected by the slow one")
	}
	if report.Status != StatusUnhealthy {
		t.Errorf("overall = %v, want unhealthy", report.Status)
	}
}

func TestAggregator_RecordsDuration(t *testing.T) {
	agg := NewAggregator()
	agg.Register(NewCheckerFunc("accounts.cache", func(context.Context) Result {
		time.Sleep(5 * time.Millisecond)
		return Healthy("ok")
	}))

	r, err := agg.Check(context.Background(), "accounts.cache")
	if err != nil {
		t.Fatal(err)
	}
	if r.Duration < 5*time.Millisecond {
		t.Errorf("Duration = %v, want >= 5ms", r.Duration)
	}
	if r.CheckedAt.IsZero() {
		t.Error("CheckedAt is zero")
	}
}
