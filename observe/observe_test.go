package observe

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"zero with name", Config{ServiceName: "analyticsresolve"}, nil},
		{"missing name", Config{}, ErrMissingServiceName},
		{
			name: "disabled signals are not checked",
			cfg: Config{
				ServiceName: "analyticsresolve",
				Tracing:     TracingConfig{Exporter: "zipkin", SamplePct: 4},
				Metrics:     MetricsConfig{Exporter: "statsd"},
			},
		},
		{"bad tracing exporter", Config{ServiceName: "s", Tracing: TracingConfig{Enabled: true, Exporter: "zipkin"}}, ErrInvalidTracingExporter},
		{"bad sample ratio", Config{ServiceName: "s", Tracing: TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 1.5}}, ErrInvalidSamplePct},
		{"bad metrics exporter", Config{ServiceName: "s", Metrics: MetricsConfig{Enabled: true, Exporter: "statsd"}}, ErrInvalidMetricsExporter},
		{"bad log level", Config{ServiceName: "s", Logging: LoggingConfig{Enabled: true, Level: "trace"}}, ErrInvalidLogLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestConfig_ValidateJoinsErrors(t *testing.T) {
	cfg := Config{
		ServiceName: "analyticsresolve",
		Tracing:     TracingConfig{Enabled: true, Exporter: "zipkin", SamplePct: -1},
		Logging:     LoggingConfig{Enabled: true, Level: "loud"},
	}
	err := cfg.Validate()
	for _, want := range []error{ErrInvalidTracingExporter, ErrInvalidSamplePct, ErrInvalidLogLevel} {
		if !errors.Is(err, want) {
			t.Errorf("Validate() = %v, missing %v", err, want)
		}
	}
}

func TestNewObserver_Disabled(t *testing.T) {
	ctx := context.Background()
	obs, err := NewObserver(ctx, Config{ServiceName: "analyticsresolve"})
	if err != nil {
		t.Fatal(err)
	}
	if obs.Tracer() == nil || obs.Meter() == nil || obs.Logger() == nil {
		t.Fatal("disabled observer must still return usable components")
	}
	_, span := obs.Tracer().Start(ctx, "noop")
	if span.SpanContext().IsValid() {
		t.Error("disabled tracing produced a recording span")
	}
	if err := obs.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() = %v", err)
	}
}

func TestNewObserver_Stdout(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	obs, err := NewObserver(ctx, Config{
		ServiceName: "analyticsresolve",
		Version:     "test",
		Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 1},
		Metrics:     MetricsConfig{Enabled: true, Exporter: "stdout"},
		Logging:     LoggingConfig{Enabled: true, Level: "info"},
		Output:      &out,
	})
	if err != nil {
		t.Fatal(err)
	}

	_, span := obs.Tracer().Start(ctx, "accounts.discover")
	if !span.SpanContext().IsValid() {
		t.Error("enabled tracing should produce a valid span context")
	}
	span.End()
	obs.Logger().Info(ctx, "wired")

	if err := obs.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() = %v", err)
	}
	got := out.String()
	if !strings.Contains(got, `"msg":"wired"`) {
		t.Errorf("log line missing from output: %s", got)
	}
	if !strings.Contains(got, "accounts.discover") {
		t.Errorf("exported span missing from output: %s", got)
	}
}

func TestNewObserver_InvalidConfig(t *testing.T) {
	_, err := NewObserver(context.Background(), Config{})
	if !errors.Is(err, ErrMissingServiceName) {
		t.Errorf("NewObserver() error = %v, want ErrMissingServiceName", err)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{1, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{0.25, "ParentBased"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := sampler(tt.ratio).Description(); !strings.HasPrefix(got, tt.want) {
				t.Errorf("sampler(%g) = %q, want prefix %q", tt.ratio, got, tt.want)
			}
		})
	}
}
