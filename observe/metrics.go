package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records tool, discovery, resolution and cache metrics. All
// methods are safe for concurrent use.
type Metrics interface {
	// RecordExecution records a tool execution with duration and error status.
	RecordExecution(ctx context.Context, meta ToolMeta, duration time.Duration, err error)

	// RecordDiscovery records one inventory rebuild for a platform.
	RecordDiscovery(ctx context.Context, platform string, duration time.Duration, calls int, records int, err error)

	// RecordResolve records one resolution. topType is the match type of the
	// best result, or "none" when nothing matched.
	RecordResolve(ctx context.Context, platform string, topType string, matches int, duration time.Duration)

	// RecordCacheLookup records whether a snapshot lookup was served from cache.
	RecordCacheLookup(ctx context.Context, platform string, hit bool)
}

type metricsImpl struct {
	meter        metric.Meter
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram

	discoveryCount    metric.Int64Counter
	discoveryErrors   metric.Int64Counter
	discoveryDuration metric.Float64Histogram
	discoveryCalls    metric.Int64Histogram
	discoveryRecords  metric.Int64Histogram

	resolveCount    metric.Int64Counter
	resolveDuration metric.Float64Histogram

	cacheLookups metric.Int64Counter
}

// NewMetrics creates a Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	return newMetrics(meter)
}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	m := &metricsImpl{meter: meter}
	var err error

	if m.totalCount, err = meter.Int64Counter(
		"tool.exec.total",
		metric.WithDescription("Total number of tool executions"),
		metric.WithUnit("{call}"),
	); err != nil {
		return nil, err
	}
	if m.errorCount, err = meter.Int64Counter(
		"tool.exec.errors",
		metric.WithDescription("Total number of tool execution errors"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, err
	}
	if m.durationHist, err = meter.Float64Histogram(
		"tool.exec.duration_ms",
		metric.WithDescription("Tool execution duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	if m.discoveryCount, err = meter.Int64Counter(
		"accounts.discovery.total",
		metric.WithDescription("Total number of inventory rebuilds"),
		metric.WithUnit("{rebuild}"),
	); err != nil {
		return nil, err
	}
	if m.discoveryErrors, err = meter.Int64Counter(
		"accounts.discovery.errors",
		metric.WithDescription("Total number of failed inventory rebuilds"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, err
	}
	if m.discoveryDuration, err = meter.Float64Histogram(
		"accounts.discovery.duration_ms",
		metric.WithDescription("Inventory rebuild duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.discoveryCalls, err = meter.Int64Histogram(
		"accounts.discovery.upstream_calls",
		metric.WithDescription("Upstream calls issued per rebuild, including retries"),
		metric.WithUnit("{call}"),
	); err != nil {
		return nil, err
	}
	if m.discoveryRecords, err = meter.Int64Histogram(
		"accounts.discovery.records",
		metric.WithDescription("Records produced per rebuild"),
		metric.WithUnit("{record}"),
	); err != nil {
		return nil, err
	}

	if m.resolveCount, err = meter.Int64Counter(
		"resolve.total",
		metric.WithDescription("Total number of resolutions"),
		metric.WithUnit("{call}"),
	); err != nil {
		return nil, err
	}
	if m.resolveDuration, err = meter.Float64Histogram(
		"resolve.duration_ms",
		metric.WithDescription("Resolution duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	if m.cacheLookups, err = meter.Int64Counter(
		"accounts.cache.lookups",
		metric.WithDescription("Snapshot lookups by outcome"),
		metric.WithUnit("{lookup}"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordExecution records metrics for a tool execution.
func (m *metricsImpl) RecordExecution(ctx context.Context, meta ToolMeta, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("tool.id", meta.ToolID()),
		attribute.String("tool.name", meta.Name),
	}
	if meta.Namespace != "" {
		attrs = append(attrs, attribute.String("tool.namespace", meta.Namespace))
	}
	opt := metric.WithAttributes(attrs...)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

// RecordDiscovery records metrics for one inventory rebuild.
func (m *metricsImpl) RecordDiscovery(ctx context.Context, platform string, duration time.Duration, calls int, records int, err error) {
	opt := metric.WithAttributes(attribute.String("platform", platform))

	m.discoveryCount.Add(ctx, 1, opt)
	if err != nil {
		m.discoveryErrors.Add(ctx, 1, opt)
	}
	m.discoveryDuration.Record(ctx, float64(duration.Milliseconds()), opt)
	m.discoveryCalls.Record(ctx, int64(calls), opt)
	if err == nil {
		m.discoveryRecords.Record(ctx, int64(records), opt)
	}
}

// RecordResolve records metrics for one resolution.
func (m *metricsImpl) RecordResolve(ctx context.Context, platform string, topType string, matches int, duration time.Duration) {
	opt := metric.WithAttributes(
		attribute.String("platform", platform),
		attribute.String("match_type", topType),
		attribute.Bool("matched", matches > 0),
	)
	m.resolveCount.Add(ctx, 1, opt)
	m.resolveDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attribute.String("platform", platform)))
}

// RecordCacheLookup records a snapshot cache hit or miss.
func (m *metricsImpl) RecordCacheLookup(ctx context.Context, platform string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("platform", platform),
		attribute.String("result", result),
	))
}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics {
	return &noopMetrics{}
}

type noopMetrics struct{}

func (m *noopMetrics) RecordExecution(ctx context.Context, meta ToolMeta, duration time.Duration, err error) {
}

func (m *noopMetrics) RecordDiscovery(ctx context.Context, platform string, duration time.Duration, calls int, records int, err error) {
}

func (m *noopMetrics) RecordResolve(ctx context.Context, platform string, topType string, matches int, duration time.Duration) {
}

func (m *noopMetrics) RecordCacheLookup(ctx context.Context, platform string, hit bool) {}
