package observe

import (
	"context"
	"time"
)

// ExecuteFunc is a tool handler as seen by Middleware.
type ExecuteFunc func(ctx context.Context, tool ToolMeta, input any) (any, error)

// Middleware wraps tool handlers with a span, execution metrics and one
// completion log line. The handler's result and error pass through
// unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a Middleware. Nil components are replaced by their
// no-op versions.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = NopTracer()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{tracer: tracer, metrics: metrics, logger: logger}
}

// Wrap returns fn instrumented for every call.
func (m *Middleware) Wrap(fn ExecuteFunc) ExecuteFunc {
	return func(ctx context.Context, tool ToolMeta, input any) (any, error) {
		ctx, span := m.tracer.StartSpan(ctx, tool)
		start := time.Now()

		out, err := fn(ctx, tool, input)

		elapsed := time.Since(start)
		m.tracer.EndSpan(span, err)
		m.metrics.RecordExecution(ctx, tool, elapsed, err)

		log := m.logger.WithTool(tool)
		ms := F("duration_ms", float64(elapsed.Microseconds())/1000)
		if err != nil {
			log.Error(ctx, "tool call failed", ms, F("error", err.Error()))
		} else {
			log.Info(ctx, "tool call completed", ms)
		}
		return out, err
	}
}

// Logger returns the logger tool calls are reported to.
func (m *Middleware) Logger() Logger {
	return m.logger
}
