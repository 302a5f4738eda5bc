package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// ToolMeta identifies an MCP tool in spans, metrics and logs.
type ToolMeta struct {
	Namespace string
	Name      string
}

// ToolID returns namespace.name, or just name without a namespace.
func (m ToolMeta) ToolID() string {
	if m.Namespace == "" {
		return m.Name
	}
	return m.Namespace + "." + m.Name
}

// SpanName is tool.exec.<id>.
func (m ToolMeta) SpanName() string {
	return "tool.exec." + m.ToolID()
}

func (m ToolMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("tool.id", m.ToolID()),
		attribute.String("tool.name", m.Name),
	}
	if m.Namespace != "" {
		attrs = append(attrs, attribute.String("tool.namespace", m.Namespace))
	}
	return attrs
}

// Tracer starts spans for tool calls and for internal operations such as
// inventory rebuilds and resolutions.
type Tracer interface {
	StartSpan(ctx context.Context, meta ToolMeta) (context.Context, trace.Span)
	StartOperation(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span)
	// EndSpan sets the span status from err and ends it.
	EndSpan(span trace.Span, err error)
}

type otelTracer struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &otelTracer{tracer: t}
}

// NopTracer returns a Tracer whose spans are never recorded.
func NopTracer() Tracer {
	return NewTracer(tracenoop.NewTracerProvider().Tracer("noop"))
}

func (t *otelTracer) StartSpan(ctx context.Context, meta ToolMeta) (context.Context, trace.Span) {
	return t.StartOperation(ctx, meta.SpanName(), meta.attributes()...)
}

func (t *otelTracer) StartOperation(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (t *otelTracer) EndSpan(span trace.Span, err error) {
	defer span.End()
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.Bool("error", true))
}
