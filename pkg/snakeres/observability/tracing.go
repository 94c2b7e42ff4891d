package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer uses the global OTel tracer provider.
var tracer = otel.Tracer("snakeres")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartRegisterSpan starts a span covering one Register* call.
	StartRegisterSpan(ctx context.Context, category, tag string) (context.Context, trace.Span)

	// StartLoadSpan starts a span for reading and decoding one asset file.
	StartLoadSpan(ctx context.Context, category, path string) (context.Context, trace.Span)

	// StartResolveSpan starts a span for a bind/draw time resolution.
	StartResolveSpan(ctx context.Context, category, tag string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses the global OTel tracer provider.
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

func (m *otelSpanManager) StartRegisterSpan(ctx context.Context, category, tag string) (context.Context, trace.Span) {
	return StartRegisterSpan(ctx, category, tag)
}

func (m *otelSpanManager) StartLoadSpan(ctx context.Context, category, path string) (context.Context, trace.Span) {
	return StartLoadSpan(ctx, category, path)
}

func (m *otelSpanManager) StartResolveSpan(ctx context.Context, category, tag string) (context.Context, trace.Span) {
	return StartResolveSpan(ctx, category, tag)
}

func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	EndSpanWithError(span, err)
}

func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	AddSpanEvent(ctx, name, attrs...)
}

// StartRegisterSpan starts a registration span using the global tracer.
func StartRegisterSpan(ctx context.Context, category, tag string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "snakeres.register."+category,
		trace.WithAttributes(
			attribute.String("resource.category", category),
			attribute.String("resource.tag", tag),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartLoadSpan starts a file load span using the global tracer.
func StartLoadSpan(ctx context.Context, category, path string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "snakeres.load",
		trace.WithAttributes(
			attribute.String("resource.category", category),
			attribute.String("asset.path", path),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartResolveSpan starts a resolution span using the global tracer.
func StartResolveSpan(ctx context.Context, category, tag string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "snakeres.resolve."+category,
		trace.WithAttributes(
			attribute.String("resource.category", category),
			attribute.String("resource.tag", tag),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span in context.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
