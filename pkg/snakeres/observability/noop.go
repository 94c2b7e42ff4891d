package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics is a MetricsRecorder that does nothing.
type NoopMetrics struct{}

var _ MetricsRecorder = NoopMetrics{}

func (NoopMetrics) RecordRegistration(context.Context, string, time.Duration, error) {}
func (NoopMetrics) RecordResolveMiss(context.Context, string)                        {}
func (NoopMetrics) RecordLoad(context.Context, string, int64)                        {}
func (NoopMetrics) RecordCacheLookup(context.Context, string, bool)                  {}

// NoopSpanManager is a SpanManager that does nothing.
type NoopSpanManager struct{}

var _ SpanManager = NoopSpanManager{}

var noopSpan = noop.Span{}

// StartRegisterSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartRegisterSpan(ctx context.Context, _, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// StartLoadSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartLoadSpan(ctx context.Context, _, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// StartResolveSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartResolveSpan(ctx context.Context, _, _ string) (context.Context, trace.Span) {
	return ctx, noopSpan
}

func (NoopSpanManager) EndSpanWithError(trace.Span, error)                          {}
func (NoopSpanManager) AddSpanEvent(context.Context, string, ...attribute.KeyValue) {}
