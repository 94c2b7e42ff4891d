package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records resource registry metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordRegistration records a registration attempt with its outcome.
	RecordRegistration(ctx context.Context, category string, duration time.Duration, err error)

	// RecordResolveMiss records a tag that could not be resolved at bind/draw time.
	RecordResolveMiss(ctx context.Context, category string)

	// RecordLoad records bytes read from an asset file.
	RecordLoad(ctx context.Context, category string, sizeBytes int64)

	// RecordCacheLookup records a decode cache hit or miss.
	RecordCacheLookup(ctx context.Context, namespace string, hit bool)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	registrations       metric.Int64Counter
	registrationErrors  metric.Int64Counter
	registrationLatency metric.Float64Histogram
	resolveMisses       metric.Int64Counter
	loadSize            metric.Int64Histogram
	cacheLookups        metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics lazily initializes the default OTel metrics instance.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates instruments on the global meter provider.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("snakeres")

	registrations, err := meter.Int64Counter("snakeres.resource.registrations",
		metric.WithDescription("Number of resource registration attempts"),
	)
	if err != nil {
		return nil, err
	}

	registrationErrors, err := meter.Int64Counter("snakeres.resource.registration_errors",
		metric.WithDescription("Number of failed resource registrations"),
	)
	if err != nil {
		return nil, err
	}

	registrationLatency, err := meter.Float64Histogram("snakeres.resource.registration_latency_ms",
		metric.WithDescription("Resource registration latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	resolveMisses, err := meter.Int64Counter("snakeres.resource.resolve_misses",
		metric.WithDescription("Number of tags that failed to resolve"),
	)
	if err != nil {
		return nil, err
	}

	loadSize, err := meter.Int64Histogram("snakeres.asset.load_size_bytes",
		metric.WithDescription("Size of asset files read"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	cacheLookups, err := meter.Int64Counter("snakeres.cache.lookups",
		metric.WithDescription("Decode cache lookups by outcome"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		registrations:       registrations,
		registrationErrors:  registrationErrors,
		registrationLatency: registrationLatency,
		resolveMisses:       resolveMisses,
		loadSize:            loadSize,
		cacheLookups:        cacheLookups,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordRegistration records a registration attempt.
func (m *otelMetrics) RecordRegistration(ctx context.Context, category string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("category", category),
		attribute.Bool("success", err == nil),
	)
	m.registrations.Add(ctx, 1, attrs)
	m.registrationLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)

	if err != nil {
		m.registrationErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("category", category)))
	}
}

// RecordResolveMiss records a failed resolution.
func (m *otelMetrics) RecordResolveMiss(ctx context.Context, category string) {
	m.resolveMisses.Add(ctx, 1, metric.WithAttributes(attribute.String("category", category)))
}

// RecordLoad records an asset file read.
func (m *otelMetrics) RecordLoad(ctx context.Context, category string, sizeBytes int64) {
	m.loadSize.Record(ctx, sizeBytes, metric.WithAttributes(attribute.String("category", category)))
}

// RecordCacheLookup records a cache lookup.
func (m *otelMetrics) RecordCacheLookup(ctx context.Context, namespace string, hit bool) {
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("namespace", namespace),
		attribute.Bool("hit", hit),
	))
}
