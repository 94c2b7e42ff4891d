package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest installs a manual-reader meter provider for the test.
func setupMetricsTest(t *testing.T) (*sdkmetric.ManualReader, func()) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	originalProvider := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	cleanup := func() {
		otel.SetMeterProvider(originalProvider)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	}

	return reader, cleanup
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return &rm
}

func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// sumFor returns the summed counter value for datapoints carrying key=value.
func sumFor(t *testing.T, m *metricdata.Metrics, key, value string) int64 {
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "Expected Sum type")
	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			total += dp.Value
		}
	}
	return total
}

func TestNewMetricsRecorder(t *testing.T) {
	_, cleanup := setupMetricsTest(t)
	defer cleanup()

	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)

	_, isNoop := recorder.(NoopMetrics)
	assert.False(t, isNoop, "Expected real metrics recorder, got noop")
}

func TestRecordRegistration(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordRegistration(ctx, "texture", 5*time.Millisecond, nil)
	m.RecordRegistration(ctx, "texture", 2*time.Millisecond, errors.New("decode"))

	rm := collectMetrics(t, reader)

	regs := findMetric(rm, "snakeres.resource.registrations")
	require.NotNil(t, regs)
	assert.Equal(t, int64(2), sumFor(t, regs, "category", "texture"))

	errs := findMetric(rm, "snakeres.resource.registration_errors")
	require.NotNil(t, errs)
	assert.Equal(t, int64(1), sumFor(t, errs, "category", "texture"))

	lat := findMetric(rm, "snakeres.resource.registration_latency_ms")
	require.NotNil(t, lat)
	hist, ok := lat.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "Expected Histogram type")
	assert.NotEmpty(t, hist.DataPoints)
}

func TestRecordResolveMissAndCache(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordResolveMiss(ctx, "material")
	m.RecordResolveMiss(ctx, "material")
	m.RecordCacheLookup(ctx, "texture", true)
	m.RecordCacheLookup(ctx, "texture", false)
	m.RecordLoad(ctx, "sound", 4096)

	rm := collectMetrics(t, reader)

	misses := findMetric(rm, "snakeres.resource.resolve_misses")
	require.NotNil(t, misses)
	assert.Equal(t, int64(2), sumFor(t, misses, "category", "material"))

	lookups := findMetric(rm, "snakeres.cache.lookups")
	require.NotNil(t, lookups)
	assert.Equal(t, int64(2), sumFor(t, lookups, "namespace", "texture"))

	load := findMetric(rm, "snakeres.asset.load_size_bytes")
	require.NotNil(t, load)
	hist, ok := load.Data.(metricdata.Histogram[int64])
	require.True(t, ok, "Expected Histogram type")
	require.NotEmpty(t, hist.DataPoints)
	assert.Equal(t, int64(4096), hist.DataPoints[0].Sum)
}

func TestNoopMetrics(t *testing.T) {
	var m MetricsRecorder = NoopMetrics{}
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordRegistration(ctx, "mesh", time.Millisecond, nil)
		m.RecordResolveMiss(ctx, "mesh")
		m.RecordLoad(ctx, "mesh", 1)
		m.RecordCacheLookup(ctx, "mesh", true)
	})
}
