package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestExporter(t *testing.T) (*MetricExporter, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	exporter, closeFn, err := NewMetricExporter(
		WithServiceName("gold-monitor-test"),
		WithReader(reader),
		WithGlobal(false),
	)
	require.NoError(t, err)
	t.Cleanup(closeFn)
	return exporter, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

// sumByAttr returns the int64 sum data points keyed by the value of attr.
func sumByAttr(t *testing.T, m metricdata.Metrics, attr string) map[string]int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	out := map[string]int64{}
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(attribute.Key(attr))
		out[v.AsString()] += dp.Value
	}
	return out
}

func TestNewMetricExporter(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr bool
	}{
		{
			name: "valid config with HTTP",
			opts: []Option{
				WithServiceName("test-service"),
				WithServiceNamespace("test"),
				WithServiceVersion("1.0.0"),
				WithOTLPEndpoint("localhost:4318"),
				WithEnvironment("test"),
				WithGlobal(false),
			},
		},
		{
			name: "valid config with gRPC",
			opts: []Option{
				WithServiceName("test-service"),
				WithOTLPEndpoint(""),
				WithOTLPGRPCEndpoint("localhost:4317"),
				WithGlobal(false),
			},
		},
		{
			name: "empty OTLP endpoint",
			opts: []Option{
				WithOTLPEndpoint(""),
				WithGlobal(false),
			},
			wantErr: true,
		},
		{
			name: "manual reader needs no endpoint",
			opts: []Option{
				WithOTLPEndpoint(""),
				WithReader(sdkmetric.NewManualReader()),
				WithGlobal(false),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter, closeFn, err := NewMetricExporter(tt.opts...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, exporter)
			require.NotNil(t, closeFn)

			// no collector is listening; only bound the final flush
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			_ = exporter.Close(ctx)
		})
	}
}

func TestRecordInstruments(t *testing.T) {
	exporter, reader := newTestExporter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, exporter.RecordCounter(ctx, "test.counter", "c", "1", 2, map[string]string{"k": "v"}))
	}
	require.NoError(t, exporter.RecordUpDown(ctx, "test.updown", "u", "1", 5, nil))
	require.NoError(t, exporter.RecordUpDown(ctx, "test.updown", "u", "1", -2, nil))
	require.NoError(t, exporter.RecordGauge(ctx, "test.gauge", "g", "1", 1.5, nil))
	require.NoError(t, exporter.RecordGauge(ctx, "test.gauge", "g", "1", 2.5, nil))
	require.NoError(t, exporter.RecordHistogram(ctx, "test.histogram", "h", "ms", 10, nil))

	got := collect(t, reader)

	assert.Equal(t, map[string]int64{"v": 6}, sumByAttr(t, got["test.counter"], "k"))
	assert.Equal(t, map[string]int64{"": 3}, sumByAttr(t, got["test.updown"], "k"))

	gauge, ok := got["test.gauge"].Data.(metricdata.Gauge[float64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, 2.5, gauge.DataPoints[0].Value)

	hist, ok := got["test.histogram"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)

	// instruments are created once per name
	assert.Len(t, exporter.counters, 1)
	assert.Len(t, exporter.upDowns, 1)
}
