package metrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// MetricExporter records metrics and ships them over OTLP
type MetricExporter struct {
	meterProvider    *sdkmetric.MeterProvider
	meter            metric.Meter
	resource         *resource.Resource
	serviceName      string
	serviceNamespace string
	serviceVersion   string
	otlpEndpoint     string
	otlpGRPCEndpoint string
	environment      string
	exportInterval   time.Duration
	reader           sdkmetric.Reader
	setGlobal        bool

	mu         sync.Mutex
	counters   map[string]metric.Int64Counter
	upDowns    map[string]metric.Int64UpDownCounter
	gauges     map[string]metric.Float64Gauge
	histograms map[string]metric.Float64Histogram
}

// Option is a function that configures a MetricExporter
type Option func(*MetricExporter)

// WithServiceName sets the service name
func WithServiceName(name string) Option {
	return func(mc *MetricExporter) {
		mc.serviceName = name
	}
}

func WithServiceNamespace(namespace string) Option {
	return func(mc *MetricExporter) {
		mc.serviceNamespace = namespace
	}
}

func WithServiceVersion(version string) Option {
	return func(mc *MetricExporter) {
		mc.serviceVersion = version
	}
}

// WithOTLPEndpoint sets the OTLP HTTP endpoint
func WithOTLPEndpoint(endpoint string) Option {
	return func(mc *MetricExporter) {
		mc.otlpEndpoint = endpoint
	}
}

// WithOTLPGRPCEndpoint sets the OTLP gRPC endpoint. It takes precedence over
// the HTTP endpoint.
func WithOTLPGRPCEndpoint(endpoint string) Option {
	return func(mc *MetricExporter) {
		mc.otlpGRPCEndpoint = endpoint
	}
}

// WithEnvironment sets the deployment environment
func WithEnvironment(env string) Option {
	return func(mc *MetricExporter) {
		mc.environment = env
	}
}

func WithExportInterval(d time.Duration) Option {
	return func(mc *MetricExporter) {
		if d > 0 {
			mc.exportInterval = d
		}
	}
}

// WithReader uses reader instead of an OTLP exporter. Tests pass a
// sdkmetric.ManualReader here.
func WithReader(reader sdkmetric.Reader) Option {
	return func(mc *MetricExporter) {
		mc.reader = reader
	}
}

// WithGlobal controls whether the meter provider is installed as the otel
// global. Default: true.
func WithGlobal(setGlobal bool) Option {
	return func(mc *MetricExporter) {
		mc.setGlobal = setGlobal
	}
}

func defaultConfig() *MetricExporter {
	return &MetricExporter{
		serviceName:      "gold-monitor",
		serviceNamespace: "default",
		serviceVersion:   "1.0.0",
		otlpEndpoint:     "localhost:4318",
		environment:      "development",
		exportInterval:   10 * time.Second,
		setGlobal:        true,
		counters:         map[string]metric.Int64Counter{},
		upDowns:          map[string]metric.Int64UpDownCounter{},
		gauges:           map[string]metric.Float64Gauge{},
		histograms:       map[string]metric.Float64Histogram{},
	}
}

// NewMetricExporter creates a new metric exporter instance
func NewMetricExporter(opts ...Option) (*MetricExporter, func(), error) {
	mc := defaultConfig()
	for _, opt := range opts {
		opt(mc)
	}

	if mc.reader == nil && mc.otlpGRPCEndpoint == "" && mc.otlpEndpoint == "" {
		return nil, nil, fmt.Errorf("OTLP HTTP endpoint is required when gRPC endpoint is not configured")
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(mc.serviceName),
			semconv.ServiceNamespace(mc.serviceNamespace),
			semconv.ServiceVersion(mc.serviceVersion),
			semconv.DeploymentEnvironment(mc.environment),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create resource: %w", err)
	}

	reader := mc.reader
	if reader == nil {
		var exporter sdkmetric.Exporter
		if mc.otlpGRPCEndpoint != "" {
			exporter, err = otlpmetricgrpc.New(context.Background(),
				otlpmetricgrpc.WithEndpoint(mc.otlpGRPCEndpoint),
				otlpmetricgrpc.WithInsecure(),
			)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create OTLP gRPC exporter: %w", err)
			}
		} else {
			exporter, err = otlpmetrichttp.New(context.Background(),
				otlpmetrichttp.WithEndpoint(mc.otlpEndpoint),
				otlpmetrichttp.WithInsecure(),
			)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create OTLP HTTP exporter: %w", err)
			}
		}
		reader = sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(mc.exportInterval))
	}

	mc.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	if mc.setGlobal {
		otel.SetMeterProvider(mc.meterProvider)
	}
	mc.meter = mc.meterProvider.Meter(mc.serviceName)
	mc.resource = res

	return mc, func() {
		_ = mc.meterProvider.Shutdown(context.Background())
	}, nil
}

// Close gracefully shuts down the metric exporter
func (mc *MetricExporter) Close(ctx context.Context) error {
	return mc.meterProvider.Shutdown(ctx)
}

// RecordCounter adds value to a monotonic counter
func (mc *MetricExporter) RecordCounter(ctx context.Context, name, description, unit string, value int64, attributes map[string]string) error {
	counter, err := instrument(mc, mc.counters, name, func() (metric.Int64Counter, error) {
		return mc.meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	})
	if err != nil {
		return fmt.Errorf("failed to create counter: %w", err)
	}
	counter.Add(ctx, value, metric.WithAttributes(toAttributes(attributes)...))
	return nil
}

// RecordUpDown adds a possibly negative delta, e.g. for live connections
func (mc *MetricExporter) RecordUpDown(ctx context.Context, name, description, unit string, delta int64, attributes map[string]string) error {
	upDown, err := instrument(mc, mc.upDowns, name, func() (metric.Int64UpDownCounter, error) {
		return mc.meter.Int64UpDownCounter(name, metric.WithDescription(description), metric.WithUnit(unit))
	})
	if err != nil {
		return fmt.Errorf("failed to create up down counter: %w", err)
	}
	upDown.Add(ctx, delta, metric.WithAttributes(toAttributes(attributes)...))
	return nil
}

// RecordGauge records the current value of a gauge
func (mc *MetricExporter) RecordGauge(ctx context.Context, name, description, unit string, value float64, attributes map[string]string) error {
	gauge, err := instrument(mc, mc.gauges, name, func() (metric.Float64Gauge, error) {
		return mc.meter.Float64Gauge(name, metric.WithDescription(description), metric.WithUnit(unit))
	})
	if err != nil {
		return fmt.Errorf("failed to create gauge: %w", err)
	}
	gauge.Record(ctx, value, metric.WithAttributes(toAttributes(attributes)...))
	return nil
}

// RecordHistogram records a histogram metric
func (mc *MetricExporter) RecordHistogram(ctx context.Context, name, description, unit string, value float64, attributes map[string]string) error {
	histogram, err := instrument(mc, mc.histograms, name, func() (metric.Float64Histogram, error) {
		return mc.meter.Float64Histogram(name, metric.WithDescription(description), metric.WithUnit(unit))
	})
	if err != nil {
		return fmt.Errorf("failed to create histogram: %w", err)
	}
	histogram.Record(ctx, value, metric.WithAttributes(toAttributes(attributes)...))
	return nil
}

// instrument returns the cached instrument for name, creating it once.
func instrument[T any](mc *MetricExporter, cache map[string]T, name string, create func() (T, error)) (T, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if inst, ok := cache[name]; ok {
		return inst, nil
	}
	inst, err := create()
	if err != nil {
		return inst, err
	}
	cache[name] = inst
	return inst, nil
}

func toAttributes(attributes map[string]string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(attributes))
	for k, v := range attributes {
		attrs = append(attrs, attribute.String(k, v))
	}
	return attrs
}
