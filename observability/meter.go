package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/beankit/logger"
)

// MeterConfig configures the meter provider.
type MeterConfig struct {
	Target
	// Interval is the export period of the periodic reader.
	Interval time.Duration
}

// DefaultMeterConfig exports every 15 seconds to a local collector.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{Target: defaultTarget(serviceName), Interval: 15 * time.Second}
}

// InitMeter installs a periodic OTLP meter provider as the otel global.
// Shut the provider down on exit.
func InitMeter(ctx context.Context, cfg MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("metric exporter: %w", err)
	}
	res, err := cfg.resource()
	if err != nil {
		return nil, fmt.Errorf("metric resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Get("observability").Info("meter initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the container and HTTP instruments. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	beanConstructions metric.Int64Counter
	beanConstructTime metric.Float64Histogram
	beanDestructions  metric.Int64Counter
	resolveErrors     metric.Int64Counter
	scopesActive      metric.Int64UpDownCounter
	requestTotal      metric.Int64Counter
	requestDuration   metric.Float64Histogram
	requestActive     metric.Int64UpDownCounter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var m Metrics
	var err error

	if m.beanConstructions, err = meter.Int64Counter("bean.constructions",
		metric.WithDescription("Beans constructed, by bean and scope"),
	); err != nil {
		return nil, fmt.Errorf("creating bean.constructions counter: %w", err)
	}
	if m.beanConstructTime, err = meter.Float64Histogram("bean.construction.duration",
		metric.WithDescription("Time spent building a bean, dependencies included"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating bean.construction.duration histogram: %w", err)
	}
	if m.beanDestructions, err = meter.Int64Counter("bean.destructions",
		metric.WithDescription("Beans destroyed, by bean, scope and status"),
	); err != nil {
		return nil, fmt.Errorf("creating bean.destructions counter: %w", err)
	}
	if m.resolveErrors, err = meter.Int64Counter("container.resolve.errors",
		metric.WithDescription("Failed top-level resolutions by error code"),
	); err != nil {
		return nil, fmt.Errorf("creating container.resolve.errors counter: %w", err)
	}
	if m.scopesActive, err = meter.Int64UpDownCounter("container.scopes.active",
		metric.WithDescription("Open context-bound scopes by kind"),
	); err != nil {
		return nil, fmt.Errorf("creating container.scopes.active counter: %w", err)
	}
	if m.requestTotal, err = meter.Int64Counter("request.total",
		metric.WithDescription("Total number of requests"),
	); err != nil {
		return nil, fmt.Errorf("creating request.total counter: %w", err)
	}
	if m.requestDuration, err = meter.Float64Histogram("request.duration",
		metric.WithDescription("Duration of requests in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating request.duration histogram: %w", err)
	}
	if m.requestActive, err = meter.Int64UpDownCounter("request.active",
		metric.WithDescription("Number of currently active requests"),
	); err != nil {
		return nil, fmt.Errorf("creating request.active counter: %w", err)
	}
	return &m, nil
}

// RecordConstruction records a successful bean construction.
func (m *Metrics) RecordConstruction(ctx context.Context, bean, scope string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("bean", bean),
		attribute.String("scope", scope),
	)
	m.beanConstructions.Add(ctx, 1, attrs)
	m.beanConstructTime.Record(ctx, duration.Seconds(), attrs)
}

// RecordDestruction records a bean teardown; status is "ok" or "error".
func (m *Metrics) RecordDestruction(ctx context.Context, bean, scope, status string) {
	if m == nil {
		return
	}
	m.beanDestructions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("bean", bean),
		attribute.String("scope", scope),
		attribute.String("status", status),
	))
}

// RecordResolveError records a failed top-level resolution.
func (m *Metrics) RecordResolveError(ctx context.Context, code string) {
	if m == nil {
		return
	}
	m.resolveErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code)))
}

// ScopeStarted increments the open scope count for kind.
func (m *Metrics) ScopeStarted(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.scopesActive.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// ScopeEnded decrements the open scope count for kind.
func (m *Metrics) ScopeEnded(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.scopesActive.Add(ctx, -1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordRequestStart increments the active request count.
func (m *Metrics) RecordRequestStart(ctx context.Context) {
	if m == nil {
		return
	}
	m.requestActive.Add(ctx, 1)
}

// RecordRequestEnd decrements active requests and records the completed request.
func (m *Metrics) RecordRequestEnd(ctx context.Context, service, route, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestActive.Add(ctx, -1)
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("route", route),
		attribute.String("status", status),
	))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("route", route),
	))
}
