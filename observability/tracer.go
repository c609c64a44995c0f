package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/beankit/logger"
)

// Target identifies the service that exports telemetry and the OTLP HTTP
// collector it exports to.
type Target struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is host:port, e.g. "localhost:4318".
	Endpoint string
	Insecure bool
}

func defaultTarget(serviceName string) Target {
	return Target{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
	}
}

func (t Target) resource() (*resource.Resource, error) {
	return resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(t.ServiceName),
		semconv.ServiceVersion(t.ServiceVersion),
		semconv.DeploymentEnvironment(t.Environment),
	))
}

// TracerConfig configures the tracer provider.
type TracerConfig struct {
	Target
	// SampleRate is the fraction of root spans kept, 0 to 1.
	SampleRate float64
}

// DefaultTracerConfig samples everything and exports to a local collector.
func DefaultTracerConfig(serviceName string) TracerConfig {
	return TracerConfig{Target: defaultTarget(serviceName), SampleRate: 1.0}
}

func (c TracerConfig) sampler() sdktrace.Sampler {
	switch {
	case c.SampleRate >= 1:
		return sdktrace.AlwaysSample()
	case c.SampleRate <= 0:
		return sdktrace.NeverSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(c.SampleRate))
}

// InitTracer installs a batching OTLP tracer provider and the W3C
// propagators as the otel globals. Shut the provider down on exit.
func InitTracer(ctx context.Context, cfg TracerConfig) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("trace exporter: %w", err)
	}
	res, err := cfg.resource()
	if err != nil {
		return nil, fmt.Errorf("trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(cfg.sampler()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Get("observability").Info("tracer initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"sample_rate", cfg.SampleRate,
	))
	return tp, nil
}

// SetSpanAttribute sets key on the recording span in ctx. Values of
// unsupported types are dropped.
func SetSpanAttribute(ctx context.Context, key string, value any) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if kv, ok := toAttribute(key, value); ok {
		span.SetAttributes(kv)
	}
}

func toAttribute(key string, value any) (attribute.KeyValue, bool) {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v), true
	case int:
		return attribute.Int(key, v), true
	case int64:
		return attribute.Int64(key, v), true
	case float64:
		return attribute.Float64(key, v), true
	case bool:
		return attribute.Bool(key, v), true
	case []string:
		return attribute.StringSlice(key, v), true
	case time.Duration:
		return attribute.Int64(key, v.Milliseconds()), true
	case fmt.Stringer:
		return attribute.String(key, v.String()), true
	}
	return attribute.KeyValue{}, false
}

// SetSpanError records err on the recording span in ctx and marks it failed.
func SetSpanError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// Span names.
const (
	SpanResolve     = "di.resolve"
	SpanHTTPRequest = "http.request"
)

// Attribute keys.
const (
	AttrServiceName  = "service.name"
	AttrRoute        = "http.route"
	AttrRequestID    = "request.id"
	AttrBeanID       = "bean.id"
	AttrBeanType     = "bean.type"
	AttrScopeKind    = "scope.kind"
	AttrScopeID      = "scope.id"
	AttrDurationMs   = "duration_ms"
	AttrStatus       = "status"
	AttrErrorCode    = "error.code"
	AttrErrorMessage = "error.message"
)
