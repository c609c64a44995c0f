package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/kbukum/beankit/observability"

// OperationContext tracks one unit of work, usually an HTTP request, for
// tracing and metrics.
type OperationContext struct {
	ServiceName string
	Route       string
	RequestID   string
	StartTime   time.Time
	Metrics     *Metrics
}

// NewOperationContext creates a new operation context.
// If metrics is nil, metric recording is silently skipped.
func NewOperationContext(serviceName, route, requestID string, metrics *Metrics) *OperationContext {
	return &OperationContext{
		ServiceName: serviceName,
		Route:       route,
		RequestID:   requestID,
		StartTime:   time.Now(),
		Metrics:     metrics,
	}
}

type operationContextKey struct{}

// WithOperationContext stores an OperationContext in the context.
func WithOperationContext(ctx context.Context, oc *OperationContext) context.Context {
	return context.WithValue(ctx, operationContextKey{}, oc)
}

// OperationContextFromContext retrieves the OperationContext from context, or nil.
func OperationContextFromContext(ctx context.Context) *OperationContext {
	if oc, ok := ctx.Value(operationContextKey{}).(*OperationContext); ok {
		return oc
	}
	return nil
}

// Start opens the operation span and counts the request as active.
func (oc *OperationContext) Start(ctx context.Context, spanName string) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, spanName, trace.WithSpanKind(trace.SpanKindServer))
	span.SetAttributes(
		attribute.String(AttrServiceName, oc.ServiceName),
		attribute.String(AttrRoute, oc.Route),
	)
	if oc.RequestID != "" {
		span.SetAttributes(attribute.String(AttrRequestID, oc.RequestID))
	}
	oc.Metrics.RecordRequestStart(ctx)
	return WithOperationContext(ctx, oc), span
}

// SetRoute replaces the route label once a router has matched the request.
func (oc *OperationContext) SetRoute(ctx context.Context, route string) {
	oc.Route = route
	trace.SpanFromContext(ctx).SetAttributes(attribute.String(AttrRoute, route))
}

// End closes the span and records the finished request.
func (oc *OperationContext) End(ctx context.Context, span trace.Span, status string, err error) {
	duration := time.Since(oc.StartTime)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}
	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	span.End()
	oc.Metrics.RecordRequestEnd(ctx, oc.ServiceName, oc.Route, status, duration)
}

// Duration returns the elapsed time since operation start.
func (oc *OperationContext) Duration() time.Duration {
	return time.Since(oc.StartTime)
}
