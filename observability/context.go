package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// OperationContext ties together the identifiers and timing of one tracked
// operation, typically a transcription request.
type OperationContext struct {
	ServiceName   string
	OperationName string
	RequestID     string
	StartTime     time.Time
	Metrics       *Metrics
}

// NewOperationContext starts the clock for an operation. A nil metrics
// recorder silently disables metric recording.
func NewOperationContext(serviceName, operationName, requestID string, metrics *Metrics) *OperationContext {
	return &OperationContext{
		ServiceName:   serviceName,
		OperationName: operationName,
		RequestID:     requestID,
		StartTime:     time.Now(),
		Metrics:       metrics,
	}
}

// Duration returns the elapsed time since the operation started.
func (oc *OperationContext) Duration() time.Duration {
	return time.Since(oc.StartTime)
}

// identity returns the span attributes naming this operation.
func (oc *OperationContext) identity() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrServiceName, oc.ServiceName),
		attribute.String(AttrOperationName, oc.OperationName),
		attribute.String(AttrRequestID, oc.RequestID),
	}
}

// StartSpanForOperation opens a span tagged with the operation identifiers
// and bumps the in-flight request gauge.
func (oc *OperationContext) StartSpanForOperation(ctx context.Context, spanName string) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, spanName)
	span.SetAttributes(oc.identity()...)
	if oc.Metrics != nil {
		oc.Metrics.RecordRequestStart(ctx)
	}
	return ctx, span
}

// EndOperation closes the span with the outcome and records the operation's
// duration metric.
func (oc *OperationContext) EndOperation(ctx context.Context, span trace.Span, status string, err error) {
	elapsed := oc.Duration()

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}
	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, elapsed.Milliseconds()),
	)
	span.End()

	if oc.Metrics != nil {
		oc.Metrics.RecordRequestEnd(ctx, oc.ServiceName, oc.OperationName, status, elapsed)
	}
}

type operationContextKey struct{}

// WithOperationContext stores an OperationContext in the context.
func WithOperationContext(ctx context.Context, oc *OperationContext) context.Context {
	return context.WithValue(ctx, operationContextKey{}, oc)
}

// OperationContextFromContext retrieves the OperationContext, or nil when
// the context carries none.
func OperationContextFromContext(ctx context.Context) *OperationContext {
	oc, _ := ctx.Value(operationContextKey{}).(*OperationContext)
	return oc
}
