package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Operation tracks one delivery operation: a span plus its metrics.
type Operation struct {
	Intent    string
	StartTime time.Time
	Metrics   *DeliveryMetrics
	span      trace.Span
}

// StartOperation starts a delivery span for intent. metrics may be nil.
func StartOperation(ctx context.Context, metrics *DeliveryMetrics, intent string) (context.Context, *Operation) {
	ctx, span := StartSpan(ctx, SpanDeliveryRequest, trace.WithAttributes(
		attribute.String(AttrIntent, intent),
	))
	return ctx, &Operation{
		Intent:    intent,
		StartTime: time.Now(),
		Metrics:   metrics,
		span:      span,
	}
}

// operationKey is the context key for Operation.
type operationKey struct{}

// WithOperation stores an Operation in the context.
func WithOperation(ctx context.Context, op *Operation) context.Context {
	return context.WithValue(ctx, operationKey{}, op)
}

// OperationFromContext retrieves the Operation from context, or nil.
func OperationFromContext(ctx context.Context) *Operation {
	if op, ok := ctx.Value(operationKey{}).(*Operation); ok {
		return op
	}
	return nil
}

// Span returns the operation span.
func (op *Operation) Span() trace.Span { return op.span }

// End finishes the span and records the outcome.
func (op *Operation) End(ctx context.Context, status string, err error) {
	duration := time.Since(op.StartTime)

	if err != nil {
		op.span.RecordError(err)
		op.span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}
	op.span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	op.span.End()

	op.Metrics.RecordOutcome(ctx, op.Intent, status, duration)
}

// Duration returns the elapsed time since operation start.
func (op *Operation) Duration() time.Duration {
	return time.Since(op.StartTime)
}
