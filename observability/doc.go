// Package observability wires OpenTelemetry tracing and metrics for delivery
// calls.
//
// Setup:
//
//	shutdown, err := observability.Init(ctx, cfg)
//	defer shutdown(ctx)
//
// Instruments:
//
//	metrics, err := observability.NewDeliveryMetrics(observability.Meter("deliverykit"))
//	ctx, op := observability.StartOperation(ctx, metrics, "prefetch")
//	...
//	op.End(ctx, "success", nil)
package observability
