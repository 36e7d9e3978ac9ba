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

	"github.com/kbukum/deliverykit/logger"
)

// InitMeter installs a meter provider that pushes to the OTLP HTTP
// endpoint in cfg every cfg.Interval.
func InitMeter(ctx context.Context, cfg Config) (*sdkmetric.MeterProvider, error) {
	cfg.ApplyDefaults()
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.Interval))),
		sdkmetric.WithResource(cfg.resource()),
	)
	otel.SetMeterProvider(mp)

	logger.Debug("meter initialized", logger.Fields(
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// DeliveryMetrics holds the instruments recorded around delivery calls.
// A nil *DeliveryMetrics records nothing.
type DeliveryMetrics struct {
	requestTotal        metric.Int64Counter
	requestDuration     metric.Float64Histogram
	requestActive       metric.Int64UpDownCounter
	cacheHits           metric.Int64Counter
	droppedNotification metric.Int64Counter
	telemetryDispatched metric.Int64Counter
}

// NewDeliveryMetrics creates metric instruments on the given meter.
func NewDeliveryMetrics(meter metric.Meter) (*DeliveryMetrics, error) {
	requestTotal, err := meter.Int64Counter("delivery.request.total",
		metric.WithDescription("Delivery operations by intent and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating delivery.request.total counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram("delivery.request.duration",
		metric.WithDescription("Duration of delivery operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating delivery.request.duration histogram: %w", err)
	}

	requestActive, err := meter.Int64UpDownCounter("delivery.request.active",
		metric.WithDescription("Delivery operations waiting on the network"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating delivery.request.active gauge: %w", err)
	}

	cacheHits, err := meter.Int64Counter("delivery.cache.hits",
		metric.WithDescription("Content units answered from the prefetch cache"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating delivery.cache.hits counter: %w", err)
	}

	dropped, err := meter.Int64Counter("delivery.notification.dropped",
		metric.WithDescription("Notifications discarded or never queued"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating delivery.notification.dropped counter: %w", err)
	}

	telemetry, err := meter.Int64Counter("delivery.telemetry.dispatched",
		metric.WithDescription("Analytics payloads handed to the host"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating delivery.telemetry.dispatched counter: %w", err)
	}

	return &DeliveryMetrics{
		requestTotal:        requestTotal,
		requestDuration:     requestDuration,
		requestActive:       requestActive,
		cacheHits:           cacheHits,
		droppedNotification: dropped,
		telemetryDispatched: telemetry,
	}, nil
}

// RecordRequestStart increments the in-flight count.
func (m *DeliveryMetrics) RecordRequestStart(ctx context.Context, intent string) {
	if m == nil {
		return
	}
	m.requestActive.Add(ctx, 1, metric.WithAttributes(attribute.String("intent", intent)))
}

// RecordRequestEnd decrements the in-flight count.
func (m *DeliveryMetrics) RecordRequestEnd(ctx context.Context, intent string) {
	if m == nil {
		return
	}
	m.requestActive.Add(ctx, -1, metric.WithAttributes(attribute.String("intent", intent)))
}

// RecordOutcome records a completed operation.
func (m *DeliveryMetrics) RecordOutcome(ctx context.Context, intent, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("intent", intent),
		attribute.String("status", status),
	))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("intent", intent),
	))
}

// RecordCacheHits counts units answered from cache.
func (m *DeliveryMetrics) RecordCacheHits(ctx context.Context, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.cacheHits.Add(ctx, int64(n))
}

// RecordDroppedNotifications counts notifications that will never be sent.
func (m *DeliveryMetrics) RecordDroppedNotifications(ctx context.Context, reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.droppedNotification.Add(ctx, int64(n), metric.WithAttributes(attribute.String("reason", reason)))
}

// RecordTelemetry counts analytics payloads dispatched.
func (m *DeliveryMetrics) RecordTelemetry(ctx context.Context, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.telemetryDispatched.Add(ctx, int64(n))
}
