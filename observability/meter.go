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

	"github.com/kbukum/lookahead/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Outcomes recorded for each consumer request.
const (
	OutcomeValue    = "value"
	OutcomeTimeout  = "timeout"
	OutcomeEnd      = "end"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
)

// IteratorMetrics holds the instruments shared by every sequence that is
// given them. A nil *IteratorMetrics records nothing.
type IteratorMetrics struct {
	produced     metric.Int64Counter
	requests     metric.Int64Counter
	sourceErrors metric.Int64Counter
	buffered     metric.Int64UpDownCounter
	waitDuration metric.Float64Histogram
}

// NewIteratorMetrics creates metric instruments on the given meter.
func NewIteratorMetrics(meter metric.Meter) (*IteratorMetrics, error) {
	produced, err := meter.Int64Counter("lookahead.produced",
		metric.WithDescription("Elements pulled from sources by producer pumps"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating lookahead.produced counter: %w", err)
	}

	requests, err := meter.Int64Counter("lookahead.requests",
		metric.WithDescription("Consumer requests by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating lookahead.requests counter: %w", err)
	}

	sourceErrors, err := meter.Int64Counter("lookahead.source_errors",
		metric.WithDescription("Sources that stopped with an error"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating lookahead.source_errors counter: %w", err)
	}

	buffered, err := meter.Int64UpDownCounter("lookahead.buffered",
		metric.WithDescription("Elements produced but not yet consumed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating lookahead.buffered gauge: %w", err)
	}

	waitDuration, err := meter.Float64Histogram("lookahead.wait.duration",
		metric.WithDescription("Time consumers spent waiting on the buffer"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating lookahead.wait.duration histogram: %w", err)
	}

	return &IteratorMetrics{
		produced:     produced,
		requests:     requests,
		sourceErrors: sourceErrors,
		buffered:     buffered,
		waitDuration: waitDuration,
	}, nil
}

// RecordProduced counts one element handed from the source to the buffer.
func (m *IteratorMetrics) RecordProduced(ctx context.Context, tag string) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String(AttrTag, tag))
	m.produced.Add(ctx, 1, attrs)
	m.buffered.Add(ctx, 1, attrs)
}

// RecordDiscarded removes n elements that were buffered but will never be
// consumed, such as those still queued when a sequence is closed.
func (m *IteratorMetrics) RecordDiscarded(ctx context.Context, tag string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.buffered.Add(ctx, -int64(n), metric.WithAttributes(attribute.String(AttrTag, tag)))
}

// RecordSourceError counts a pump that stopped because its source failed.
func (m *IteratorMetrics) RecordSourceError(ctx context.Context, tag string) {
	if m == nil {
		return
	}
	m.sourceErrors.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrTag, tag)))
}

// RecordRequest records one consumer request, its outcome and how long it waited.
func (m *IteratorMetrics) RecordRequest(ctx context.Context, tag, outcome string, waited time.Duration) {
	if m == nil {
		return
	}
	tagAttr := attribute.String(AttrTag, tag)
	m.requests.Add(ctx, 1, metric.WithAttributes(tagAttr, attribute.String(AttrOutcome, outcome)))
	m.waitDuration.Record(ctx, waited.Seconds(), metric.WithAttributes(tagAttr))
	if outcome == OutcomeValue {
		m.buffered.Add(ctx, -1, metric.WithAttributes(tagAttr))
	}
}
