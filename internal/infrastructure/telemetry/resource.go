// Package telemetry wires OpenTelemetry traces, metrics and logs plus
// Pyroscope profiling. Every provider degrades to a no-op when disabled.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"

	"github.com/tileshop/backend/internal/infrastructure/config"
)

// ServiceVersion is reported on every exported signal
const ServiceVersion = "1.0.0"

const shutdownTimeout = 10 * time.Second

// Collector is the OTLP gRPC endpoint all three signals export to
type Collector struct {
	Endpoint    string
	Insecure    bool
	ServiceName string
}

func (c Collector) resource() (*resource.Resource, error) {
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(c.ServiceName),
		semconv.ServiceVersion(ServiceVersion),
	))
	if err != nil {
		return nil, fmt.Errorf("telemetry resource: %w", err)
	}
	return res, nil
}

// flush bounds a provider shutdown by shutdownTimeout
func flush(ctx context.Context, log *zap.Logger, signal string, shutdown func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Error("Telemetry shutdown failed", zap.String("signal", signal), zap.Error(err))
		return fmt.Errorf("shutdown %s provider: %w", signal, err)
	}
	return nil
}

// Providers bundles the providers built from one telemetry config
type Providers struct {
	Tracer *TracerProvider
	Meter  *MeterProvider
	Logs   *LoggerProvider
}

// NewProviders builds every provider the config enables. Traces follow the
// master switch; metrics and logs also need their own flag.
func NewProviders(ctx context.Context, cfg config.TelemetryConfig, log *zap.Logger) (*Providers, error) {
	collector := Collector{Endpoint: cfg.CollectorEndpoint, Insecure: cfg.Insecure, ServiceName: cfg.ServiceName}
	p := &Providers{}

	var err error
	if p.Tracer, err = NewTracerProvider(ctx, TracesConfig{
		Enabled:       cfg.Enabled,
		Collector:     collector,
		SamplingRatio: cfg.SamplingRatio,
	}, log); err != nil {
		return nil, err
	}
	if p.Meter, err = NewMeterProvider(ctx, MetricsConfig{
		Enabled:        cfg.Enabled && cfg.MetricsEnabled,
		Collector:      collector,
		ExportInterval: cfg.MetricsInterval,
	}, log); err != nil {
		_ = p.Tracer.Shutdown(ctx)
		return nil, err
	}
	if p.Logs, err = NewLoggerProvider(ctx, LogsConfig{
		Enabled:   cfg.Enabled && cfg.LogsEnabled,
		Collector: collector,
	}, log); err != nil {
		_ = p.Meter.Shutdown(ctx)
		_ = p.Tracer.Shutdown(ctx)
		return nil, err
	}
	return p, nil
}

// Shutdown flushes logs, then metrics, then traces and returns the first error
func (p *Providers) Shutdown(ctx context.Context) error {
	var first error
	for _, shutdown := range []func(context.Context) error{p.Logs.Shutdown, p.Meter.Shutdown, p.Tracer.Shutdown} {
		if err := shutdown(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}
