// Package telemetry wires OpenTelemetry tracing and metrics.
package telemetry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/abgdnv/productcatalog/pkg/config"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

func NewTracerProvider(ctx context.Context, serviceName string, cfg config.TelemetryConfig) (*tracesdk.TracerProvider, error) {
	exporter, err := newTraceExporter(ctx, cfg.Traces)
	if err != nil {
		return nil, err
	}
	tp := tracesdk.NewTracerProvider(
		tracesdk.WithBatcher(exporter),
		tracesdk.WithResource(newResource(serviceName)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	return tp, nil
}

func newTraceExporter(ctx context.Context, cfg config.TracesConfig) (tracesdk.SpanExporter, error) {
	exp := cfg.Exporter()
	if cfg.Protocol == config.OtlpProtocolGRPC {
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(exp.Endpoint),
			otlptracegrpc.WithTimeout(exp.Timeout),
		}
		if exp.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		return otlptracegrpc.New(ctx, opts...)
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(exp.Endpoint),
		otlptracehttp.WithTimeout(exp.Timeout),
	}
	if exp.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return otlptracehttp.New(ctx, opts...)
}

// NewOtlpMetricReader pushes metrics to an OTLP/gRPC collector every cfg.Interval.
// Pass it to NewMeterProvider with sdkmetric.WithReader.
func NewOtlpMetricReader(ctx context.Context, cfg config.MetricsConfig) (sdkmetric.Reader, error) {
	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.OtlpGrpc.Endpoint),
		otlpmetricgrpc.WithTimeout(cfg.OtlpGrpc.Timeout),
	}
	if cfg.OtlpGrpc.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create otlp metric exporter: %w", err)
	}
	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.Interval)), nil
}

// Metrics couples the OTel meter provider with the Prometheus registry it exports to.
type Metrics struct {
	Provider *sdkmetric.MeterProvider
	registry *promclient.Registry
}

// NewMeterProvider registers a global meter provider whose instruments are exposed through
// a dedicated Prometheus registry, together with the Go runtime and process collectors.
// Extra options, such as another reader, are applied after the Prometheus reader.
func NewMeterProvider(serviceName string, opts ...sdkmetric.Option) (*Metrics, error) {
	registry := promclient.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(append([]sdkmetric.Option{
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(newResource(serviceName)),
	}, opts...)...)
	otel.SetMeterProvider(mp)
	return &Metrics{Provider: mp, registry: registry}, nil
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func newResource(serviceName string) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)
}
