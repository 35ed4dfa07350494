package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	OtlpProtocolHTTP = "http"
	OtlpProtocolGRPC = "grpc"
)

// TelemetryConfig controls trace export and the optional OTLP metric push.
// Metrics are always collected and served on /metrics.
type TelemetryConfig struct {
	Enabled bool          `koanf:"enabled"`
	Traces  TracesConfig  `koanf:"traces"`
	Metrics MetricsConfig `koanf:"metrics"`
}

type TracesConfig struct {
	// Protocol selects the trace exporter: http (default) or grpc.
	Protocol string             `koanf:"protocol"`
	OtlpHttp OtlpExporterConfig `koanf:"otlphttp"`
	OtlpGrpc OtlpExporterConfig `koanf:"otlpgrpc"`
}

// MetricsConfig pushes metrics over OTLP/gRPC when an endpoint is set.
type MetricsConfig struct {
	OtlpGrpc OtlpExporterConfig `koanf:"otlpgrpc"`
	Interval time.Duration      `koanf:"interval"`
}

type OtlpExporterConfig struct {
	Endpoint string        `koanf:"endpoint"`
	Insecure bool          `koanf:"insecure"`
	Timeout  time.Duration `koanf:"timeout"`
}

// Exporter returns the settings of the selected trace protocol.
func (c *TracesConfig) Exporter() OtlpExporterConfig {
	if c.Protocol == OtlpProtocolGRPC {
		return c.OtlpGrpc
	}
	return c.OtlpHttp
}

// PushEnabled reports whether metrics are also pushed to an OTLP collector.
func (c *MetricsConfig) PushEnabled() bool {
	return c.OtlpGrpc.Endpoint != ""
}

// String returns a string representation of the TelemetryConfig.
func (c *TelemetryConfig) String() string {
	var b strings.Builder
	exporter := c.Traces.Exporter()
	b.WriteString("\n--- Telemetry ---\n")
	b.WriteString(fmt.Sprintf("  telemetry.enabled: %t\n", c.Enabled))
	b.WriteString(fmt.Sprintf("  telemetry.traces.protocol: %s\n", c.Traces.Protocol))
	b.WriteString(fmt.Sprintf("  telemetry.traces.endpoint: %s\n", exporter.Endpoint))
	b.WriteString(fmt.Sprintf("  telemetry.traces.insecure: %v\n", exporter.Insecure))
	b.WriteString(fmt.Sprintf("  telemetry.traces.timeout: %v\n", exporter.Timeout))
	if c.Metrics.PushEnabled() {
		b.WriteString(fmt.Sprintf("  telemetry.metrics.otlpgrpc.endpoint: %s\n", c.Metrics.OtlpGrpc.Endpoint))
		b.WriteString(fmt.Sprintf("  telemetry.metrics.interval: %v\n", c.Metrics.Interval))
	}
	return b.String()
}

// Validate defaults an empty trace protocol to http.
func (c *TelemetryConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.Traces.Protocol {
	case "":
		c.Traces.Protocol = OtlpProtocolHTTP
	case OtlpProtocolHTTP, OtlpProtocolGRPC:
	default:
		return fmt.Errorf("unknown OTLP protocol: %q", c.Traces.Protocol)
	}
	exporter := c.Traces.Exporter()
	if exporter.Endpoint == "" {
		return fmt.Errorf("OTel endpoint is not configured")
	}
	if exporter.Timeout <= 0 {
		return fmt.Errorf("telemetry timeout must be greater than 0")
	}
	if c.Metrics.PushEnabled() {
		if c.Metrics.OtlpGrpc.Timeout <= 0 {
			return fmt.Errorf("metrics push timeout must be greater than 0")
		}
		if c.Metrics.Interval <= 0 {
			return fmt.Errorf("metrics push interval must be greater than 0")
		}
	}
	return nil
}
