package config

import (
	"time"

	"github.com/kbukum/lookahead/observability"
	"github.com/kbukum/lookahead/validation"
)

// ObservabilityConfig selects which OpenTelemetry exporters a binary starts.
// Both are off unless enabled.
type ObservabilityConfig struct {
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// TracingConfig configures OTLP/HTTP trace export.
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// MetricsConfig configures OTLP/HTTP metric export.
type MetricsConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Insecure bool          `yaml:"insecure" mapstructure:"insecure"`
	Interval time.Duration `yaml:"interval" mapstructure:"interval" validate:"gte=0"`
}

// ApplyDefaults fills endpoints, sampling and interval from the
// observability package defaults.
func (c *ObservabilityConfig) ApplyDefaults() {
	tdef := observability.DefaultTracerConfig("")
	if c.Tracing.Endpoint == "" {
		c.Tracing.Endpoint = tdef.Endpoint
		c.Tracing.Insecure = tdef.Insecure
	}
	if c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = tdef.SampleRate
	}

	mdef := observability.DefaultMeterConfig("")
	if c.Metrics.Endpoint == "" {
		c.Metrics.Endpoint = mdef.Endpoint
		c.Metrics.Insecure = mdef.Insecure
	}
	if c.Metrics.Interval == 0 {
		c.Metrics.Interval = mdef.Interval
	}
}

// Validate checks endpoints and ranges.
func (c *ObservabilityConfig) Validate() error {
	return validation.Validate(c)
}

// TracerConfig converts the tracing section for observability.InitTracer.
func (c *ServiceConfig) TracerConfig() observability.TracerConfig {
	return observability.TracerConfig{
		ServiceName:    c.Name,
		ServiceVersion: c.Version,
		Environment:    c.Environment,
		Endpoint:       c.Observability.Tracing.Endpoint,
		Insecure:       c.Observability.Tracing.Insecure,
		SampleRate:     c.Observability.Tracing.SampleRate,
	}
}

// MeterConfig converts the metrics section for observability.InitMeter.
func (c *ServiceConfig) MeterConfig() *observability.MeterConfig {
	return &observability.MeterConfig{
		ServiceName:    c.Name,
		ServiceVersion: c.Version,
		Environment:    c.Environment,
		Endpoint:       c.Observability.Metrics.Endpoint,
		Insecure:       c.Observability.Metrics.Insecure,
		Interval:       c.Observability.Metrics.Interval,
	}
}
