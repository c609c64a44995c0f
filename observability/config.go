package observability

import (
	"time"

	"github.com/kbukum/beankit/validation"
)

// Config is the `observability:` section of an application config.
// Tracing and metrics export are off unless enabled.
type Config struct {
	Tracing        bool          `yaml:"tracing" mapstructure:"tracing"`
	Metrics        bool          `yaml:"metrics" mapstructure:"metrics"`
	Endpoint       string        `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Insecure       bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate     float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	MetricInterval time.Duration `yaml:"metric_interval" mapstructure:"metric_interval"`
}

// ApplyDefaults fills in the collector endpoint and rates.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.MetricInterval == 0 {
		c.MetricInterval = 15 * time.Second
	}
}

// Validate checks the section.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// TracerConfig builds the tracer settings for a service.
func (c *Config) TracerConfig(service, version, environment string) TracerConfig {
	tc := DefaultTracerConfig(service)
	tc.ServiceVersion, tc.Environment = version, environment
	tc.Endpoint, tc.Insecure, tc.SampleRate = c.Endpoint, c.Insecure, c.SampleRate
	return tc
}

// MeterConfig builds the meter settings for a service.
func (c *Config) MeterConfig(service, version, environment string) MeterConfig {
	mc := DefaultMeterConfig(service)
	mc.ServiceVersion, mc.Environment = version, environment
	mc.Endpoint, mc.Insecure, mc.Interval = c.Endpoint, c.Insecure, c.MetricInterval
	return mc
}
