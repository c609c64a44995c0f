package logger

import "github.com/kbukum/beankit/validation"

// Config is the `logging:` section of an application config.
type Config struct {
	Level     string `yaml:"level" mapstructure:"level" validate:"oneof=trace debug info warn error fatal"`
	Format    string `yaml:"format" mapstructure:"format" validate:"oneof=json console pretty"`
	Output    string `yaml:"output" mapstructure:"output" validate:"omitempty,oneof=stdout stderr"`
	NoColor   bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller    bool   `yaml:"caller" mapstructure:"caller"`
}

// ApplyDefaults fills level, format and output. Timestamps are always on.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stdout"
	}
	c.Timestamp = true
}

// Validate checks the section.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
