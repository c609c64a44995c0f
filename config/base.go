package config

import (
	"fmt"

	"github.com/kbukum/beankit/logger"
	"github.com/kbukum/beankit/validation"
)

// BaseConfig holds the fields every beankit application carries. Embed it
// with `mapstructure:",squash"` to keep the keys at the top level.
type BaseConfig struct {
	Name        string        `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string        `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults applies default values to base configuration.
func (c *BaseConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()
}

// Validate validates base configuration.
func (c *BaseConfig) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// GetBaseConfig returns the embedded base section. Application configs that
// embed BaseConfig get it as a promoted method.
func (c *BaseConfig) GetBaseConfig() *BaseConfig { return c }
