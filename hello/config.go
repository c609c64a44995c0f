package hello

import (
	"github.com/kbukum/beankit/validation"
)

// Config is the `hello:` section.
type Config struct {
	Network  NetworkConfig  `yaml:"network" mapstructure:"network"`
	Discount DiscountConfig `yaml:"discount" mapstructure:"discount"`
}

// NetworkConfig configures the network client bean.
type NetworkConfig struct {
	URL string `yaml:"url" mapstructure:"url" validate:"required,url"`
}

// DiscountConfig picks the policy tagged main.
type DiscountConfig struct {
	Main string `yaml:"main" mapstructure:"main" validate:"oneof=fix rate"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Network.URL == "" {
		c.Network.URL = "http://hello-spring.dev"
	}
	if c.Discount.Main == "" {
		c.Discount.Main = "rate"
	}
}

// Validate checks the section.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
