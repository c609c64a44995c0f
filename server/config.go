package server

import (
	"time"

	"github.com/kbukum/beankit/server/middleware"
	"github.com/kbukum/beankit/validation"
)

// Config is the `server:` section of an application config.
type Config struct {
	Host         string                `yaml:"host" mapstructure:"host"`
	Port         int                   `yaml:"port" mapstructure:"port" validate:"gte=0,lte=65535"`
	ReadTimeout  int                   `yaml:"read_timeout" mapstructure:"read_timeout" validate:"gte=0"`   // seconds
	WriteTimeout int                   `yaml:"write_timeout" mapstructure:"write_timeout" validate:"gte=0"` // seconds
	IdleTimeout  int                   `yaml:"idle_timeout" mapstructure:"idle_timeout" validate:"gte=0"`   // seconds
	StopTimeout  int                   `yaml:"stop_timeout" mapstructure:"stop_timeout" validate:"gte=0"`   // seconds
	MaxBodySize  string                `yaml:"max_body_size" mapstructure:"max_body_size"`                  // e.g. "10MB"
	CORS         middleware.CORSConfig `yaml:"cors" mapstructure:"cors"`
	Enabled      bool                  `yaml:"enabled" mapstructure:"enabled"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 15
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60
	}
	if c.StopTimeout == 0 {
		c.StopTimeout = 5
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "10MB"
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID}
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }
