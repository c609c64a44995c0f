package main

import (
	"fmt"

	"github.com/kbukum/beankit/config"
	"github.com/kbukum/beankit/di"
	"github.com/kbukum/beankit/hello"
	"github.com/kbukum/beankit/observability"
	"github.com/kbukum/beankit/server"
)

// AppConfig is the full hello configuration.
type AppConfig struct {
	config.BaseConfig `mapstructure:",squash"`

	Container     di.Config            `yaml:"container" mapstructure:"container"`
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	Hello         hello.Config         `yaml:"hello" mapstructure:"hello"`
}

func newAppConfig() *AppConfig {
	return &AppConfig{Container: di.DefaultConfig()}
}

func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.BaseConfig.ApplyDefaults()
	c.Container.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Observability.ApplyDefaults()
	c.Hello.ApplyDefaults()
}

func (c *AppConfig) Validate() error {
	if err := c.BaseConfig.Validate(); err != nil {
		return err
	}
	sections := []struct {
		name string
		v    interface{ Validate() error }
	}{
		{"container", &c.Container},
		{"server", &c.Server},
		{"observability", &c.Observability},
		{"hello", &c.Hello},
	}
	for _, s := range sections {
		if err := s.v.Validate(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}
