package bootstrap

import (
	"github.com/kbukum/beankit/config"
)

// Config is the constraint for application configuration types. Any struct
// embedding config.BaseConfig satisfies it through promoted methods:
//
//	type HelloConfig struct {
//	    config.BaseConfig `yaml:",inline" mapstructure:",squash"`
//	    Container di.Config     `yaml:"container" mapstructure:"container"`
//	    Server    server.Config `yaml:"server" mapstructure:"server"`
//	}
type Config interface {
	GetBaseConfig() *config.BaseConfig
	ApplyDefaults()
	Validate() error
}
