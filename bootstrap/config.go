package bootstrap

import (
	"github.com/skillsenselab/speechkit/config"
)

// Config constrains application configuration types. Embedding
// config.ServiceConfig by value satisfies it through promoted methods:
//
//	type serviceConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Server server.Config `yaml:"server" mapstructure:"server"`
//	}
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
