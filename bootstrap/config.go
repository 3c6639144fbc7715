package bootstrap

import (
	"github.com/kbukum/lookahead/config"
)

// Config is the interface constraint for command configuration types.
// Any struct that embeds config.ServiceConfig (value embedding) satisfies
// it through promoted methods, unless it overrides them.
//
// Example:
//
//	type TailConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Iterator config.IteratorConfig `yaml:"iterator" mapstructure:"iterator"`
//	}
//
//	app, err := bootstrap.NewApp(&cfg)
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
