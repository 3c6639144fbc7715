package config

import (
	"github.com/kbukum/lookahead/logger"
	"github.com/kbukum/lookahead/validation"
)

// Environments a service may declare.
var Environments = []string{"development", "staging", "production"}

// ServiceConfig contains the fields every lookahead binary needs.
// Commands extend it by embedding it in their own config structs.
//
// Example:
//
//	type TailConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Iterator config.IteratorConfig `yaml:"iterator" mapstructure:"iterator"`
//	}
type ServiceConfig struct {
	Name          string              `yaml:"name" mapstructure:"name"`
	Environment   string              `yaml:"environment" mapstructure:"environment"`
	Version       string              `yaml:"version" mapstructure:"version"`
	Debug         bool                `yaml:"debug" mapstructure:"debug"`
	Logging       logger.Config       `yaml:"logging" mapstructure:"logging"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
}

// GetServiceConfig returns the base ServiceConfig. When embedded, it is
// promoted so the embedding struct satisfies bootstrap.Config.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults applies default values to the base configuration.
// Embedding structs should call it before setting their own defaults.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Logging.ServiceName == "" && c.Name != "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate validates the base configuration fields.
func (c *ServiceConfig) Validate() error {
	return validation.New().
		Required("name", c.Name).
		Required("environment", c.Environment).
		OneOf("environment", c.Environment, Environments).
		Nested("logging", c.Logging.Validate).
		Nested("observability", c.Observability.Validate).
		Validate()
}
