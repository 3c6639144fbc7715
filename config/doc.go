// Package config loads lookahead configuration from config.yml, .env files
// and environment variables.
//
// It uses Viper to read the YAML file and godotenv to load .env files, then
// binds environment variables under several nested-key spellings so that
// ITERATOR_TIMEOUT reaches iterator.timeout and OBSERVABILITY_TRACING_SAMPLE_RATE
// reaches observability.tracing.sample_rate. Durations are written as strings
// ("750ms", "2s").
//
// # Usage
//
//	type Config struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Iterator config.IteratorConfig `yaml:"iterator" mapstructure:"iterator"`
//	}
//
//	var cfg Config
//	err := config.LoadConfig("lookahead", &cfg, config.WithEnvPrefix("LOOKAHEAD"))
package config
