package config

import (
	"time"

	"github.com/kbukum/lookahead/timeout"
	"github.com/kbukum/lookahead/util"
	"github.com/kbukum/lookahead/validation"
)

// IteratorConfig is the file and environment form of the timeout options.
type IteratorConfig struct {
	// Timeout bounds each wait; zero waits indefinitely.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	// ResetOnNext reverts the timeout to zero after every request.
	ResetOnNext bool `yaml:"reset_on_next" mapstructure:"reset_on_next"`
	// RaiseOnError returns source failures as errors rather than elements.
	// Nil means the default, true.
	RaiseOnError *bool `yaml:"raise_on_error" mapstructure:"raise_on_error"`
	// Tag names the stream; a UUID is generated when empty.
	Tag string `yaml:"tag" mapstructure:"tag" validate:"max=128"`
	// Async selects AsyncIterator over Iterator where a caller supports both.
	Async bool `yaml:"async" mapstructure:"async"`
}

// ApplyDefaults sets RaiseOnError when the config left it out.
func (c *IteratorConfig) ApplyDefaults() {
	if c.RaiseOnError == nil {
		c.RaiseOnError = util.Ptr(true)
	}
}

// Validate checks the struct tags.
func (c *IteratorConfig) Validate() error {
	return validation.Validate(c)
}

// IteratorOptions converts c into options for timeout.New or
// timeout.NewAsync. Options passed in extra are appended and win.
func IteratorOptions[T any](c IteratorConfig, extra ...timeout.Option[T]) []timeout.Option[T] {
	opts := []timeout.Option[T]{
		timeout.WithTimeout[T](c.Timeout),
		timeout.WithResetOnNext[T](c.ResetOnNext),
		timeout.WithRaiseOnError[T](util.Deref(c.RaiseOnError, true)),
	}
	if c.Tag != "" {
		opts = append(opts, timeout.WithTag[T](c.Tag))
	}
	return append(opts, extra...)
}
