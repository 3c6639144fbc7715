// Package validation checks configuration structs before they are used.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Both report failures as an
// errors.AppError with code INVALID_CONFIG and the failing fields listed in
// its details.
//
// # Struct Tag Validation
//
//	type StreamConfig struct {
//	    Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("name", cfg.Name)
//	v.OneOf("environment", cfg.Environment, environments)
//	err := v.Validate()
package validation
