package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/kbukum/lookahead/errors"
)

func TestValidatorRequired(t *testing.T) {
	v := New()
	v.Required("name", "lookahead")
	if v.HasErrors() {
		t.Error("expected no errors for valid input")
	}

	v2 := New()
	v2.Required("name", "")
	if !v2.HasErrors() {
		t.Error("expected error for empty required field")
	}

	v3 := New()
	v3.Required("name", "   ")
	if !v3.HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorNonNegative(t *testing.T) {
	tests := []struct {
		d       time.Duration
		wantErr bool
	}{
		{0, false},
		{time.Second, false},
		{-time.Millisecond, true},
	}
	for _, tt := range tests {
		v := New().NonNegative("timeout", tt.d)
		if v.HasErrors() != tt.wantErr {
			t.Errorf("NonNegative(%v) errors = %v, want %v", tt.d, v.Errors(), tt.wantErr)
		}
	}
}

func TestValidatorOneOf(t *testing.T) {
	allowed := []string{"json", "console"}

	if New().OneOf("format", "json", allowed).HasErrors() {
		t.Error("expected json to be accepted")
	}
	if New().OneOf("format", "", allowed).HasErrors() {
		t.Error("expected empty value to be skipped")
	}
	v := New().OneOf("format", "xml", allowed)
	if !v.HasErrors() || !strings.Contains(v.Errors()[0].Message, "json, console") {
		t.Errorf("unexpected errors: %v", v.Errors())
	}
}

func TestValidatorCustomAndNested(t *testing.T) {
	v := New()
	v.Custom(false, "tag", "must be set for async streams")
	v.Nested("logging", func() error { return errors.InvalidConfig("bad level") })
	v.Nested("tracing", func() error { return nil })

	if len(v.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %v", v.Errors())
	}
	if v.Errors()[1].Field != "logging" {
		t.Errorf("field = %s, want logging", v.Errors()[1].Field)
	}
}

func TestValidatorValidate(t *testing.T) {
	if err := New().Validate(); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}

	v := New()
	v.Required("name", "")
	v.NonNegative("timeout", -time.Second)
	err := v.Validate()
	if !errors.HasCode(err, errors.ErrCodeInvalidConfig) {
		t.Fatalf("expected INVALID_CONFIG, got %v", err)
	}
	appErr, _ := errors.AsAppError(err)
	if !strings.Contains(appErr.Message, "name: is required") ||
		!strings.Contains(appErr.Message, "timeout: must not be negative") {
		t.Errorf("unexpected message: %s", appErr.Message)
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 2 {
		t.Errorf("expected 2 field details, got %v", appErr.Details["fields"])
	}
}

type streamConfig struct {
	Timeout     time.Duration `mapstructure:"timeout" validate:"gte=0"`
	Format      string        `mapstructure:"format" validate:"required,oneof=json console"`
	BufferLimit int           `validate:"lte=100"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name       string
		cfg        streamConfig
		wantFields []string
	}{
		{
			name: "valid",
			cfg:  streamConfig{Timeout: time.Second, Format: "json"},
		},
		{
			name:       "negative timeout",
			cfg:        streamConfig{Timeout: -time.Second, Format: "json"},
			wantFields: []string{"timeout"},
		},
		{
			name:       "missing format and oversized limit",
			cfg:        streamConfig{BufferLimit: 101},
			wantFields: []string{"format", "buffer_limit"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.cfg)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			appErr, ok := errors.AsAppError(err)
			if !ok || appErr.Code != errors.ErrCodeInvalidConfig {
				t.Fatalf("expected INVALID_CONFIG, got %v", err)
			}
			fields := appErr.Details["fields"].([]FieldError)
			if len(fields) != len(tt.wantFields) {
				t.Fatalf("fields = %v, want %v", fields, tt.wantFields)
			}
			for i, f := range fields {
				if f.Field != tt.wantFields[i] {
					t.Errorf("field[%d] = %s, want %s", i, f.Field, tt.wantFields[i])
				}
			}
		})
	}
}

func TestValidateNonStruct(t *testing.T) {
	err := Validate("not a struct")
	if !errors.HasCode(err, errors.ErrCodeInvalidConfig) {
		t.Fatalf("expected INVALID_CONFIG, got %v", err)
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Timeout":      "timeout",
		"ResetOnNext":  "reset_on_next",
		"RaiseOnError": "raise_on_error",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%s) = %s, want %s", in, got, want)
		}
	}
}
