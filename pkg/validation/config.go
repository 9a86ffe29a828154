package validation

import (
	"errors"
	"fmt"
	"math"
)

// ConfigValidator provides a fluent interface for validating configuration values.
// It collects all validation errors rather than failing on the first one.
type ConfigValidator struct {
	errors []error
	name   string // config struct name for error messages
}

// NewConfigValidator creates a new config validator with the given config name.
func NewConfigValidator(configName string) *ConfigValidator {
	return &ConfigValidator{
		name:   configName,
		errors: make([]error, 0),
	}
}

// Struct runs the tag-based validation of v and records its error, if any.
func (cv *ConfigValidator) Struct(v any) *ConfigValidator {
	if err := Struct(v); err != nil {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%w", cv.name, err))
	}
	return cv
}

// Required validates that a string field is not empty.
func (cv *ConfigValidator) Required(field, value string) *ConfigValidator {
	if value == "" {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: required field is empty", cv.name, field))
	}
	return cv
}

// Quantile validates that an optional float lies within [0, 1].
func (cv *ConfigValidator) Quantile(field string, value *float64) *ConfigValidator {
	if value == nil {
		return cv
	}
	if q := *value; math.IsNaN(q) || q < 0 || q > 1 {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: value %g is outside range [0, 1]", cv.name, field, q))
	}
	return cv
}

// Distinct validates that two string fields differ when both are set.
func (cv *ConfigValidator) Distinct(fieldA, a, fieldB, b string) *ConfigValidator {
	if a != "" && a == b {
		cv.errors = append(cv.errors, fmt.Errorf("%s: %s and %s must differ, both are %q", cv.name, fieldA, fieldB, a))
	}
	return cv
}

// Custom applies a custom validation function.
func (cv *ConfigValidator) Custom(field string, fn func() error) *ConfigValidator {
	if err := fn(); err != nil {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: %w", cv.name, field, err))
	}
	return cv
}

// When conditionally applies validations if the condition is true.
func (cv *ConfigValidator) When(condition bool, validations func(*ConfigValidator)) *ConfigValidator {
	if condition {
		validations(cv)
	}
	return cv
}

// Validate returns every collected error joined, or nil.
func (cv *ConfigValidator) Validate() error {
	if len(cv.errors) == 0 {
		return nil
	}
	return errors.Join(cv.errors...)
}

// DefaultOr returns the value if it's non-zero, otherwise returns the default.
func DefaultOr[T comparable](value, defaultValue T) T {
	var zero T
	if value == zero {
		return defaultValue
	}
	return value
}
