package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is one invalid configuration value.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every invalid value found in a Config.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "invalid configuration: " + strings.Join(parts, "; ")
}

var validate = validator.New()

// Validate checks field ranges and cross-field constraints. Invalid
// thresholds are programming errors and are rejected before any analysis.
func Validate(cfg *Config) error {
	if cfg == nil {
		return &ValidationError{Errors: []FieldError{{Field: "(root)", Message: "missing configuration"}}}
	}

	verr := &ValidationError{}
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validating configuration: %w", err)
		}
		for _, fe := range fieldErrs {
			verr.Errors = append(verr.Errors, FieldError{
				Field:   fe.Namespace(),
				Message: describeTag(fe),
			})
		}
	}

	c := cfg.Contrast
	if c.AAANormal < c.AANormal {
		verr.Errors = append(verr.Errors, FieldError{Field: "Config.Contrast.AAANormal", Message: "must not be below AANormal"})
	}
	if c.AAALarge < c.AALarge {
		verr.Errors = append(verr.Errors, FieldError{Field: "Config.Contrast.AAALarge", Message: "must not be below AALarge"})
	}
	if c.NonTextFloor > c.NonText {
		verr.Errors = append(verr.Errors, FieldError{Field: "Config.Contrast.NonTextFloor", Message: "must not exceed NonText"})
	}
	if cfg.Contrast.LargeBoldTextPt > cfg.Contrast.LargeTextPt {
		verr.Errors = append(verr.Errors, FieldError{Field: "Config.Contrast.LargeBoldTextPt", Message: "must not exceed LargeTextPt"})
	}

	if len(verr.Errors) > 0 {
		return verr
	}
	return nil
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be >= %s (got %v)", fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("must be > %s (got %v)", fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("must be <= %s (got %v)", fe.Param(), fe.Value())
	case "min":
		return fmt.Sprintf("must have at least %s entries", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s] (got %v)", fe.Param(), fe.Value())
	}
	return fmt.Sprintf("failed %q check", fe.Tag())
}
