package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators registers gateway-specific validation rules.
// Must be called before validating Config.
func RegisterCustomValidators(v *validator.Validate) error {
	// duration_string: validates time.ParseDuration syntax ("10s", "1m30s")
	if err := v.RegisterValidation("duration_string", validateDurationString); err != nil {
		return fmt.Errorf("failed to register duration_string validator: %w", err)
	}
	return nil
}

// validateDurationString validates that a field parses as a Go duration.
func validateDurationString(fl validator.FieldLevel) bool {
	d, err := time.ParseDuration(fl.Field().String())
	return err == nil && d > 0
}

// Validate validates the Config using struct tags.
// Returns an error if validation fails, with actionable error messages.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := RegisterCustomValidators(v); err != nil {
		return err
	}

	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	return nil
}

// LoginPeriodDuration returns the parsed login throttle period.
// Call only after Validate; falls back to one minute on parse failure.
func (c *AuthConfig) LoginPeriodDuration() time.Duration {
	d, err := time.ParseDuration(c.LoginPeriod)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

// CleanupIntervalDuration returns the parsed throttle cleanup interval.
func (c *AuthConfig) CleanupIntervalDuration() time.Duration {
	d, err := time.ParseDuration(c.CleanupInterval)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// CallTimeoutDuration returns the parsed dispatch call timeout.
func (c *DispatchConfig) CallTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.CallTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// formatValidationErrors converts validator.ValidationErrors to user-friendly messages.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, formatSingleValidationError(e))
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

// formatSingleValidationError creates a user-friendly message for a single validation error.
func formatSingleValidationError(e validator.FieldError) string {
	field := e.Namespace()
	tag := e.Tag()

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "hostname_port":
		return fmt.Sprintf("%s must be a valid host:port", field)
	case "duration_string":
		return fmt.Sprintf("%s must be a positive duration (e.g., \"30s\", \"5m\")", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, tag)
	}
}
