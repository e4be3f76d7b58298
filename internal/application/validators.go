package application

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-fairaudit/internal/domain"
)

// configValidator is shared by every ValidateConfig call; validator.Validate
// caches struct metadata and is safe for concurrent use.
var configValidator = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New()
	// Report YAML field names rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := RegisterConfigValidators(v); err != nil {
		panic(err)
	}
	return v
}

// RegisterConfigValidators registers custom validation functions with
// the validator instance for use in configuration validation.
// RegisterConfigValidators adds the tolerance and metricname validators
// that can be referenced in struct tags.
func RegisterConfigValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("tolerance", validateToleranceTag); err != nil {
		return fmt.Errorf("failed to register tolerance validator: %w", err)
	}

	if err := v.RegisterValidation("metricname", validateMetricNameTag); err != nil {
		return fmt.Errorf("failed to register metricname validator: %w", err)
	}

	return nil
}

// validateToleranceTag accepts tolerances in (0, 1], deferring to the same
// rule the audit engine enforces.
func validateToleranceTag(fl validator.FieldLevel) bool {
	return domain.ValidateTolerance(fl.Field().Float()) == nil
}

// validateMetricNameTag accepts names known to the built-in metric registry,
// including aliases.
func validateMetricNameTag(fl validator.FieldLevel) bool {
	_, err := builtinMetrics.Resolve(fl.Field().String())
	return err == nil
}
