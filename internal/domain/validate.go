package domain

import (
	"fmt"
	"math"
)

// ValidateInputs checks that the prediction, label, and group vectors can be
// audited. It returns nil when they share one non-zero length and every
// prediction and label is 0 or 1. Length disagreement is reported before
// emptiness, so a ShapeMismatch wins over an EmptyInput.
func ValidateInputs[G comparable](predictions, labels []int, groups []G) error {
	np, nl, ng := len(predictions), len(labels), len(groups)
	if np != nl || np != ng {
		ve := NewValidationError(KindShapeMismatch, "inputs")
		ve.AddError(fmt.Sprintf("predictions=%d, labels=%d, groups=%d", np, nl, ng))
		return ve
	}
	if np == 0 {
		ve := NewValidationError(KindEmptyInput, "inputs")
		ve.AddError("predictions, labels, and groups must not be empty")
		return ve
	}
	if err := validateBinary("predictions", predictions); err != nil {
		return err
	}
	return validateBinary("labels", labels)
}

func validateBinary(entity string, values []int) error {
	for i, v := range values {
		if v != 0 && v != 1 {
			ve := NewValidationError(KindNonBinaryValue, entity)
			ve.AddError(fmt.Sprintf("index %d has value %d, want 0 or 1", i, v))
			return ve
		}
	}
	return nil
}

// ValidateTolerance checks that tolerance lies in (0, 1].
func ValidateTolerance(tolerance float64) error {
	if math.IsNaN(tolerance) || tolerance <= 0 || tolerance > 1 {
		ve := NewValidationError(KindInvalidTolerance, "tolerance")
		ve.AddError(fmt.Sprintf("got %v, want a value in (0, 1]", tolerance))
		return ve
	}
	return nil
}
