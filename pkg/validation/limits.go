package validation

import (
	"fmt"

	dErrors "unitgate/pkg/domain-errors"
)

// MaxBodySize is the request body cap applied by the body limit middleware (64 KB).
const MaxBodySize = 64 * 1024

const (
	MaxNameLength   = 200
	MaxUnitLength   = 32
	MaxReasonLength = 1000
	MaxNotesLength  = 2000

	// MaxResidentCount bounds resident_count on claims and corrections.
	MaxResidentCount = 50

	// MaxCorrectionFields bounds how many fields one conflict correction may touch.
	MaxCorrectionFields = 20
)

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len([]rune(value)) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

// CheckSliceCount validates that a slice does not exceed the maximum count.
func CheckSliceCount(fieldName string, count, max int) error {
	if count > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("too many %s: max %d allowed", fieldName, max))
	}
	return nil
}
