package summary

import (
	"errors"
	"fmt"
)

// DegeneracyError reports that a dimension's trimmed sample cannot be
// moment-matched to a Beta reference, making the evidence estimate
// undefined. It is a distinct condition, not a division-by-zero crash: the
// rest of the summary (moments, HDI) remains valid.
type DegeneracyError struct {
	// Dim is the offending dimension index.
	Dim int

	// Mean and Std are the sample moments that failed the match.
	Mean float64
	Std  float64

	// Reason describes the failure ("zero variance", or a non-positive
	// matched shape parameter).
	Reason string
}

// Error implements the error interface.
func (e *DegeneracyError) Error() string {
	return fmt.Sprintf("degenerate sample in dimension %d (mean=%v, std=%v): %s", e.Dim, e.Mean, e.Std, e.Reason)
}

// IsDegeneracyError returns true if the error is a sample-degeneracy error.
// Uses errors.As to handle wrapped errors.
func IsDegeneracyError(err error) bool {
	var de *DegeneracyError
	return errors.As(err, &de)
}
