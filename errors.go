// Package ffcx holds the error values shared by the ffcx analysis and code
// generation packages.
package ffcx

import "errors"

// Sentinel errors for the failure modes of the backend core.
// All of them are detected synchronously at the API boundary, before any
// traversal or emission starts. A caller that receives one of these must
// discard any partial output of the failed call.
//
// Use the Is*Err helper functions to check for specific errors through
// wrapping added by the lower layers.
var (
	// ErrInvalidInput is returned when an input violates a structural
	// precondition: a permutation that is not a bijection, an operand missing
	// from the node index map, a non-topological node ordering, or a seed
	// index outside the graph.
	ErrInvalidInput = errors.New("ffcx: invalid input")

	// ErrDimensionMismatch is returned when a declared array extent does not
	// match the permutation or graph it is used with, or when a row stride is
	// smaller than the permutation length.
	ErrDimensionMismatch = errors.New("ffcx: dimension mismatch")

	// ErrUnsupportedOption is returned for an unrecognized option value, such
	// as a permutation direction other than "forward" or "reverse".
	ErrUnsupportedOption = errors.New("ffcx: unsupported option")
)

// IsInvalidInputErr returns true if err is or wraps ErrInvalidInput.
func IsInvalidInputErr(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsDimensionMismatchErr returns true if err is or wraps ErrDimensionMismatch.
func IsDimensionMismatchErr(err error) bool {
	return errors.Is(err, ErrDimensionMismatch)
}

// IsUnsupportedOptionErr returns true if err is or wraps ErrUnsupportedOption.
func IsUnsupportedOptionErr(err error) bool {
	return errors.Is(err, ErrUnsupportedOption)
}
