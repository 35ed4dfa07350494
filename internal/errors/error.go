// Package errors provides custom error types for product-related operations.
package errors

import "errors"

var ErrProductNotFound = errors.New("product not found")
var ErrProductExists = errors.New("product already exists")

// ErrValidation is matched by every *ValidationError through errors.Is.
var ErrValidation = errors.New("product validation failed")

// ValidationError reports a product that violates a business invariant.
// Field names the offending attribute; Reason is the human-readable message.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
