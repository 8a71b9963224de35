package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for body ingestion.
var (
	// ErrNegativeRadius indicates a radius or orbit radius below zero.
	ErrNegativeRadius = errors.New("dynamo: radius must be non-negative")

	// ErrNonFinite indicates a NaN or Inf where a number was expected.
	ErrNonFinite = errors.New("dynamo: value is not a finite number")

	// ErrKinematics indicates a body with no, or more than one, kinematic model.
	ErrKinematics = errors.New("dynamo: body needs exactly one kinematic model")

	// ErrMissing indicates a required field was not supplied.
	ErrMissing = errors.New("dynamo: missing value")
)

// InputError wraps a rejected ingestion field.
type InputError struct {
	Field string
	Value string
	Err   error
}

func (e *InputError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}
