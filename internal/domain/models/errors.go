package models

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the only failure kind of the calculator core.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError describes an out-of-domain value. It matches ErrInvalidInput with errors.Is.
type InvalidInputError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid input: %s %s (got %v)", e.Field, e.Reason, e.Value)
}

// Is reports whether target is ErrInvalidInput.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// InvalidInput builds an *InvalidInputError.
func InvalidInput(field string, value interface{}, reason string) error {
	return &InvalidInputError{Field: field, Value: value, Reason: reason}
}
