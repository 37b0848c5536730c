package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that no transaction carries the requested id.
	ErrNotFound = errors.New("transaction not found")

	// ErrStorageUnavailable indicates that the durable store could not be read or written.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrCorruptPayload indicates that the durable slot holds data that cannot be decoded.
	ErrCorruptPayload = errors.New("corrupt storage payload")

	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")
)

var (
	ErrInvalidType     = errors.New("please select a transaction type")
	ErrInvalidCategory = errors.New("please select a category")
	ErrInvalidAmount   = errors.New("please enter a valid amount")
	ErrInvalidDate     = errors.New("please select a date")
	ErrInvalidMonth    = errors.New("invalid month, expected YYYY-MM")
)

// ValidationError reports a rejected form field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
