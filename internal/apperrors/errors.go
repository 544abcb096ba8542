package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrState indicates an operation was attempted against an entity in the wrong lifecycle state,
// e.g. posting an entry that is not a draft.
var ErrState = errors.New("invalid state")

// ErrConflict indicates a storage-level uniqueness violation (duplicate account code or entry number).
// Callers may retry code/number generation when they see it.
var ErrConflict = errors.New("integrity conflict")

// ErrStorage indicates the underlying store failed (I/O, aborted transaction).
var ErrStorage = errors.New("storage error")

// ErrUnauthorized indicates a missing or invalid credential.
var ErrUnauthorized = errors.New("unauthorized")

// AppError carries a human readable message together with an error kind and an optional cause.
// errors.Is matches both the kind and the cause.
type AppError struct {
	Kind    error
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewAppError builds an AppError of the given kind.
func NewAppError(kind error, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

// NewStorageError wraps a low level store failure.
func NewStorageError(message string, err error) *AppError {
	return NewAppError(ErrStorage, message, err)
}

// Kind returns the sentinel an error belongs to, or nil when it matches none.
func Kind(err error) error {
	for _, k := range []error{ErrValidation, ErrState, ErrNotFound, ErrConflict, ErrUnauthorized, ErrStorage} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
