package release

import (
	"errors"
	"fmt"
)

// Store error kinds. Every error returned by a version repository matches exactly one of them.
var (
	// ErrConnection means the store could not be reached or the connection broke.
	ErrConnection = errors.New("store connection failure")
	// ErrConstraint means the store rejected the write because of a constraint.
	ErrConstraint = errors.New("store constraint violation")
	// ErrPersistence covers every other failure to read or write the record.
	ErrPersistence = errors.New("store persistence failure")
)

// StoreError carries the kind of a repository failure together with its original cause.
type StoreError struct {
	// Kind is one of ErrConnection, ErrConstraint or ErrPersistence.
	Kind error
	// Op names the repository operation that failed.
	Op string
	// Err is the underlying driver or filesystem error.
	Err error
}

// NewStoreError builds a StoreError, defaulting the kind to ErrPersistence.
func NewStoreError(kind error, op string, err error) *StoreError {
	if kind == nil {
		kind = ErrPersistence
	}

	return &StoreError{
		Kind: kind,
		Op:   op,
		Err:  err,
	}
}

// Error renders the operation and the underlying cause.
func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *StoreError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// KindOf returns the store error kind of err, or nil if err is not a store error.
func KindOf(err error) error {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Kind
	}

	return nil
}
