// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInsufficientShares  = errors.New("insufficient shares")
	ErrInstrumentNotFound  = errors.New("instrument not found")
	ErrItemNotFound        = errors.New("catalog item not found")
	ErrItemOwned           = errors.New("catalog item already owned")
	ErrItemLocked          = errors.New("catalog item is locked")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidCurrency     = errors.New("unknown currency")
	ErrRewardClaimed       = errors.New("daily reward already claimed")
	ErrSpinUsed            = errors.New("daily spin already used today")
	ErrMissingRandomSource = errors.New("tick requires a random source")
	ErrUnknownAction       = errors.New("unknown action")
	ErrConfigInvalid       = errors.New("invalid configuration")
	ErrCatalogInvalid      = errors.New("invalid catalog")
	ErrDatabaseError       = errors.New("database error")
	ErrSessionClosed       = errors.New("session closed")
	ErrMalformedAction     = errors.New("malformed action")
	ErrJournalDisabled     = errors.New("journal disabled")
	ErrRateLimited         = errors.New("rate limit exceeded")
)

// RejectionError explains why an action left the state unchanged.
type RejectionError struct {
	Action string
	Reason string
	Err    error
}

func (e *RejectionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s rejected: %v", e.Action, e.Err)
	}
	return fmt.Sprintf("%s rejected: %s: %v", e.Action, e.Reason, e.Err)
}

func (e *RejectionError) Unwrap() error {
	return e.Err
}

// NewRejectionError creates a new RejectionError.
func NewRejectionError(action, reason string, err error) *RejectionError {
	return &RejectionError{
		Action: action,
		Reason: reason,
		Err:    err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrConfigInvalid
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// StoreError represents a failure of the action journal.
type StoreError struct {
	Operation string
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error [%s]: %v", e.Operation, e.Err)
}

func (e *StoreError) Unwrap() []error {
	return []error{ErrDatabaseError, e.Err}
}

// NewStoreError creates a new StoreError.
func NewStoreError(operation string, err error) *StoreError {
	return &StoreError{
		Operation: operation,
		Err:       err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
