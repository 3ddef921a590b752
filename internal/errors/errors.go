// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	// ErrDataGap marks an instrument whose series is empty for the configured
	// range. The instrument is excluded from the run; the run continues.
	ErrDataGap = errors.New("no bars in range")

	// ErrNoData is fatal: zero instruments could be loaded for the run.
	ErrNoData = errors.New("no usable instrument data")

	// ErrInsufficientCash marks a buy whose notional exceeds available cash.
	// The allocator contract should make this unreachable; hitting it aborts
	// the run.
	ErrInsufficientCash = errors.New("insufficient cash")

	// ErrNoPosition marks a sell requested on a flat instrument. Like
	// ErrInsufficientCash this is an invariant violation and aborts the run.
	ErrNoPosition = errors.New("no open position")

	// ErrOpenOrder marks a submission while the instrument already has a live
	// order. Callers treat it as "signal ignored this step".
	ErrOpenOrder = errors.New("order already outstanding")

	ErrEndOfData     = errors.New("end of bar data")
	ErrConfigInvalid = errors.New("invalid configuration")
	ErrDatabase      = errors.New("database error")
)

// DataError represents a per-instrument data problem.
type DataError struct {
	Instrument string
	Message    string
	Err        error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s]: %s: %v", e.Instrument, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s]: %s", e.Instrument, e.Message)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(instrument, message string, err error) *DataError {
	return &DataError{
		Instrument: instrument,
		Message:    message,
		Err:        err,
	}
}

// OrderError represents an error related to order operations.
type OrderError struct {
	OrderID    string
	Instrument string
	Action     string
	Reason     string
	Err        error
}

func (e *OrderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("order error [%s] %s %s: %s: %v", e.OrderID, e.Action, e.Instrument, e.Reason, e.Err)
	}
	return fmt.Sprintf("order error [%s] %s %s: %s", e.OrderID, e.Action, e.Instrument, e.Reason)
}

func (e *OrderError) Unwrap() error {
	return e.Err
}

// NewOrderError creates a new OrderError.
func NewOrderError(orderID, instrument, action, reason string, err error) *OrderError {
	return &OrderError{
		OrderID:    orderID,
		Instrument: instrument,
		Action:     action,
		Reason:     reason,
		Err:        err,
	}
}

// ValidationError represents a configuration or input validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
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
