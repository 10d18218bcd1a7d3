// Package gublas structured error types for better error handling
package gublas

import (
	"fmt"
)

// ErrorType represents categories of errors
type ErrorType int

const (
	// Memory allocation failures (scratch pool exhausted)
	ErrTypeMemory ErrorType = iota
	// Invalid handle errors
	ErrTypeInvalidHandle
	// Invalid argument errors (bad size, stride, or null pointer)
	ErrTypeInvalidArg
	// Internal execution failures surfaced at the library boundary
	ErrTypeExecution
	// Device errors
	ErrTypeDevice
	// Not implemented errors
	ErrTypeNotImplemented
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Op      string      // Operation that failed
	Message string      // Human-readable message
	Err     error       // Underlying error if any
	Context interface{} // Additional context
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("GUBLAS %s error in %s: %s (caused by: %v)",
			e.Type.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("GUBLAS %s error in %s: %s",
		e.Type.String(), e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// String returns the error type as a string
func (t ErrorType) String() string {
	switch t {
	case ErrTypeMemory:
		return "MemoryAllocation"
	case ErrTypeInvalidHandle:
		return "InvalidHandle"
	case ErrTypeInvalidArg:
		return "InvalidArgument"
	case ErrTypeExecution:
		return "Execution"
	case ErrTypeDevice:
		return "Device"
	case ErrTypeNotImplemented:
		return "NotImplemented"
	default:
		return "Unknown"
	}
}

// Common error constructors

// NewMemoryError creates a memory-related error
func NewMemoryError(op string, message string, err error) error {
	return &Error{
		Type:    ErrTypeMemory,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewInvalidHandleError creates an invalid handle error
func NewInvalidHandleError(op string) error {
	return &Error{
		Type:    ErrTypeInvalidHandle,
		Op:      op,
		Message: "handle is nil or destroyed",
	}
}

// NewInvalidArgError creates an invalid argument error
func NewInvalidArgError(op string, message string) error {
	return &Error{
		Type:    ErrTypeInvalidArg,
		Op:      op,
		Message: message,
	}
}

// NewExecutionError creates an execution error
func NewExecutionError(op string, message string, err error) error {
	return &Error{
		Type:    ErrTypeExecution,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// Common pre-defined errors

var (
	// ErrOutOfMemory indicates memory allocation failure
	ErrOutOfMemory = NewMemoryError("Malloc", "out of memory", nil)

	// ErrInvalidSize indicates invalid size parameter
	ErrInvalidSize = NewInvalidArgError("Malloc", "size must be positive")

	// ErrNullPointer indicates null pointer access
	ErrNullPointer = NewInvalidArgError("Memory", "null pointer")

	// ErrDoubleFree indicates double free attempt
	ErrDoubleFree = NewMemoryError("Free", "double free detected", nil)

	// ErrInvalidDevice indicates invalid device ID
	ErrInvalidDevice = NewInvalidArgError("SetDevice", "invalid device ID")
)

// IsMemoryError checks if an error is a memory allocation error
func IsMemoryError(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Type == ErrTypeMemory
	}
	return false
}

// IsInvalidHandleError checks if an error is an invalid handle error
func IsInvalidHandleError(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Type == ErrTypeInvalidHandle
	}
	return false
}

// IsInvalidArgError checks if an error is an invalid argument error
func IsInvalidArgError(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Type == ErrTypeInvalidArg
	}
	return false
}

// IsExecutionError checks if an error is an internal execution failure
func IsExecutionError(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Type == ErrTypeExecution
	}
	return false
}

// boundary runs fn and converts any panic into an execution error, so no
// internal fault escapes the library boundary.
func boundary(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewExecutionError(op, "internal fault", fmt.Errorf("%v", r))
		}
	}()
	return fn()
}
