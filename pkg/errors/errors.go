package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for the failure taxonomy. Validation and resolution errors
// are fatal and raised before any mutating call; target-operation errors
// are isolated at the action boundary and folded into the run summary.
const (
	// General errors
	ErrUnknown  ErrorCode = "UNKNOWN"
	ErrInternal ErrorCode = "INTERNAL"
	ErrNotFound ErrorCode = "NOT_FOUND"

	// Selection errors
	ErrValidation     ErrorCode = "VALIDATION"
	ErrResolution     ErrorCode = "RESOLUTION"
	ErrAmbiguousName  ErrorCode = "AMBIGUOUS_NAME"
	ErrNoFilterMatch  ErrorCode = "NO_FILTER_MATCH"
	ErrEmptySelection ErrorCode = "EMPTY_SELECTION"

	// Per-target errors, never escape the batch loop
	ErrTargetOp ErrorCode = "TARGET_OP"

	// Confirmation: a distinguished non-error, clean exit
	ErrConfirmationDeclined ErrorCode = "CONFIRMATION_DECLINED"

	// Snapshot errors
	ErrSnapshotRead  ErrorCode = "SNAPSHOT_READ"
	ErrSnapshotWrite ErrorCode = "SNAPSHOT_WRITE"
	ErrSnapshotStale ErrorCode = "SNAPSHOT_STALE"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Catalog/API errors
	ErrCatalogCall ErrorCode = "CATALOG_CALL"
)

// FleetError represents a structured error with code and details
type FleetError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *FleetError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *FleetError) Unwrap() error {
	return e.Wrapped
}

// Is matches errors by code so callers can test categories with errors.Is
func (e *FleetError) Is(target error) bool {
	var targetErr *FleetError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new FleetError with the given code and message
func New(code ErrorCode, message string) *FleetError {
	return &FleetError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new FleetError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *FleetError {
	return &FleetError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a FleetError
func Wrap(err error, code ErrorCode, message string) *FleetError {
	if err == nil {
		return nil
	}
	return &FleetError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *FleetError {
	if err == nil {
		return nil
	}
	return &FleetError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *FleetError) WithDetail(key string, value interface{}) *FleetError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithHint attaches the corrective action shown to the operator alongside
// the error message.
func (e *FleetError) WithHint(hint string) *FleetError {
	return e.WithDetail("hint", hint)
}

// Hint returns the corrective-action hint, if one was attached.
func Hint(err error) string {
	details := GetErrorDetails(err)
	if details == nil {
		return ""
	}
	if h, ok := details["hint"].(string); ok {
		return h
	}
	return ""
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var fleetErr *FleetError
	if errors.As(err, &fleetErr) {
		return fleetErr.Code == code
	}
	return false
}

// IsDeclined reports whether err is the operator declining a confirmation
// prompt, which callers must treat as a clean exit rather than a failure.
func IsDeclined(err error) bool {
	return IsErrorCode(err, ErrConfirmationDeclined)
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a FleetError
func GetErrorCode(err error) ErrorCode {
	var fleetErr *FleetError
	if errors.As(err, &fleetErr) {
		return fleetErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a FleetError
func GetErrorDetails(err error) map[string]interface{} {
	var fleetErr *FleetError
	if errors.As(err, &fleetErr) {
		return fleetErr.Details
	}
	return nil
}
