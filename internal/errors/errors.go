// Package errors defines stable error codes for all aide failure modes.
package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// UnreadableFile indicates a file could not be read as text; index and
	// scan operations skip the file rather than fail.
	UnreadableFile ErrorCode = "UNREADABLE_FILE"
	// MalformedDiff indicates diff text could not be parsed
	MalformedDiff ErrorCode = "MALFORMED_DIFF"
	// WriteFailure indicates a file write failed during patch apply
	WriteFailure ErrorCode = "WRITE_FAILURE"
	// BackupNotFound indicates no backup exists for the requested id
	BackupNotFound ErrorCode = "BACKUP_NOT_FOUND"
	// ScopeInvalid indicates an invalid or empty operation scope
	ScopeInvalid ErrorCode = "SCOPE_INVALID"
	// IndexMissing indicates the semantic index has not been built
	IndexMissing ErrorCode = "INDEX_MISSING"
	// ConfigInvalid indicates a config key or value failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// CoreError represents an aide error with a stable code and optional cause
type CoreError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error
}

// New creates a new CoreError
func New(code ErrorCode, message string, cause error) *CoreError {
	return &CoreError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *CoreError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *CoreError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *CoreError) WithDetails(details interface{}) *CoreError {
	e.Details = details
	return e
}

// CodeOf extracts the error code from an error, or InternalError if the
// error is not a CoreError.
func CodeOf(err error) ErrorCode {
	if ce, ok := err.(*CoreError); ok {
		return ce.Code
	}
	return InternalError
}
