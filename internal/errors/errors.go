// Package errors provides structured error handling for portsweep operations.
// It defines error codes, error types, and utilities for creating and
// inspecting errors with target and field context.
package errors

import (
	"fmt"
)

// ErrorCode represents different types of errors that can occur.
type ErrorCode string

const (
	// General errors.
	CodeUnknown       ErrorCode = "UNKNOWN"
	CodeValidation    ErrorCode = "VALIDATION"
	CodeConfiguration ErrorCode = "CONFIGURATION"
	CodeTimeout       ErrorCode = "TIMEOUT"
	CodeCanceled      ErrorCode = "CANCELED"

	// Pre-scan fatal errors.
	CodeResolution   ErrorCode = "RESOLUTION"
	CodeInvalidRange ErrorCode = "INVALID_RANGE"

	// Output sink errors.
	CodeOutputWrite     ErrorCode = "OUTPUT_WRITE"
	CodeDirectoryCreate ErrorCode = "DIRECTORY_CREATE"
)

// ScanError represents an error that occurred while preparing or running a scan.
type ScanError struct {
	Code    ErrorCode
	Message string
	Target  string
	Cause   error
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("[%s] %s (target: %s)", e.Code, e.Message, e.Target)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ScanError) Unwrap() error {
	return e.Cause
}

// NewScanError creates a new scan error with the specified code and message.
func NewScanError(code ErrorCode, message string) *ScanError {
	return &ScanError{
		Code:    code,
		Message: message,
	}
}

// NewScanErrorWithTarget creates a scan error for a specific target.
func NewScanErrorWithTarget(code ErrorCode, message, target string) *ScanError {
	return &ScanError{
		Code:    code,
		Message: message,
		Target:  target,
	}
}

// WrapScanError wraps an existing error as a scan error.
func WrapScanError(code ErrorCode, message string, err error) *ScanError {
	return &ScanError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WrapScanErrorWithTarget wraps an error with target information.
func WrapScanErrorWithTarget(code ErrorCode, message, target string, err error) *ScanError {
	return &ScanError{
		Code:    code,
		Message: message,
		Target:  target,
		Cause:   err,
	}
}

// ConfigError represents configuration-related errors.
type ConfigError struct {
	Code    ErrorCode
	Message string
	Field   string
	Value   interface{}
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a new configuration error.
func NewConfigError(code ErrorCode, message string) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
	}
}

// NewConfigFieldError creates a configuration error for a specific field.
func NewConfigFieldError(code ErrorCode, message, field string, value interface{}) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
		Field:   field,
		Value:   value,
	}
}

// WrapConfigError wraps an existing error as a configuration error.
func WrapConfigError(code ErrorCode, message string, err error) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// OutputError represents errors from the result sinks.
type OutputError struct {
	Code  ErrorCode
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *OutputError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] output write failed (path: %s): %v", e.Code, e.Path, e.Cause)
	}
	return fmt.Sprintf("[%s] output write failed: %v", e.Code, e.Cause)
}

// Unwrap returns the underlying error.
func (e *OutputError) Unwrap() error {
	return e.Cause
}

// Utility functions for common error operations

// IsCode checks if an error has a specific error code.
func IsCode(err error, code ErrorCode) bool {
	switch e := err.(type) {
	case *ScanError:
		return e.Code == code
	case *ConfigError:
		return e.Code == code
	case *OutputError:
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error if it has one.
func GetCode(err error) ErrorCode {
	switch e := err.(type) {
	case *ScanError:
		return e.Code
	case *ConfigError:
		return e.Code
	case *OutputError:
		return e.Code
	}
	return CodeUnknown
}

// IsFatal determines if an error must abort the run before any scanning starts.
// Only pre-scan failures qualify; everything encountered mid-scan is absorbed
// into the per-port result taxonomy.
func IsFatal(err error) bool {
	code := GetCode(err)
	switch code {
	case CodeResolution, CodeInvalidRange, CodeValidation, CodeConfiguration:
		return true
	default:
		return false
	}
}

// Common error creation functions

// ErrResolutionFailed creates an error for an unresolvable target.
func ErrResolutionFailed(target string, err error) *ScanError {
	return WrapScanErrorWithTarget(CodeResolution, "could not resolve target", target, err)
}

// ErrInvalidPortRange creates an error for an inverted port range.
func ErrInvalidPortRange(start, end int) *ScanError {
	return NewScanError(CodeInvalidRange,
		fmt.Sprintf("invalid port range: start %d is greater than end %d", start, end))
}

// ErrOutputWrite creates an error for a failed result file write.
func ErrOutputWrite(path string, err error) *OutputError {
	return &OutputError{Code: CodeOutputWrite, Path: path, Cause: err}
}

// ErrConfigInvalid creates an error for an invalid configuration value.
func ErrConfigInvalid(field string, value interface{}) *ConfigError {
	return NewConfigFieldError(CodeValidation, "invalid configuration value", field, value)
}
