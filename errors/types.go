package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound   ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrCodeConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Build errors
	ErrCodeJarUnresolved   ErrorCode = "JAR_UNRESOLVED"
	ErrCodeBuildFailed     ErrorCode = "BUILD_FAILED"
	ErrCodeBootstrapFailed ErrorCode = "BOOTSTRAP_FAILED"
	ErrCodeDownloadFailed  ErrorCode = "DOWNLOAD_FAILED"
	ErrCodeLockfileInvalid ErrorCode = "LOCKFILE_INVALID"

	// Session errors
	ErrCodeWatcherFailed ErrorCode = "WATCHER_FAILED"
	ErrCodeSpawnFailed   ErrorCode = "PROCESS_SPAWN_FAILED"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// PackError represents a structured error with context
type PackError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *PackError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *PackError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *PackError) WithDetail(key string, value interface{}) *PackError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *PackError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new PackError
func New(code ErrorCode, message string) *PackError {
	return &PackError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a PackError
func Wrap(err error, code ErrorCode, message string) *PackError {
	return &PackError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is a specific PackError code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	packErr, ok := err.(*PackError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return Is(unwrapper.Unwrap(), code)
		}
		return false
	}

	return packErr.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	packErr, ok := err.(*PackError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return packErr.Code
}
