// Package errors provides typed errors for artifact-registrar
package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error
type ErrorType int

const (
	// ErrConfig indicates missing or incomplete credentials
	ErrConfig ErrorType = iota
	// ErrParse indicates malformed artifacts or execution context input
	ErrParse
	// ErrValidation indicates an input validation error
	ErrValidation
	// ErrTransport indicates a network-level failure reaching the instance
	ErrTransport
	// ErrApplication indicates a non-2xx response from the instance
	ErrApplication
)

// CICDError is the base error type for all artifact-registrar errors
type CICDError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error returns the error message
func (e *CICDError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", errorTypeString(e.Type), e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", errorTypeString(e.Type), e.Message)
}

// Unwrap returns the underlying cause
func (e *CICDError) Unwrap() error {
	return e.Cause
}

// New creates a new CICDError
func New(errType ErrorType, message string, cause error) *CICDError {
	return &CICDError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context to the error
func (e *CICDError) WithContext(key string, value interface{}) *CICDError {
	e.Context[key] = value
	return e
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	var cicdErr *CICDError
	if err == nil {
		return false
	}
	if errors.As(err, &cicdErr) {
		return cicdErr.Type == errType
	}
	return false
}

// IsRetryable reports whether err may be retried. Registration is a single
// call per run, so nothing is.
func IsRetryable(err error) bool {
	return false
}

// ShouldBlockCI returns true if the error should fail the pipeline step
func ShouldBlockCI(err error) bool {
	var cicdErr *CICDError
	if !errors.As(err, &cicdErr) {
		return false
	}

	switch cicdErr.Type {
	case ErrConfig, ErrParse, ErrValidation, ErrTransport, ErrApplication:
		return true
	default:
		return false
	}
}

// Message returns the human-readable message of the outermost CICDError in
// err's chain, or err.Error() when there is none.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var cicdErr *CICDError
	if errors.As(err, &cicdErr) {
		return cicdErr.Message
	}
	return err.Error()
}

func errorTypeString(et ErrorType) string {
	switch et {
	case ErrConfig:
		return "CONFIG"
	case ErrParse:
		return "PARSE"
	case ErrValidation:
		return "VALIDATION"
	case ErrTransport:
		return "TRANSPORT"
	case ErrApplication:
		return "APPLICATION"
	default:
		return "UNKNOWN"
	}
}

// Convenience functions for common errors

// ConfigError creates a configuration error
func ConfigError(message string, cause error) *CICDError {
	return New(ErrConfig, message, cause)
}

// ParseError creates a parse error
func ParseError(message string, cause error) *CICDError {
	return New(ErrParse, message, cause)
}

// ValidationError creates a validation error
func ValidationError(message string, cause error) *CICDError {
	return New(ErrValidation, message, cause)
}

// TransportError creates a transport error
func TransportError(message string, cause error) *CICDError {
	return New(ErrTransport, message, cause)
}

// ApplicationError creates an application error
func ApplicationError(message string, cause error) *CICDError {
	return New(ErrApplication, message, cause)
}
