package errors

import (
	"fmt"
	"time"
)

// ErrorCategory represents different types of errors in the system
type ErrorCategory string

const (
	// Malformed input lines and unknown message kinds
	ErrorCategoryProtocol ErrorCategory = "protocol"
	// Call parameters that cannot be used
	ErrorCategoryValidation ErrorCategory = "validation"
	// System/internal errors
	ErrorCategorySystem ErrorCategory = "system"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	ErrorSeverityLow      ErrorSeverity = "low"
	ErrorSeverityMedium   ErrorSeverity = "medium"
	ErrorSeverityCritical ErrorSeverity = "critical"
)

// StructuredError represents a structured error with additional context
type StructuredError struct {
	Category    ErrorCategory          `json:"category"`
	Severity    ErrorSeverity          `json:"severity"`
	Code        string                 `json:"code"`
	Message     string                 `json:"message"`
	Details     string                 `json:"details,omitempty"`
	Context     map[string]interface{} `json:"context,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
	Recoverable bool                   `json:"recoverable"`
	Cause       error                  `json:"-"` // Original error, not serialized
}

// Error implements the error interface
func (se *StructuredError) Error() string {
	if se.Details != "" {
		return fmt.Sprintf("[%s:%s] %s: %s", se.Category, se.Code, se.Message, se.Details)
	}
	return fmt.Sprintf("[%s:%s] %s", se.Category, se.Code, se.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (se *StructuredError) Unwrap() error {
	return se.Cause
}

// ToolText renders the error as the text block of a failed call result,
// e.g. "Error: non-numeric value in numbers: <details>".
func (se *StructuredError) ToolText() string {
	if se.Details != "" {
		return fmt.Sprintf("Error: %s: %s", se.Message, se.Details)
	}
	return "Error: " + se.Message
}

// NewStructuredError creates a new structured error
func NewStructuredError(category ErrorCategory, severity ErrorSeverity, code, message string) *StructuredError {
	return &StructuredError{
		Category:    category,
		Severity:    severity,
		Code:        code,
		Message:     message,
		Timestamp:   time.Now(),
		Recoverable: severity != ErrorSeverityCritical,
		Context:     make(map[string]interface{}),
	}
}

// WithDetails adds details to the error
func (se *StructuredError) WithDetails(details string) *StructuredError {
	se.Details = details
	return se
}

// WithContext adds context information to the error
func (se *StructuredError) WithContext(key string, value interface{}) *StructuredError {
	if se.Context == nil {
		se.Context = make(map[string]interface{})
	}
	se.Context[key] = value
	return se
}

// WithCause sets the underlying cause error
func (se *StructuredError) WithCause(err error) *StructuredError {
	se.Cause = err
	return se
}

// IsRecoverable returns whether the error is recoverable
func (se *StructuredError) IsRecoverable() bool {
	return se.Recoverable
}

// Predefined error constructors for common error scenarios

// NewProtocolError creates an error for a line that could not be understood
func NewProtocolError(code, message string, err error) *StructuredError {
	return NewStructuredError(ErrorCategoryProtocol, ErrorSeverityMedium, code, message).WithCause(err)
}

// NewValidationError creates a validation related error
func NewValidationError(code, message string, err error) *StructuredError {
	return NewStructuredError(ErrorCategoryValidation, ErrorSeverityLow, code, message).WithCause(err)
}

// NewSystemError creates a system/internal error
func NewSystemError(code, message string, err error) *StructuredError {
	return NewStructuredError(ErrorCategorySystem, ErrorSeverityCritical, code, message).WithCause(err)
}

// Common error codes
const (
	// Protocol error codes
	ErrCodeParseError         = "PARSE_ERROR"
	ErrCodeUnknownMessageType = "UNKNOWN_MESSAGE_TYPE"

	// Validation error codes
	ErrCodeInvalidNumbers  = "INVALID_NUMBERS"
	ErrCodeNonNumericValue = "NON_NUMERIC_VALUE"

	// System error codes
	ErrCodeHandlerPanic    = "HANDLER_PANIC"
	ErrCodeInputReadFailed = "INPUT_READ_FAILED"
	ErrCodeOutputFailed    = "OUTPUT_WRITE_FAILED"
	ErrCodeSchemaInvalid   = "SCHEMA_INVALID"
)
