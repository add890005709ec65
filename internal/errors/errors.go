// Package errors provides a lightweight structured error type for
// category-based classification and retry semantics across the publish
// pipeline and CLI.
package errors

import "fmt"

// ErrorCategory classifies a publisher error for reporting and exit codes.
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryParams     ErrorCategory = "params"

	// External system integration errors
	CategoryNetwork ErrorCategory = "network"
	CategoryStorage ErrorCategory = "storage"
	CategoryCDN     ErrorCategory = "cdn"
	CategorySource  ErrorCategory = "source"

	// Build and processing errors
	CategoryRender     ErrorCategory = "render"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Runtime and infrastructure errors
	CategoryDaemon   ErrorCategory = "daemon"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops the pipeline
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded behavior
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// PublishError is a structured error with category, retryability, and context.
type PublishError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for PublishError.
type ContextFields map[string]any

// Error implements the error interface.
func (e *PublishError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling.
func (e *PublishError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error.
func (e *PublishError) WithContext(key string, value any) *PublishError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new PublishError.
func New(category ErrorCategory, severity ErrorSeverity, message string) *PublishError {
	return &PublishError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new PublishError that wraps an existing error.
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *PublishError {
	return &PublishError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// WrapRetryable creates a new retryable PublishError that wraps an existing error.
func WrapRetryable(err error, category ErrorCategory, severity ErrorSeverity, message string) *PublishError {
	return &PublishError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: true,
	}
}

// IsCategory checks if an error belongs to a specific category.
func IsCategory(err error, category ErrorCategory) bool {
	if pe, ok := err.(*PublishError); ok {
		return pe.Category == category
	}
	return false
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if pe, ok := err.(*PublishError); ok {
		return pe.Retryable
	}
	return false
}

// GetCategory extracts the category from an error, or CategoryInternal if
// the error is not a PublishError.
func GetCategory(err error) ErrorCategory {
	if pe, ok := err.(*PublishError); ok {
		return pe.Category
	}
	return CategoryInternal
}
