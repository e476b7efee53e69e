// Package errors defines the error taxonomy for the statement import
// pipeline.
//
// The pipeline distinguishes hard failures (unreadable input, unexpected
// panics) from soft parse problems. Soft problems never become errors; they
// are surfaced as warnings and confidence scores on the parse result. This
// package only models the hard side: categorized errors with machine-readable
// codes, human suggestions, and context for logging.
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Category groups errors by the subsystem that raised them.
type Category string

const (
	CategoryInput    Category = "input"
	CategoryParse    Category = "parse"
	CategoryConflict Category = "conflict"
	CategoryResolve  Category = "resolve"
	CategoryBackup   Category = "backup"
	CategoryConfig   Category = "config"
	CategoryInternal Category = "internal"
)

// Code identifies a specific error condition within a category.
type Code string

const (
	// Input errors
	CodeEmptyInput     Code = "empty_input"
	CodeUnreadableText Code = "unreadable_text"

	// Parse errors
	CodeNoContent Code = "no_content"

	// Conflict / resolve errors
	CodeMissingResolution Code = "missing_resolution"
	CodeUnknownResolution Code = "unknown_resolution"

	// Backup errors
	CodeBackupWrite   Code = "backup_write"
	CodeBackupRead    Code = "backup_read"
	CodeBackupMissing Code = "backup_missing"

	// Configuration errors
	CodeInvalidConfig Code = "invalid_config"

	// Internal errors
	CodeUnexpectedPanic Code = "unexpected_panic"
	CodeUnexpectedError Code = "unexpected_error"
)

// ImportError is the error type returned by all pipeline operations that can
// fail hard.
type ImportError struct {
	Category   Category               `json:"category"`
	Code       Code                   `json:"code"`
	Message    string                 `json:"message"`
	Suggestion string                 `json:"suggestion,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace errors.StackTrace      `json:"-"`
}

// Error implements the error interface.
func (e *ImportError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error.
func (e *ImportError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error.
func (e *ImportError) WithContext(key string, value interface{}) *ImportError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error.
func (e *ImportError) WithSuggestion(suggestion string) *ImportError {
	e.Suggestion = suggestion
	return e
}

// stackTracer is the interface pkg/errors exposes for stack extraction.
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// New creates a new ImportError.
func New(category Category, code Code, message string) *ImportError {
	return &ImportError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with ImportError context.
func Wrap(err error, category Category, code Code, message string) *ImportError {
	if err == nil {
		return nil
	}

	return &ImportError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// InputError creates an error for unusable statement input.
func InputError(code Code, detail string) *ImportError {
	var message, suggestion string

	switch code {
	case CodeEmptyInput:
		message = "statement text is empty"
		suggestion = "check that the document produced any extractable text"
	case CodeUnreadableText:
		message = fmt.Sprintf("statement text is unreadable: %s", detail)
		suggestion = "verify the source document is not corrupt"
	default:
		message = fmt.Sprintf("input error: %s", detail)
		suggestion = "check the statement input and try again"
	}

	return New(CategoryInput, code, message).
		WithSuggestion(suggestion).
		WithContext("detail", detail)
}

// ResolveError creates an error for a failed import resolution.
func ResolveError(code Code, conflictID string, err error) *ImportError {
	var message, suggestion string

	switch code {
	case CodeMissingResolution:
		message = fmt.Sprintf("conflict %s has no resolution", conflictID)
		suggestion = "collect a resolution for every conflict before resolving the import"
	case CodeUnknownResolution:
		message = fmt.Sprintf("conflict %s has an unknown resolution", conflictID)
		suggestion = "use keep_existing, use_incoming, or keep_both"
	default:
		message = fmt.Sprintf("resolve error for conflict %s", conflictID)
		suggestion = "review the conflict resolutions"
	}

	var result *ImportError
	if err != nil {
		result = Wrap(err, CategoryResolve, code, message)
	} else {
		result = New(CategoryResolve, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("conflict_id", conflictID)
}

// BackupError creates an error for backup store operations.
func BackupError(code Code, operation string, err error) *ImportError {
	var message, suggestion string

	switch code {
	case CodeBackupWrite:
		message = fmt.Sprintf("failed to write backup during %s", operation)
		suggestion = "check that the backup database is writable; do not commit the import without a snapshot"
	case CodeBackupRead:
		message = fmt.Sprintf("failed to read backup during %s", operation)
		suggestion = "check that the backup database is readable"
	case CodeBackupMissing:
		message = "no backup snapshot exists"
		suggestion = "a snapshot is only written when an import is committed"
	default:
		message = fmt.Sprintf("backup error during %s", operation)
		suggestion = "check the backup store and try again"
	}

	var result *ImportError
	if err != nil {
		result = Wrap(err, CategoryBackup, code, message)
	} else {
		result = New(CategoryBackup, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("operation", operation)
}

// ConfigError creates a configuration-related error.
func ConfigError(setting string, value interface{}, err error) *ImportError {
	message := fmt.Sprintf("invalid configuration for '%s': %v", setting, value)

	var result *ImportError
	if err != nil {
		result = Wrap(err, CategoryConfig, CodeInvalidConfig, message)
	} else {
		result = New(CategoryConfig, CodeInvalidConfig, message)
	}

	return result.
		WithSuggestion("check the configuration documentation for valid values").
		WithContext("setting", setting).
		WithContext("value", value)
}

// InternalError creates an error for unexpected failures. The pipeline uses
// this when converting a recovered panic into a hard-failure result.
func InternalError(code Code, operation string, err error) *ImportError {
	message := fmt.Sprintf("unexpected error during %s", operation)

	var result *ImportError
	if err != nil {
		result = Wrap(err, CategoryInternal, code, message)
	} else {
		result = New(CategoryInternal, code, message)
	}

	return result.
		WithSuggestion("this is likely a bug - please report it with the error details").
		WithContext("operation", operation)
}

// IsImportError checks if an error is an ImportError.
func IsImportError(err error) bool {
	_, ok := err.(*ImportError)
	return ok
}

// AsImportError extracts an ImportError from an error chain.
func AsImportError(err error) (*ImportError, bool) {
	var importErr *ImportError
	if errors.As(err, &importErr) {
		return importErr, true
	}
	return nil, false
}

// WrapIfNeeded wraps an error if it's not already an ImportError.
func WrapIfNeeded(err error, category Category, code Code, message string) *ImportError {
	if err == nil {
		return nil
	}

	if importErr, ok := AsImportError(err); ok {
		return importErr
	}

	return Wrap(err, category, code, message)
}
