// Package apperrors defines the application error taxonomy. Every failure a
// collaborator can produce is translated into one of these codes at the service
// boundary; nothing below that boundary leaks its native error vocabulary.
package apperrors

import (
	"errors"
	"fmt"
)

// Code categorizes an application error.
type Code string

const (
	// CodeNotFound indicates a resource was not found, or the caller does not own it.
	CodeNotFound Code = "not_found"
	// CodeConflict indicates a conflict with existing data (e.g., unique constraint violation).
	CodeConflict Code = "conflict"
	// CodeValidation indicates invalid input data.
	CodeValidation Code = "validation"
	// CodeUnauthorized indicates missing or invalid credentials.
	CodeUnauthorized Code = "unauthorized"
	// CodeSubmissionFailed indicates the executor rejected or was unreachable at submit time.
	CodeSubmissionFailed Code = "submission_failed"
	// CodeRetentionExpired indicates the executor no longer knows a non-terminal job.
	CodeRetentionExpired Code = "retention_expired"
	// CodeStoreUnavailable indicates the persistence layer is down; no partial state was committed.
	CodeStoreUnavailable Code = "store_unavailable"
	// CodeRateLimited indicates the caller exceeded its request budget.
	CodeRateLimited Code = "rate_limited"
	// CodeUpstream indicates a completion provider returned an error.
	CodeUpstream Code = "upstream_error"
	// CodeInternal indicates an internal server error.
	CodeInternal Code = "internal"
)

// Error is a structured application error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type Error struct {
	// Code categorizes the error type.
	Code Code
	// Message is a human-readable error message.
	Message string
	// Cause is the underlying error that caused this error (optional).
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an error with the given code and formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a new NotFound error.
func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

// NotFoundf creates a new NotFound error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return Newf(CodeNotFound, format, args...)
}

// Conflict creates a new Conflict error.
func Conflict(message string) *Error {
	return New(CodeConflict, message)
}

// Validation creates a new Validation error.
func Validation(message string) *Error {
	return New(CodeValidation, message)
}

// Validationf creates a new Validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return Newf(CodeValidation, format, args...)
}

// Unauthorized creates a new Unauthorized error.
func Unauthorized(message string) *Error {
	return New(CodeUnauthorized, message)
}

// Internal creates a new Internal error.
func Internal(message string) *Error {
	return New(CodeInternal, message)
}

// Wrap wraps an existing error with the given code and message, preserving the cause.
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Cause: err}
}

// Wrapf wraps an existing error with the given code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// isCode checks if an error carries a specific code.
func isCode(err error, code Code) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool {
	return isCode(err, CodeNotFound)
}

// IsConflict checks if an error is a Conflict error.
func IsConflict(err error) bool {
	return isCode(err, CodeConflict)
}

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool {
	return isCode(err, CodeValidation)
}

// IsUnauthorized checks if an error is an Unauthorized error.
func IsUnauthorized(err error) bool {
	return isCode(err, CodeUnauthorized)
}

// IsSubmissionFailed checks if an error is a SubmissionFailed error.
func IsSubmissionFailed(err error) bool {
	return isCode(err, CodeSubmissionFailed)
}

// IsRetentionExpired checks if an error is a RetentionExpired error.
func IsRetentionExpired(err error) bool {
	return isCode(err, CodeRetentionExpired)
}

// IsStoreUnavailable checks if an error is a StoreUnavailable error.
func IsStoreUnavailable(err error) bool {
	return isCode(err, CodeStoreUnavailable)
}

// IsRateLimited checks if an error is a RateLimited error.
func IsRateLimited(err error) bool {
	return isCode(err, CodeRateLimited)
}

// GetCode returns the Code from an error, or empty string if not an application error.
func GetCode(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
