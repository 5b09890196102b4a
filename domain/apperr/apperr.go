// Package apperr provides the application error taxonomy.
// Errors are plain value types carrying an HTTP status, a stable
// machine-readable code, and optional structured details.
package apperr

import (
	"errors"
	"fmt"
)

// Stable error codes surfaced to clients.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeAuthentication  = "AUTHENTICATION_ERROR"
	CodeTokenExpired    = "TOKEN_EXPIRED"
	CodeAuthorization   = "AUTHORIZATION_ERROR"
	CodeNotFound        = "NOT_FOUND_ERROR"
	CodeConflict        = "CONFLICT_ERROR"
	CodeRateLimit       = "RATE_LIMIT_ERROR"
	CodeFileUpload      = "FILE_UPLOAD_ERROR"
	CodePayment         = "PAYMENT_ERROR"
	CodeDatabase        = "DATABASE_ERROR"
	CodeDatabaseConfig  = "DATABASE_CONFIG_ERROR"
	CodeDuplicate       = "DUPLICATE_RESOURCE"
	CodeInvalidRef      = "INVALID_REFERENCE"
	CodeMissingField    = "MISSING_REQUIRED_FIELD"
	CodeExternalService = "EXTERNAL_SERVICE_ERROR"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)

// FieldError describes a single field-level validation failure.
type FieldError struct {
	Field         string `json:"field"`
	Message       string `json:"message"`
	RejectedValue any    `json:"rejectedValue,omitempty"`
}

// Error is a classified application failure.
// Operational errors are expected, client-facing rejections; everything
// else is a system fault and gets sanitized in production.
type Error struct {
	Message     string
	Code        string
	Status      int
	Operational bool
	Details     []FieldError

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.cause
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *Error) WithCause(err error) *Error {
	dup := *e
	dup.cause = err
	return &dup
}

// WithDetails returns a copy of the error carrying field details.
func (e *Error) WithDetails(details []FieldError) *Error {
	dup := *e
	dup.Details = details
	return &dup
}

// New creates an error with an explicit status and code.
func New(status int, code, message string) *Error {
	return &Error{
		Message:     message,
		Code:        code,
		Status:      status,
		Operational: status < 500,
	}
}

// Validation creates a 400 validation error.
func Validation(message string, details []FieldError) *Error {
	return &Error{
		Message:     message,
		Code:        CodeValidation,
		Status:      400,
		Operational: true,
		Details:     details,
	}
}

// Authentication creates a 401 authentication error.
func Authentication(message string) *Error {
	if message == "" {
		message = "Authentication required"
	}
	return &Error{Message: message, Code: CodeAuthentication, Status: 401, Operational: true}
}

// TokenExpired creates a 401 error with the TOKEN_EXPIRED code.
func TokenExpired() *Error {
	return &Error{Message: "Token expired", Code: CodeTokenExpired, Status: 401, Operational: true}
}

// Authorization creates a 403 authorization error.
func Authorization(message string) *Error {
	if message == "" {
		message = "Access denied"
	}
	return &Error{Message: message, Code: CodeAuthorization, Status: 403, Operational: true}
}

// NotFound creates a 404 error for the named resource.
func NotFound(resource string) *Error {
	return &Error{
		Message:     fmt.Sprintf("%s not found", resource),
		Code:        CodeNotFound,
		Status:      404,
		Operational: true,
	}
}

// Conflict creates a 409 conflict error.
func Conflict(message string) *Error {
	return &Error{Message: message, Code: CodeConflict, Status: 409, Operational: true}
}

// RateLimit creates a 429 throttling error.
func RateLimit(message string) *Error {
	return &Error{Message: message, Code: CodeRateLimit, Status: 429, Operational: true}
}

// FileUpload creates a 400 file upload error.
func FileUpload(message string) *Error {
	return &Error{Message: message, Code: CodeFileUpload, Status: 400, Operational: true}
}

// Payment creates a 402 payment error.
func Payment(message string) *Error {
	return &Error{Message: message, Code: CodePayment, Status: 402, Operational: true}
}

// Database creates a 500 database fault.
func Database(message string) *Error {
	if message == "" {
		message = "Database error"
	}
	return &Error{Message: message, Code: CodeDatabase, Status: 500, Operational: false}
}

// ExternalService creates a 502 upstream dependency error.
func ExternalService(message string) *Error {
	if message == "" {
		message = "External service error"
	}
	return &Error{Message: message, Code: CodeExternalService, Status: 502, Operational: true}
}

// Internal creates a 500 unclassified fault.
func Internal(message string) *Error {
	if message == "" {
		message = "Internal server error"
	}
	return &Error{Message: message, Code: CodeInternal, Status: 500, Operational: false}
}

// From extracts an *Error from err. Raw storage driver errors carrying
// a SQLSTATE code map through the fixed lookup table; anything else is
// an internal fault.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if code, ok := ExtractSQLState(err.Error()); ok {
		return FromSQLState(code).WithCause(err)
	}
	return Internal("Internal server error").WithCause(err)
}
