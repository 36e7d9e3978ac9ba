package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified error type returned by delivery operations.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable is false for every delivery code; kept so callers can
	// treat AppError uniformly with other error sources.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the endpoint status code, 0 when no response was received.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Category returns the taxonomy class of the error.
func (e *AppError) Category() Category { return CategoryOf(e.Code) }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// --- Constructors ---

// MissingClientCode is returned when no tenant client code is configured.
func MissingClientCode() *AppError {
	return &AppError{
		Code:    ErrCodeMissingClientCode,
		Message: "Missing client code configuration.",
	}
}

// NotOptedIn is returned when the privacy status does not permit requests.
func NotOptedIn(status string) *AppError {
	return &AppError{
		Code:    ErrCodeNotOptedIn,
		Message: fmt.Sprintf("Privacy status is not opted in (%s).", status),
		Details: map[string]any{"privacy_status": status},
	}
}

// PreviewMode is returned while preview mode blocks delivery requests.
func PreviewMode(reason string) *AppError {
	if reason == "" {
		reason = "Requests are blocked while preview mode is active."
	}
	return &AppError{Code: ErrCodePreviewMode, Message: reason}
}

// EmptyRequest is returned when an operation had nothing to send.
func EmptyRequest(operation string) *AppError {
	return &AppError{
		Code:    ErrCodeEmptyRequest,
		Message: fmt.Sprintf("Nothing to send for %s.", operation),
		Details: map[string]any{"operation": operation},
	}
}

// ParseFailure is returned when a response body is not valid JSON.
func ParseFailure(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeParseFailure,
		Message: "Unable to parse the delivery response.",
		Cause:   cause,
	}
}

// ServerError is returned when the endpoint reports a logical error.
func ServerError(message string, status int) *AppError {
	if message == "" {
		message = fmt.Sprintf("Delivery endpoint returned status %d.", status)
	}
	return &AppError{
		Code:       ErrCodeServerError,
		Message:    message,
		HTTPStatus: status,
	}
}

// Timeout is returned when the network call exceeded its timeout.
func Timeout(operation string) *AppError {
	return &AppError{
		Code:    ErrCodeTimeout,
		Message: "The delivery request timed out.",
		Details: map[string]any{"operation": operation},
	}
}

// ConnectionFailed is returned when the endpoint could not be reached.
func ConnectionFailed(service string) *AppError {
	return &AppError{
		Code:    ErrCodeConnectionFailed,
		Message: fmt.Sprintf("Unable to connect to %s.", service),
		Details: map[string]any{"service": service},
	}
}

// InvalidInput creates an AppError for caller input that cannot be used.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code:    ErrCodeInvalidInput,
		Message: fmt.Sprintf("Invalid input: %s", reason),
		Details: details,
	}
}

// Validation creates an AppError for configuration validation failures.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidInput, Message: message}
}

// Internal creates an AppError for an unexpected local failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "An unexpected error occurred.",
		Cause:   cause,
	}
}

// --- Inspection ---

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of err, or "" when err is not an AppError.
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
