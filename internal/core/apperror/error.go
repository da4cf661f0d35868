// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes following domain-driven design
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeTimeout  = "TIMEOUT_ERROR"

	// CodeCorruptStore means the persisted reference store exists but failed to
	// parse or validate. Fatal for the allocator: it must refuse to allocate
	// rather than fall back to an empty store and reissue numbers.
	CodeCorruptStore = "CORRUPT_STORE"

	// CodePersistence is a transient failure during a durable save.
	// The counter is guaranteed unchanged; callers may retry.
	CodePersistence = "PERSISTENCE_ERROR"

	// CodeLockTimeout means the allocation lock could not be acquired in time.
	// Same retry contract as CodePersistence.
	CodeLockTimeout = "LOCK_TIMEOUT"

	// Validation errors (400)
	CodeValidation      = "VALIDATION_ERROR"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeInvalidBillType = "INVALID_BILL_TYPE"

	// AI / tool layer (502)
	CodeAIService     = "AI_SERVICE_ERROR"
	CodeToolExecution = "TOOL_EXECUTION_ERROR"

	// Authorization errors (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict = "CONFLICT"
)

// AppError is the standard error type for the bot core.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, bill type, ...)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewInvalidBillType creates an error for a bill type outside the closed set (400)
func NewInvalidBillType(value string) *AppError {
	return &AppError{
		Code:       CodeInvalidBillType,
		Message:    "Invalid bill type. Valid types are: hr, s, hres, sres, hjres, sjres, hconres, sconres",
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"value": value},
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewCorruptStore creates a fatal corrupt-store error (500).
// Surfaced to the operator for manual recovery; never auto-reset.
func NewCorruptStore(path string, err error) *AppError {
	return &AppError{
		Code:       CodeCorruptStore,
		Message:    "Reference store is corrupt and requires manual recovery",
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"path": path},
		Err:        err,
	}
}

// NewPersistence creates a transient persistence error (503)
func NewPersistence(err error) *AppError {
	return &AppError{
		Code:       CodePersistence,
		Message:    "Failed to durably persist state; no number was issued",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// NewLockTimeout creates a lock acquisition timeout error (503)
func NewLockTimeout(err error) *AppError {
	return &AppError{
		Code:       CodeLockTimeout,
		Message:    "Timed out waiting for the allocation lock; please retry",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// NewAIService creates an AI provider error (502)
func NewAIService(err error) *AppError {
	return &AppError{
		Code:       CodeAIService,
		Message:    "AI service request failed",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewToolExecution creates a tool execution error (502)
func NewToolExecution(tool string, err error) *AppError {
	return &AppError{
		Code:       CodeToolExecution,
		Message:    "Tool execution failed",
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"tool": tool},
		Err:        err,
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsCode checks whether err carries the given application code.
func IsCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound)
}

// IsCorruptStore checks if error is CodeCorruptStore
func IsCorruptStore(err error) bool {
	return IsCode(err, CodeCorruptStore)
}

// IsRetryable reports whether the operation may be retried by the caller.
func IsRetryable(err error) bool {
	return IsCode(err, CodePersistence) || IsCode(err, CodeLockTimeout)
}
