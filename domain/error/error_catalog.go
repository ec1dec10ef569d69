package error

import (
	"errors"
	"fmt"
	"net/http"
)

// ResultCode is the machine-checkable outcome carried by every response envelope.
type ResultCode string

const (
	CodeSuccess       ResultCode = "SUCCESS"
	CodeNotFound      ResultCode = "NOT_FOUND"
	CodeCreateFailed  ResultCode = "CREATE_FAILED"
	CodeUpdateFailed  ResultCode = "UPDATE_FAILED"
	CodeDeleteFailed  ResultCode = "DELETE_FAILED"
	CodeQueryFailed   ResultCode = "QUERY_FAILED"
	CodeInvalidParams ResultCode = "INVALID_PARAMS"
	CodeUnauthorized  ResultCode = "UNAUTHORIZED"

	// Transport-level codes, never produced by the use cases.
	CodeRateLimited      ResultCode = "RATE_LIMITED"
	CodeMethodNotAllowed ResultCode = "METHOD_NOT_ALLOWED"
	CodeInternalError    ResultCode = "INTERNAL_ERROR"
)

// AppError represents a structured application error
type AppError struct {
	Code    ResultCode `json:"code"`
	Message string     `json:"message"`
	Details string     `json:"details,omitempty"`
	Cause   error      `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new application error
func NewAppError(code ResultCode, message string, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// Write errors

func ErrCreateFailed(details string, cause error) *AppError {
	return NewAppError(CodeCreateFailed, "Create failed", details, cause)
}

func ErrUpdateFailed(details string, cause error) *AppError {
	return NewAppError(CodeUpdateFailed, "Update failed", details, cause)
}

func ErrDeleteFailed(details string, cause error) *AppError {
	return NewAppError(CodeDeleteFailed, "Delete failed", details, cause)
}

// Read and request errors

func ErrQueryFailed(details string, cause error) *AppError {
	return NewAppError(CodeQueryFailed, "Query failed", details, cause)
}

func ErrInvalidParams(details string) *AppError {
	return NewAppError(CodeInvalidParams, "Invalid parameters", details, nil)
}

func ErrUnauthorized(details string) *AppError {
	return NewAppError(CodeUnauthorized, "Authenticated actor required", details, nil)
}

// CodeOf extracts the result code from err. Errors that carry none map to
// fallback.
func CodeOf(err error, fallback ResultCode) ResultCode {
	if err == nil {
		return CodeSuccess
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return fallback
}

// HTTPStatus maps a result code to the HTTP status used by the REST transport.
func HTTPStatus(code ResultCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidParams:
		return http.StatusUnprocessableEntity
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case CodeCreateFailed, CodeUpdateFailed, CodeDeleteFailed, CodeQueryFailed:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}
