package models

import (
	"errors"
	"fmt"
)

// Error codes used in API responses and internal error handling.
const (
	ErrCodeFetch           = "FETCH_FAILED"
	ErrCodeParseDefaulted  = "PARSE_DEFAULTED"
	ErrCodeWrite           = "WRITE_FAILED"
	ErrCodeInvalidInput    = "INVALID_INPUT"
	ErrCodeStrictViolation = "STRICT_VIOLATION"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ExportError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ExportError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *ExportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// NewExportError creates a new ExportError.
func NewExportError(code, message string, err error) *ExportError {
	return &ExportError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
// Messages of wrapped ExportErrors are appended; other causes are not
// exposed.
func (e *ExportError) ToDetail() *ErrorDetail {
	msg := e.Message
	var inner *ExportError
	if errors.As(e.Err, &inner) {
		msg += ": " + inner.ToDetail().Message
	}
	return &ErrorDetail{Code: e.Code, Message: msg}
}
