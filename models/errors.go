package models

import (
	"errors"
	"fmt"
)

// Error codes used in API responses and internal error handling.
const (
	ErrCodeMissingInput        = "MISSING_INPUT"
	ErrCodeMalformedWebsite    = "MALFORMED_WEBSITE"
	ErrCodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeRateLimited         = "RATE_LIMITED"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// Operator-facing messages for the lookup failure codes.
const (
	MsgMissingInput        = "Please select a location and enter a search query."
	MsgMalformedWebsite    = "Please enter a valid website URL or hostname."
	MsgProviderUnavailable = "Failed to fetch results. Please try again."
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// LookupError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type LookupError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *LookupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// NewLookupError creates a new LookupError.
func NewLookupError(code, message string, err error) *LookupError {
	return &LookupError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *LookupError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}

// AsLookupError extracts a LookupError from err's chain. Errors that carry no
// code are reported as ErrCodeInternal.
func AsLookupError(err error) *LookupError {
	var le *LookupError
	if errors.As(err, &le) {
		return le
	}
	return NewLookupError(ErrCodeInternal, err.Error(), err)
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code string) bool {
	var le *LookupError
	return errors.As(err, &le) && le.Code == code
}
