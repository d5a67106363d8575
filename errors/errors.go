package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError carries the HTTP status for the handler layer alongside the
// operation that produced the error. Op is for logs, Message for clients.
type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
	Op      string `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// InvalidOption reports an unrecognized format, quality or compression level.
func InvalidOption(op string, err error, message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

// InvalidDuration reports a non-positive duration from the probe; the input
// file is treated as corrupt.
func InvalidDuration(op string, err error, message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

// ProbeFailed reports that the prober could not read the input file.
func ProbeFailed(op string, err error, message string) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

// ToolFailed reports a nonzero exit from an external tool. Message holds a
// truncated diagnostic, never a stack trace.
func ToolFailed(op string, err error, message string) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func InvalidInput(op string, err error, message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func NotFound(op string, err error, message string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func Internal(op string, err error, message string) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func IsNotFound(err error) bool {
	return hasCode(err, http.StatusNotFound)
}

func IsInvalidOption(err error) bool {
	return hasCode(err, http.StatusBadRequest)
}

func hasCode(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
