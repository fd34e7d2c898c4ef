package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents common error identifiers reused across the console.
type ErrorCode string

const (
	ErrValidation   ErrorCode = "validation_error"
	ErrConflict     ErrorCode = "conflict"
	ErrNotFound     ErrorCode = "not_found"
	ErrUnauthorized ErrorCode = "unauthorized"
	ErrForbidden    ErrorCode = "forbidden"
	ErrHTTP         ErrorCode = "http_error"
	ErrTransport    ErrorCode = "transport_error"
	ErrDecode       ErrorCode = "decode_error"
	ErrCancelled    ErrorCode = "cancelled"
	ErrInternal     ErrorCode = "internal_error"
)

// DefaultHTTPMessage is shown when a backend failure carries no readable message.
const DefaultHTTPMessage = "something went wrong, please try again"

// AppError carries additional metadata beyond a regular error.
type AppError struct {
	err        error
	message    string
	code       ErrorCode
	httpStatus int
	fields     map[string]string
}

// New creates a new AppError with supplied details.
func New(message string, status int, code ErrorCode, err error) *AppError {
	return &AppError{
		err:        err,
		message:    message,
		httpStatus: status,
		code:       code,
	}
}

func (e *AppError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}
	return e.message
}

func (e *AppError) Unwrap() error {
	return e.err
}

// Message returns a safe error message for the view layer.
func (e *AppError) Message() string {
	return e.message
}

// StatusCode returns the HTTP status associated with this error.
func (e *AppError) StatusCode() int {
	return e.httpStatus
}

// Code returns the application level error code.
func (e *AppError) Code() ErrorCode {
	return e.code
}

// WithFields attaches field-level errors to the AppError.
func (e *AppError) WithFields(fields map[string]string) *AppError {
	copy := *e
	copy.fields = fields
	return &copy
}

// Fields returns any field-level errors recorded on the AppError.
func (e *AppError) Fields() map[string]string {
	return e.fields
}

// Is reports whether err is an AppError carrying code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.code == code
	}
	return false
}

// As extracts the AppError from err, if any.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Wrap converts a standard error into an AppError if needed.
func Wrap(err error, message string, status int, code ErrorCode) *AppError {
	if err == nil {
		return nil
	}
	if appErr := new(AppError); errors.As(err, &appErr) {
		return appErr
	}
	return New(message, status, code, err)
}

// Validation builds a local validation failure with optional field messages.
func Validation(message string, fields map[string]string) *AppError {
	return New(message, http.StatusUnprocessableEntity, ErrValidation, nil).WithFields(fields)
}

// Unauthorized marks a missing or unusable session.
func Unauthorized(message string, err error) *AppError {
	return New(message, http.StatusUnauthorized, ErrUnauthorized, err)
}

// HTTPStatus wraps a non-2xx backend answer. Empty messages fall back to DefaultHTTPMessage.
func HTTPStatus(status int, message string) *AppError {
	if message == "" {
		message = DefaultHTTPMessage
	}
	return New(message, status, ErrHTTP, fmt.Errorf("backend answered %d", status))
}

// Transport wraps a failure that prevented any backend answer.
func Transport(err error) *AppError {
	return New("could not reach the server", http.StatusBadGateway, ErrTransport, err)
}

// Decode wraps a 2xx payload whose shape did not match the expected schema.
func Decode(what string, err error) *AppError {
	return New(fmt.Sprintf("unexpected %s payload", what), http.StatusBadGateway, ErrDecode, err)
}

// Forbidden marks an action the session's role may not perform.
func Forbidden(message string) *AppError {
	return New(message, http.StatusForbidden, ErrForbidden, nil)
}

// Cancelled marks work abandoned because its owner went away.
func Cancelled(err error) *AppError {
	return New("the request was cancelled", http.StatusRequestTimeout, ErrCancelled, err)
}

// NotFound marks a missing entity, using err's text as the message.
func NotFound(err error) *AppError {
	return New(err.Error(), http.StatusNotFound, ErrNotFound, err)
}
