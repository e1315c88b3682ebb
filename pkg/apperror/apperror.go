// Package apperror defines the structured error type returned by every domain
// operation. Handlers never write transport responses from domain code; they
// return an *Error and the request boundary maps it onto the error envelope.
package apperror

import (
	"errors"
	"net/http"
)

// Error carries an HTTP status code alongside a client-safe message.
type Error struct {
	StatusCode int
	Message    string
	Errors     []string
}

func (e *Error) Error() string {
	return e.Message
}

// New creates an error with an explicit status code.
func New(statusCode int, message string, details ...string) *Error {
	return &Error{
		StatusCode: statusCode,
		Message:    message,
		Errors:     details,
	}
}

// BadRequest signals malformed or missing input (400).
func BadRequest(message string, details ...string) *Error {
	return New(http.StatusBadRequest, message, details...)
}

// Unauthorized signals bad credentials or a bad/expired/missing token (401).
func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

// NotFound signals an unresolvable identifier (404).
func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

// Conflict signals a duplicate username or email (409).
func Conflict(message string) *Error {
	return New(http.StatusConflict, message)
}

// Internal signals a hashing, signing or storage failure (500).
func Internal(message string) *Error {
	return New(http.StatusInternalServerError, message)
}

// From normalizes any error to an *Error. Unknown errors become 500s with a
// generic message so internal details never reach the client.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("something went wrong")
}
