package errors

import (
	goerrors "errors"
	"net/http"
)

// Error carries a stable message plus the HTTP status it maps to, so
// handlers can surface failures without re-deriving status codes.
type Error struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *Error) Error() string {
	return e.Message
}

// New returns an Error with the given message and status.
func New(message string, status int) *Error {
	return &Error{Message: message, Status: status}
}

// Failure taxonomy. Services return these (or New with the matching
// status); handlers pass them straight to response.JSON.
var (
	ErrUnauthenticated     = New("unauthenticated", http.StatusUnauthorized)
	ErrForbidden           = New("forbidden", http.StatusForbidden)
	ErrNotFound            = New("not found", http.StatusNotFound)
	ErrBadRequest          = New("invalid request", http.StatusBadRequest)
	ErrConflict            = New("conflict", http.StatusConflict)
	ErrUnavailable         = New("service temporarily unavailable", http.StatusServiceUnavailable)
	ErrInternalServerError = New("internal server error", http.StatusInternalServerError)
)

// ValidationError returns a 400 with a caller-supplied message.
func ValidationError(message string) *Error {
	return New(message, http.StatusBadRequest)
}

// Forbidden returns a 403 with a caller-supplied message.
func Forbidden(message string) *Error {
	return New(message, http.StatusForbidden)
}

// NotFound returns a 404 with a caller-supplied message.
func NotFound(message string) *Error {
	return New(message, http.StatusNotFound)
}

// Status extracts the HTTP status from err, defaulting to 500 for
// errors that did not originate in this package.
func Status(err error) int {
	var e *Error
	if goerrors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}

// Is reports whether err matches target, following wrapped causes.
func Is(err, target error) bool {
	return goerrors.Is(err, target)
}

// As delegates to the standard library so callers need one import.
func As(err error, target interface{}) bool {
	return goerrors.As(err, target)
}
