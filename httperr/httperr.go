package httperr

import (
	"errors"
	"net/http"
)

// Error carries a client-facing status and message through the pipeline.
// Anything that is not an *Error is rendered as a generic internal error.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

// ErrTimeout marks an upstream call that exceeded its deadline, so the
// boundary can report it separately from other upstream failures.
var ErrTimeout = errors.New("upstream timeout")
