// Package errors defines the storefront's error kinds and their HTTP mapping.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel kinds. Domain errors wrap one of these so callers can branch with
// errors.Is regardless of the message.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrAlreadyExists  = errors.New("resource already exists")
	ErrInvalidInput   = errors.New("invalid input")
	ErrConflict       = errors.New("conflict")
	ErrUnprocessable  = errors.New("unprocessable")
	ErrServiceUnavail = errors.New("service unavailable")
)

type kind struct {
	err    error
	status int
	code   string
}

// kinds is ordered; the first match wins for errors wrapping several.
var kinds = []kind{
	{ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{ErrAlreadyExists, http.StatusConflict, "ALREADY_EXISTS"},
	{ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
	{ErrConflict, http.StatusConflict, "CONFLICT"},
	{ErrUnprocessable, http.StatusUnprocessableEntity, "UNPROCESSABLE"},
	{ErrServiceUnavail, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
}

// AppError carries a machine-readable code and a client-safe message.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

func newKind(sentinel error, message string) *AppError {
	for _, k := range kinds {
		if k.err == sentinel {
			return &AppError{Code: k.code, Message: message, Status: k.status, Err: sentinel}
		}
	}
	panic("errors: unregistered kind " + sentinel.Error())
}

func NotFound(resource, id string) *AppError {
	return newKind(ErrNotFound, fmt.Sprintf("%s with id %s not found", resource, id))
}

func AlreadyExists(resource, field, value string) *AppError {
	return newKind(ErrAlreadyExists, fmt.Sprintf("%s with %s %q already exists", resource, field, value))
}

func InvalidInput(message string) *AppError { return newKind(ErrInvalidInput, message) }

func Conflict(message string) *AppError { return newKind(ErrConflict, message) }

// Unprocessable is for a well-formed request the current state cannot
// satisfy, such as placing an order from an empty cart.
func Unprocessable(message string) *AppError { return newKind(ErrUnprocessable, message) }

// Unavailable reports a dependency that cannot serve the request right now.
func Unavailable(message string) *AppError { return newKind(ErrServiceUnavail, message) }

// Internal hides err behind a generic message; err is kept for logging.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Classify returns the response status, code and client-safe message for
// err. An AppError anywhere in the chain wins. A bare sentinel yields its
// kind with a generic message, except invalid input, whose text is shown.
// Anything else is an internal error.
func Classify(err error) (status int, code, message string) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status, appErr.Code, appErr.Message
	}
	for _, k := range kinds {
		if !errors.Is(err, k.err) {
			continue
		}
		message = k.err.Error()
		if k.err == ErrInvalidInput {
			message = err.Error()
		}
		return k.status, k.code, message
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
}

// HTTPStatus returns the response status for err.
func HTTPStatus(err error) int {
	status, _, _ := Classify(err)
	return status
}
