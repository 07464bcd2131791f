package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the caller is authenticated but may not act on the resource.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthorized indicates missing or rejected credentials, either the caller's
// or the provider access token of a linked account. Never retried.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInternal indicates an unexpected failure.
var ErrInternal = errors.New("internal error")

// ErrTransientProvider indicates a network, timeout or rate-limit failure from the
// aggregation provider. Safe to retry with the same cursor.
var ErrTransientProvider = errors.New("transient provider error")

// ErrStorageConflict indicates a failed write, including a cursor compare-and-set
// miss. The cursor is left at its last committed value.
var ErrStorageConflict = errors.New("storage conflict")

// ErrAlreadyRunning rejects a sync trigger while another run holds the linked account.
var ErrAlreadyRunning = errors.New("sync already running")

// ErrShuttingDown rejects work submitted after the service started closing.
var ErrShuttingDown = errors.New("service is shutting down")

// AppError carries an HTTP status code alongside a wrapped sentinel or cause.
type AppError struct {
	Code    int
	Message string
	Err     error
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

// NewAppError builds an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError returns an AppError wrapping ErrNotFound for the named resource.
func NewNotFoundError(resource string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: resource + " not found", Err: ErrNotFound}
}

// NewValidationError returns an AppError wrapping ErrValidation.
func NewValidationError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message, Err: ErrValidation}
}
