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

// ErrNotEditable indicates a mutation attempted on a request outside the draft/submitted states.
var ErrNotEditable = errors.New("request can no longer be modified")

// ErrNotDeletable indicates a delete attempted on a request that is not a draft.
var ErrNotDeletable = errors.New("only draft requests can be deleted")

// ErrInvalidTransition indicates the target status is not reachable from the current status.
var ErrInvalidTransition = errors.New("status transition not allowed")

// ErrForbidden indicates the principal may not perform the action. Wrapped errors carry the reason.
var ErrForbidden = errors.New("forbidden")

// ErrConflict indicates the request was modified concurrently (version mismatch).
var ErrConflict = errors.New("request was modified concurrently")

// ErrUnauthorized indicates no usable principal was supplied.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInternal is returned in place of infrastructure details the caller should not see.
var ErrInternal = errors.New("internal server error")

// AppError wraps an infrastructure failure with a status code and a safe message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
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

// HTTPStatus maps an error kind to the HTTP status the API layer responds with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidTransition):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrNotEditable), errors.Is(err, ErrNotDeletable):
		return http.StatusUnprocessableEntity
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the text safe to expose in an API payload.
// Domain errors are returned as-is; anything else collapses to ErrInternal.
func PublicMessage(err error) string {
	if HTTPStatus(err) == http.StatusInternalServerError {
		return ErrInternal.Error()
	}
	return err.Error()
}
