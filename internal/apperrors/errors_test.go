package apperrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/SscSPs/budget_request_app/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: fmt.Errorf("%w: title is required", apperrors.ErrValidation), want: http.StatusBadRequest},
		{name: "invalid transition", err: apperrors.ErrInvalidTransition, want: http.StatusBadRequest},
		{name: "forbidden with reason", err: fmt.Errorf("%w: not your department", apperrors.ErrForbidden), want: http.StatusForbidden},
		{name: "not found", err: apperrors.ErrNotFound, want: http.StatusNotFound},
		{name: "conflict", err: apperrors.ErrConflict, want: http.StatusConflict},
		{name: "not editable", err: apperrors.ErrNotEditable, want: http.StatusUnprocessableEntity},
		{name: "not deletable", err: apperrors.ErrNotDeletable, want: http.StatusUnprocessableEntity},
		{name: "unauthorized", err: apperrors.ErrUnauthorized, want: http.StatusUnauthorized},
		{name: "app error code", err: apperrors.NewAppError(http.StatusServiceUnavailable, "db down", errors.New("dial")), want: http.StatusServiceUnavailable},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperrors.HTTPStatus(tt.err))
		})
	}
}

func TestPublicMessage_HidesInternalErrors(t *testing.T) {
	assert.Equal(t, apperrors.ErrInternal.Error(), apperrors.PublicMessage(errors.New("pq: relation does not exist")))
	assert.Equal(t, "forbidden: read-only role", apperrors.PublicMessage(fmt.Errorf("%w: read-only role", apperrors.ErrForbidden)))
}

func TestAppError_Unwrap(t *testing.T) {
	inner := apperrors.ErrNotFound
	err := apperrors.NewAppError(http.StatusNotFound, "lookup failed", inner)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, "lookup failed: resource not found", err.Error())
}
