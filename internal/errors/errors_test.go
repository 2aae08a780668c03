package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeAlreadyExists, http.StatusConflict},
		{CodeConflict, http.StatusConflict},
		{CodeValidation, http.StatusBadRequest},
		{CodeInvalidState, http.StatusBadRequest},
		{CodeAlreadyPaid, http.StatusBadRequest},
		{CodeInvalidToken, http.StatusBadRequest},
		{CodeTokenExpired, http.StatusBadRequest},
		{CodeAlreadyRegistered, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeInvalidCredentials, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := AlreadyPaid("membership due-1 is already paid")

	assert.True(t, Is(err, ErrAlreadyPaid))
	assert.False(t, Is(err, ErrInvalidState))

	wrapped := fmt.Errorf("pay: %w", err)
	assert.True(t, Is(wrapped, ErrAlreadyPaid))
}

func TestError_WithCauseUnwraps(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Internal("write failed").WithCause(cause)

	assert.Equal(t, "write failed: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestValidationWithDetails(t *testing.T) {
	details := []FieldError{{Field: "email", Message: "is required"}}
	err := ValidationWithDetails("validation failed", details)

	assert.Equal(t, CodeValidation, err.Code)
	assert.Equal(t, details, err.Details)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
}
