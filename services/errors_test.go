package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDomainError(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeNotFound, "resource not found", baseErr)

	assert.Equal(t, ErrorTypeNotFound, domainErr.Type)
	assert.Equal(t, "resource not found", domainErr.Message)
	assert.Equal(t, baseErr, domainErr.Err)
	assert.NotNil(t, domainErr.Details)
}

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *DomainError
		wantMsg string
	}{
		{
			name: "error with wrapped error",
			err: &DomainError{
				Type:    ErrorTypeSessionFetch,
				Message: "identity endpoint returned 401",
				Err:     errors.New("unauthorized"),
			},
			wantMsg: "session_fetch: identity endpoint returned 401 (unauthorized)",
		},
		{
			name: "error without wrapped error",
			err: &DomainError{
				Type:    ErrorTypeValidation,
				Message: "invalid input",
			},
			wantMsg: "validation: invalid input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "same error type",
			err:    WrapSessionFetch("timeout", errors.New("deadline")),
			target: ErrSessionFetch,
			want:   true,
		},
		{
			name:   "wrapped in fmt error",
			err:    fmt.Errorf("revalidate: %w", WrapSessionFetch("status 500", nil)),
			target: ErrSessionFetch,
			want:   true,
		},
		{
			name:   "different error type",
			err:    NewDomainError(ErrorTypeValidation, "validation", nil),
			target: ErrSessionFetch,
			want:   false,
		},
		{
			name:   "not a domain error",
			err:    NewDomainError(ErrorTypeNotFound, "not found", nil),
			target: errors.New("regular error"),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestDomainError_WithDetail(t *testing.T) {
	err := NewDomainError(ErrorTypeForbidden, "view hidden", nil)

	err.WithDetail("view", "admin").WithDetail("role", "OPERATOR")

	assert.Equal(t, "admin", err.Details["view"])
	assert.Equal(t, "OPERATOR", err.Details["role"])
}

func TestErrorTypeHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"not found", ErrViewNotFound, IsNotFoundError, true},
		{"wrapped not found", fmt.Errorf("lookup: %w", ErrUserNotFound), IsNotFoundError, true},
		{"validation", ErrInvalidIdentity, IsValidationError, true},
		{"unauthorized", NewDomainError(ErrorTypeUnauthorized, "token rejected", nil), IsUnauthorizedError, true},
		{"forbidden", NewDomainError(ErrorTypeForbidden, "view hidden", nil), IsForbiddenError, true},
		{"configuration", ErrInvalidStoredRole, IsConfigurationError, true},
		{"internal", ErrDatabaseError, IsInternalError, true},
		{"external", ErrIdentityUnavailable, IsExternalError, true},
		{"session fetch", ErrSessionFetch, IsSessionFetchError, true},
		{"mismatch", ErrViewNotFound, IsUnauthorizedError, false},
		{"regular error", errors.New("regular"), IsInternalError, false},
		{"nil error", nil, IsNotFoundError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}

func TestGetErrorDetails(t *testing.T) {
	err := NewDomainError(ErrorTypeValidation, "bad payload", nil).WithDetail("field", "email")
	assert.Equal(t, "email", GetErrorDetails(fmt.Errorf("wrap: %w", err))["field"])
	assert.Nil(t, GetErrorDetails(errors.New("plain")))
}
