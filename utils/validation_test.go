package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/ops-console/internal/auth"
)

type testIdentity struct {
	ID    string    `validate:"required"`
	Email string    `validate:"required,email"`
	Role  auth.Role `validate:"required,role"`
}

type testRoleRequest struct {
	Role string `validate:"required,role"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid struct", func(t *testing.T) {
		s := testIdentity{ID: "u-1", Email: "ops@example.com", Role: auth.RoleOperator}
		assert.NoError(t, ValidateStruct(&s))
	})

	t.Run("missing required field", func(t *testing.T) {
		s := testIdentity{Email: "ops@example.com", Role: auth.RoleOperator}

		err := ValidateStruct(&s)
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
		assert.Contains(t, GetValidationFields(err), "ID")
	})

	t.Run("invalid email", func(t *testing.T) {
		s := testIdentity{ID: "u-1", Email: "invalid-email", Role: auth.RoleOperator}

		err := ValidateStruct(&s)
		require.Error(t, err)
		assert.Contains(t, GetValidationFields(err), "Email")
	})

	t.Run("role outside the role set", func(t *testing.T) {
		s := testIdentity{ID: "u-1", Email: "ops@example.com", Role: auth.Role(42)}

		err := ValidateStruct(&s)
		require.Error(t, err)
		assert.Contains(t, GetValidationFields(err)["Role"], "must be one of")
	})

	t.Run("string role names", func(t *testing.T) {
		assert.NoError(t, ValidateStruct(&testRoleRequest{Role: "ENGINEER"}))

		for _, name := range []string{"engineer", "NONE", "GUEST"} {
			err := ValidateStruct(&testRoleRequest{Role: name})
			require.Error(t, err, name)
			assert.Contains(t, GetValidationFields(err), "Role", name)
		}
	})
}

func TestValidateUUID(t *testing.T) {
	assert.NoError(t, ValidateUUID("123e4567-e89b-12d3-a456-426614174000"))
	assert.Error(t, ValidateUUID("not-a-uuid"))
	assert.Error(t, ValidateUUID(""))
}

func TestValidateViewID(t *testing.T) {
	tests := []struct {
		view    string
		wantErr bool
	}{
		{"dashboard", false},
		{"infrastructure", false},
		{"model-registry", false},
		{"", true},
		{"Admin", true},
		{"../admin", true},
		{"has space", true},
	}

	for _, tt := range tests {
		t.Run(tt.view, func(t *testing.T) {
			err := ValidateViewID(tt.view)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Message: "Test validation error",
		Fields:  map[string]string{"field1": "error1"},
	}

	assert.Equal(t, "Test validation error", err.Error())
}

func TestGetValidationFields(t *testing.T) {
	t.Run("gets fields from validation error", func(t *testing.T) {
		fields := map[string]string{"field1": "error1"}
		err := &ValidationError{Message: "test", Fields: fields}

		assert.Equal(t, fields, GetValidationFields(err))
	})

	t.Run("returns nil for non-validation error", func(t *testing.T) {
		assert.Nil(t, GetValidationFields(assert.AnError))
		assert.False(t, IsValidationError(assert.AnError))
	})
}
