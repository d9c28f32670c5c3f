package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/ops-console/internal/auth"
)

func TestNewUser(t *testing.T) {
	user := NewUser("test@example.com", auth.RoleEngineer)

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, auth.RoleEngineer, user.Role)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
}

func TestUser_TableName(t *testing.T) {
	user := User{}
	assert.Equal(t, "users", user.TableName())
}

func TestUser_IsAdmin(t *testing.T) {
	tests := []struct {
		role auth.Role
		want bool
	}{
		{auth.RoleAdmin, true},
		{auth.RoleEngineer, false},
		{auth.RoleOperator, false},
		{auth.RoleDataScientist, false},
		{auth.RoleNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			user := &User{Role: tt.role}
			assert.Equal(t, tt.want, user.IsAdmin())
		})
	}
}

func TestUser_Identity(t *testing.T) {
	user := NewUser("ops@example.com", auth.RoleOperator)

	data, err := json.Marshal(user.Identity())
	require.NoError(t, err)

	assert.JSONEq(t, `{"id":"`+user.ID.String()+`","email":"ops@example.com","role":"OPERATOR"}`, string(data))
}

func TestIdentity_JSONRejectsUnknownRole(t *testing.T) {
	var identity Identity
	err := json.Unmarshal([]byte(`{"id":"1","email":"a@b.co","role":"GUEST"}`), &identity)
	assert.ErrorIs(t, err, auth.ErrInvalidRole)
}
