package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/upb/ops-console/internal/auth"
)

// User represents a console user. The role column is authoritative: tokens
// only carry the subject, the role is always read from here.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Role      auth.Role `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User instance
func NewUser(email string, role auth.Role) *User {
	now := time.Now()
	return &User{
		ID:        uuid.New(),
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAdmin returns true if the user's role grants the admin section
func (u *User) IsAdmin() bool {
	return auth.Build(u.Role).Can(auth.ViewAdmin)
}

// Identity returns the identity payload served to the session provider
func (u *User) Identity() *Identity {
	return &Identity{
		ID:    u.ID.String(),
		Email: u.Email,
		Role:  u.Role,
	}
}
