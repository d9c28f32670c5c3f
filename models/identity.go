package models

import "github.com/upb/ops-console/internal/auth"

// Identity is the authenticated identity of a console session, as served by
// the identity endpoint and held by the session provider.
type Identity struct {
	ID    string    `json:"id" validate:"required"`
	Email string    `json:"email" validate:"required,email"`
	Role  auth.Role `json:"role" validate:"required,role"`
}
