// Package session owns the console's authenticated session: it resolves the
// identity behind the stored credential, keeps it fresh and exposes the
// capability evaluator derived from its role.
package session

import (
	"errors"

	"github.com/upb/ops-console/internal/auth"
	"github.com/upb/ops-console/models"
)

var (
	ErrAlreadyStarted = errors.New("session provider already started")
	ErrClosed         = errors.New("session provider closed")
)

// State is the lifecycle state of a session.
type State uint8

const (
	StateUnresolved State = iota
	StateLoading
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent view of the provider at one instant. User is nil
// unless State is StateAuthenticated.
type Snapshot struct {
	User    *models.Identity
	Loading bool
	State   State
}

// Role returns the snapshot's role, auth.RoleNone unless authenticated. A
// Snapshot is a RoleSource frozen at the instant it was taken.
func (s Snapshot) Role() auth.Role {
	if s.State != StateAuthenticated || s.User == nil {
		return auth.RoleNone
	}
	return s.User.Role
}
