package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRole is matched by every *InvalidRoleError.
	ErrInvalidRole = errors.New("invalid role")

	// ErrUnknownView is matched by every *UnknownViewError.
	ErrUnknownView = errors.New("unknown view")

	// ErrUnknownCapability is returned when a wire token is outside the catalog.
	ErrUnknownCapability = errors.New("unknown capability")
)

// InvalidRoleError reports a role value outside the closed role set.
type InvalidRoleError struct {
	Value string
}

func (e *InvalidRoleError) Error() string {
	return fmt.Sprintf("invalid role %q", e.Value)
}

// Is implements errors.Is
func (e *InvalidRoleError) Is(target error) bool {
	return target == ErrInvalidRole
}

// UnknownViewError reports a view identifier that was never registered in a
// view policy. It always means a policy entry is missing.
type UnknownViewError struct {
	View string
}

func (e *UnknownViewError) Error() string {
	return fmt.Sprintf("unknown view %q: not registered in view policy", e.View)
}

// Is implements errors.Is
func (e *UnknownViewError) Is(target error) bool {
	return target == ErrUnknownView
}
