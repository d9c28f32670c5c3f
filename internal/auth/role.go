package auth

import "fmt"

// Role is one of the closed set of console roles. The zero value, RoleNone,
// stands for "no role": an unresolved or unauthenticated session.
type Role uint8

const (
	RoleNone Role = iota
	RoleAdmin
	RoleEngineer
	RoleOperator
	RoleDataScientist

	roleEnd
)

var roleNames = [roleEnd]string{
	RoleAdmin:         "ADMIN",
	RoleEngineer:      "ENGINEER",
	RoleOperator:      "OPERATOR",
	RoleDataScientist: "DATA_SCIENTIST",
}

// Roles returns the closed role set in declaration order. RoleNone is not
// part of it.
func Roles() []Role {
	roles := make([]Role, 0, roleEnd-1)
	for r := RoleAdmin; r < roleEnd; r++ {
		roles = append(roles, r)
	}
	return roles
}

// ParseRole converts a wire role name. Matching is exact: "admin" and
// " ADMIN" are rejected the same way as any other unknown value.
func ParseRole(name string) (Role, error) {
	for r := RoleAdmin; r < roleEnd; r++ {
		if roleNames[r] == name {
			return r, nil
		}
	}
	return RoleNone, &InvalidRoleError{Value: name}
}

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	return r > RoleNone && r < roleEnd
}

func (r Role) String() string {
	switch {
	case r == RoleNone:
		return "NONE"
	case r.Valid():
		return roleNames[r]
	default:
		return fmt.Sprintf("Role(%d)", uint8(r))
	}
}

// MarshalText implements encoding.TextMarshaler
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, &InvalidRoleError{Value: r.String()}
	}
	return []byte(roleNames[r]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
