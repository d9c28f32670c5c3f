package auth

import (
	"errors"
	"fmt"
)

// defaultGrants is the role policy shipped with the console. Policy changes
// require a new build.
var defaultGrants = map[Role][]Capability{
	RoleAdmin: Catalog(),
	RoleEngineer: {
		ViewDashboard,
		ViewManufacturing,
		ViewVision,
		ViewLogic,
		ViewInfra,
		ViewSimulation,
		ViewRegistry,
		ViewIntegrations,
		ViewSettings,
	},
	RoleOperator: {
		ViewDashboard,
		ViewManufacturing,
		ViewVision,
		ViewSettings,
	},
	RoleDataScientist: {
		ViewDashboard,
		ViewVision,
		ViewAnalytics,
		ViewSimulation,
		ViewRegistry,
		ViewSettings,
	},
}

var defaultRolePolicy = MustRolePolicy(defaultGrants)

// RolePolicy maps every role of the closed set to the capabilities it grants.
// A RolePolicy is immutable once built.
type RolePolicy struct {
	grants [roleEnd]CapabilitySet
}

// NewRolePolicy builds a RolePolicy from grants. Every role must have an entry
// (an empty one is fine), RoleNone and values outside the role set are
// rejected, and so are capabilities outside the catalog.
func NewRolePolicy(grants map[Role][]Capability) (*RolePolicy, error) {
	p := &RolePolicy{}
	for role, caps := range grants {
		if !role.Valid() {
			return nil, fmt.Errorf("role policy entry: %w", &InvalidRoleError{Value: role.String()})
		}
		for _, c := range caps {
			if !c.Valid() {
				return nil, fmt.Errorf("role policy entry %s: %w: %s", role, ErrUnknownCapability, c)
			}
		}
		p.grants[role] = NewCapabilitySet(caps...)
	}

	var missing []error
	for _, role := range Roles() {
		if _, ok := grants[role]; !ok {
			missing = append(missing, fmt.Errorf("role policy has no entry for %s", role))
		}
	}
	if len(missing) > 0 {
		return nil, errors.Join(missing...)
	}
	return p, nil
}

// MustRolePolicy is like NewRolePolicy but panics on an incomplete table.
func MustRolePolicy(grants map[Role][]Capability) *RolePolicy {
	p, err := NewRolePolicy(grants)
	if err != nil {
		panic(err)
	}
	return p
}

// DefaultRolePolicy returns the built-in role policy.
func DefaultRolePolicy() *RolePolicy {
	return defaultRolePolicy
}

// CapabilitiesFor returns the capabilities granted to role. A role outside the
// closed set, RoleNone included, fails with an *InvalidRoleError so that it can
// never be mistaken for a valid role holding zero capabilities.
func (p *RolePolicy) CapabilitiesFor(role Role) (CapabilitySet, error) {
	if !role.Valid() {
		return 0, &InvalidRoleError{Value: role.String()}
	}
	return p.grants[role], nil
}

// CapabilitiesFor looks role up in the built-in role policy.
func CapabilitiesFor(role Role) (CapabilitySet, error) {
	return defaultRolePolicy.CapabilitiesFor(role)
}
