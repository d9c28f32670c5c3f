package auth

import (
	"encoding/json"
	"fmt"
	"math/bits"
)

// Capability is a permission token from the closed capability catalog. Each
// value names one protectable feature area of the console.
type Capability uint8

// The capability catalog. The zero value is not a capability.
const (
	ViewDashboard Capability = iota + 1
	ViewManufacturing
	ViewVision
	ViewLogic
	ViewInfra
	ViewAnalytics
	ViewSimulation
	ViewGovernance
	ViewAdmin
	ViewRegistry
	ViewIntegrations
	ViewSettings

	capabilityEnd
)

var capabilityTokens = [capabilityEnd]string{
	ViewDashboard:     "VIEW_DASHBOARD",
	ViewManufacturing: "VIEW_MANUFACTURING",
	ViewVision:        "VIEW_VISION",
	ViewLogic:         "VIEW_LOGIC",
	ViewInfra:         "VIEW_INFRA",
	ViewAnalytics:     "VIEW_ANALYTICS",
	ViewSimulation:    "VIEW_SIMULATION",
	ViewGovernance:    "VIEW_GOVERNANCE",
	ViewAdmin:         "VIEW_ADMIN",
	ViewRegistry:      "VIEW_REGISTRY",
	ViewIntegrations:  "VIEW_INTEGRATIONS",
	ViewSettings:      "VIEW_SETTINGS",
}

var capabilityByToken = func() map[string]Capability {
	m := make(map[string]Capability, capabilityEnd-1)
	for _, c := range Catalog() {
		m[c.String()] = c
	}
	return m
}()

// Catalog returns every capability in declaration order.
func Catalog() []Capability {
	caps := make([]Capability, 0, capabilityEnd-1)
	for c := ViewDashboard; c < capabilityEnd; c++ {
		caps = append(caps, c)
	}
	return caps
}

// ParseCapability converts a wire token such as "VIEW_ADMIN" into a Capability.
func ParseCapability(token string) (Capability, error) {
	c, ok := capabilityByToken[token]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCapability, token)
	}
	return c, nil
}

// Valid reports whether c belongs to the catalog.
func (c Capability) Valid() bool {
	return c >= ViewDashboard && c < capabilityEnd
}

func (c Capability) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Capability(%d)", uint8(c))
	}
	return capabilityTokens[c]
}

// MarshalText implements encoding.TextMarshaler
func (c Capability) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCapability, uint8(c))
	}
	return []byte(capabilityTokens[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Capability) UnmarshalText(text []byte) error {
	parsed, err := ParseCapability(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// CapabilitySet is a set of capabilities stored as a bitmask, one bit per
// catalog entry. The zero value is the empty set.
type CapabilitySet uint32

// NewCapabilitySet returns the set holding caps. Values outside the catalog
// are dropped.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	var s CapabilitySet
	return s.With(caps...)
}

func bit(c Capability) CapabilitySet {
	return CapabilitySet(1) << c
}

// Has reports whether c is in the set.
func (s CapabilitySet) Has(c Capability) bool {
	return c.Valid() && s&bit(c) != 0
}

// HasAny reports whether at least one of caps is in the set.
func (s CapabilitySet) HasAny(caps ...Capability) bool {
	for _, c := range caps {
		if s.Has(c) {
			return true
		}
	}
	return false
}

// HasAll reports whether every one of caps is in the set.
func (s CapabilitySet) HasAll(caps ...Capability) bool {
	for _, c := range caps {
		if !s.Has(c) {
			return false
		}
	}
	return true
}

// With returns a copy of the set with caps added.
func (s CapabilitySet) With(caps ...Capability) CapabilitySet {
	for _, c := range caps {
		if c.Valid() {
			s |= bit(c)
		}
	}
	return s
}

// SubsetOf reports whether every member of s is also in other.
func (s CapabilitySet) SubsetOf(other CapabilitySet) bool {
	return s&^other == 0
}

// Len returns the number of capabilities in the set.
func (s CapabilitySet) Len() int {
	return bits.OnesCount32(uint32(s))
}

// IsEmpty reports whether the set has no members.
func (s CapabilitySet) IsEmpty() bool {
	return s == 0
}

// Members returns the capabilities in the set in catalog order.
func (s CapabilitySet) Members() []Capability {
	members := make([]Capability, 0, s.Len())
	for _, c := range Catalog() {
		if s.Has(c) {
			members = append(members, c)
		}
	}
	return members
}

// Strings returns the wire tokens of the set in catalog order.
func (s CapabilitySet) Strings() []string {
	members := s.Members()
	tokens := make([]string, len(members))
	for i, c := range members {
		tokens[i] = c.String()
	}
	return tokens
}

// MarshalJSON encodes the set as an array of tokens.
func (s CapabilitySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

// UnmarshalJSON decodes an array of tokens. Unknown tokens are an error.
func (s *CapabilitySet) UnmarshalJSON(data []byte) error {
	var tokens []string
	if err := json.Unmarshal(data, &tokens); err != nil {
		return err
	}
	var set CapabilitySet
	for _, token := range tokens {
		c, err := ParseCapability(token)
		if err != nil {
			return err
		}
		set = set.With(c)
	}
	*s = set
	return nil
}
