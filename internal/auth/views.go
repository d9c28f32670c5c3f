package auth

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Combinator says how the capabilities of a view requirement combine.
type Combinator uint8

const (
	// Any grants the view when at least one listed capability is held.
	Any Combinator = iota + 1
	// All grants the view only when every listed capability is held.
	All
)

func (c Combinator) String() string {
	switch c {
	case Any:
		return "ANY"
	case All:
		return "ALL"
	default:
		return fmt.Sprintf("Combinator(%d)", uint8(c))
	}
}

// MarshalText implements encoding.TextMarshaler
func (c Combinator) MarshalText() ([]byte, error) {
	if c != Any && c != All {
		return nil, fmt.Errorf("invalid combinator %d", uint8(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Only the exact tokens
// ANY and ALL are accepted.
func (c *Combinator) UnmarshalText(text []byte) error {
	switch string(text) {
	case "ANY":
		*c = Any
	case "ALL":
		*c = All
	default:
		return fmt.Errorf("invalid combinator %q", text)
	}
	return nil
}

// Requirement is what a session must hold to see a view.
type Requirement struct {
	Combinator   Combinator   `json:"combinator"`
	Capabilities []Capability `json:"capabilities"`
}

// AnyOf builds a requirement satisfied by any one of caps.
func AnyOf(caps ...Capability) Requirement {
	return Requirement{Combinator: Any, Capabilities: caps}
}

// AllOf builds a requirement satisfied only by all of caps together.
func AllOf(caps ...Capability) Requirement {
	return Requirement{Combinator: All, Capabilities: caps}
}

// SatisfiedBy reports whether set meets the requirement. An empty requirement
// is never satisfied.
func (r Requirement) SatisfiedBy(set CapabilitySet) bool {
	if len(r.Capabilities) == 0 {
		return false
	}
	switch r.Combinator {
	case Any:
		return set.HasAny(r.Capabilities...)
	case All:
		return set.HasAll(r.Capabilities...)
	default:
		return false
	}
}

func (r Requirement) validate() error {
	if r.Combinator != Any && r.Combinator != All {
		return fmt.Errorf("invalid combinator %s", r.Combinator)
	}
	if len(r.Capabilities) == 0 {
		return errors.New("requirement lists no capabilities")
	}
	for _, c := range r.Capabilities {
		if !c.Valid() {
			return fmt.Errorf("%w: %s", ErrUnknownCapability, c)
		}
	}
	return nil
}

func (r Requirement) clone() Requirement {
	return Requirement{Combinator: r.Combinator, Capabilities: slices.Clone(r.Capabilities)}
}

// ViewEntry registers one navigable view.
type ViewEntry struct {
	ID          string      `json:"id"`
	Requirement Requirement `json:"requirement"`
}

// ViewPolicy maps every navigable view to the requirement gating it. Views
// keep their registration order, which is the order navigation shows them.
type ViewPolicy struct {
	order   []string
	entries map[string]Requirement
}

// NewViewPolicy builds a ViewPolicy. View IDs must be unique and non-blank and
// each requirement must name a combinator and at least one capability.
func NewViewPolicy(entries []ViewEntry) (*ViewPolicy, error) {
	p := &ViewPolicy{
		order:   make([]string, 0, len(entries)),
		entries: make(map[string]Requirement, len(entries)),
	}
	for _, e := range entries {
		if strings.TrimSpace(e.ID) == "" {
			return nil, errors.New("view policy entry has an empty view id")
		}
		if _, dup := p.entries[e.ID]; dup {
			return nil, fmt.Errorf("view %q registered twice", e.ID)
		}
		if err := e.Requirement.validate(); err != nil {
			return nil, fmt.Errorf("view %q: %w", e.ID, err)
		}
		p.order = append(p.order, e.ID)
		p.entries[e.ID] = e.Requirement.clone()
	}
	return p, nil
}

// MustViewPolicy is like NewViewPolicy but panics on an invalid table.
func MustViewPolicy(entries []ViewEntry) *ViewPolicy {
	p, err := NewViewPolicy(entries)
	if err != nil {
		panic(err)
	}
	return p
}

var defaultViewPolicy = MustViewPolicy([]ViewEntry{
	{ID: "dashboard", Requirement: AnyOf(ViewDashboard)},
	{ID: "manufacturing", Requirement: AnyOf(ViewManufacturing)},
	{ID: "vision", Requirement: AnyOf(ViewVision)},
	{ID: "logic", Requirement: AnyOf(ViewLogic)},
	{ID: "infrastructure", Requirement: AnyOf(ViewInfra)},
	{ID: "analytics", Requirement: AnyOf(ViewAnalytics)},
	{ID: "simulation", Requirement: AnyOf(ViewSimulation)},
	{ID: "governance", Requirement: AnyOf(ViewGovernance)},
	{ID: "registry", Requirement: AnyOf(ViewRegistry)},
	{ID: "integrations", Requirement: AnyOf(ViewIntegrations)},
	{ID: "admin", Requirement: AnyOf(ViewAdmin)},
	{ID: "settings", Requirement: AnyOf(ViewSettings)},
})

// DefaultViewPolicy returns the console's built-in view registry.
func DefaultViewPolicy() *ViewPolicy {
	return defaultViewPolicy
}

// RequiredCapabilities returns the requirement registered for view. An
// unregistered view fails with an *UnknownViewError.
func (p *ViewPolicy) RequiredCapabilities(view string) (Requirement, error) {
	r, ok := p.entries[view]
	if !ok {
		return Requirement{}, &UnknownViewError{View: view}
	}
	return r.clone(), nil
}

// Visible reports whether ev may see view.
func (p *ViewPolicy) Visible(ev Evaluator, view string) (bool, error) {
	r, ok := p.entries[view]
	if !ok {
		return false, &UnknownViewError{View: view}
	}
	return r.SatisfiedBy(ev.All()), nil
}

// VisibleViews returns the views ev may see, in registration order.
func (p *ViewPolicy) VisibleViews(ev Evaluator) []string {
	set := ev.All()
	visible := make([]string, 0, len(p.order))
	for _, id := range p.order {
		if p.entries[id].SatisfiedBy(set) {
			visible = append(visible, id)
		}
	}
	return visible
}

// Views returns every registered view id in registration order.
func (p *ViewPolicy) Views() []string {
	return slices.Clone(p.order)
}

// Registry returns the full view registry handed to the navigation renderer.
func (p *ViewPolicy) Registry() []ViewEntry {
	entries := make([]ViewEntry, 0, len(p.order))
	for _, id := range p.order {
		entries = append(entries, ViewEntry{ID: id, Requirement: p.entries[id].clone()})
	}
	return entries
}

// RequiredCapabilities looks view up in the built-in view registry.
func RequiredCapabilities(view string) (Requirement, error) {
	return defaultViewPolicy.RequiredCapabilities(view)
}
