package auth

// Evaluator answers capability questions for a single role. Evaluators are
// small values with no I/O; Can is a bitmask test.
//
// The zero Evaluator is the fail-closed evaluator: it holds no role and
// denies every capability.
type Evaluator struct {
	role Role
	caps CapabilitySet
}

// Denied returns the fail-closed evaluator used while no session is resolved.
func Denied() Evaluator {
	return Evaluator{}
}

// Can reports whether the evaluator's role holds c.
func (e Evaluator) Can(c Capability) bool {
	return e.caps.Has(c)
}

// CanAny reports whether the role holds at least one of caps.
func (e Evaluator) CanAny(caps ...Capability) bool {
	return e.caps.HasAny(caps...)
}

// CanAll reports whether the role holds every one of caps. An empty list is
// never granted.
func (e Evaluator) CanAll(caps ...Capability) bool {
	return len(caps) > 0 && e.caps.HasAll(caps...)
}

// All returns the full capability set of the role.
func (e Evaluator) All() CapabilitySet {
	return e.caps
}

// Role returns the role the evaluator was built for, or RoleNone.
func (e Evaluator) Role() Role {
	return e.role
}

// Evaluators memoizes one Evaluator per role of a RolePolicy. The role set is
// closed, so every evaluator is built up front.
type Evaluators struct {
	byRole [roleEnd]Evaluator
}

// NewEvaluators precomputes the evaluators of every role in p.
func NewEvaluators(p *RolePolicy) *Evaluators {
	es := &Evaluators{}
	for _, role := range Roles() {
		caps, err := p.CapabilitiesFor(role)
		if err != nil {
			// unreachable: Roles only yields valid roles
			continue
		}
		es.byRole[role] = Evaluator{role: role, caps: caps}
	}
	return es
}

// For returns the memoized evaluator of role. RoleNone and values outside the
// role set get the fail-closed evaluator.
func (es *Evaluators) For(role Role) Evaluator {
	if es == nil || !role.Valid() {
		return Denied()
	}
	return es.byRole[role]
}

var defaultEvaluators = NewEvaluators(defaultRolePolicy)

// DefaultEvaluators returns the evaluators of the built-in role policy.
func DefaultEvaluators() *Evaluators {
	return defaultEvaluators
}

// Build returns the evaluator of role under the built-in role policy.
func Build(role Role) Evaluator {
	return defaultEvaluators.For(role)
}
