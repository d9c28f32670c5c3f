package session

import "github.com/upb/ops-console/internal/auth"

// RoleSource reports the role of the current session, auth.RoleNone when
// there is none. *Provider and Snapshot implement it.
type RoleSource interface {
	Role() auth.Role
}

// Accessor derives the capability evaluator of the current session.
type Accessor struct {
	source     RoleSource
	evaluators *auth.Evaluators
	views      *auth.ViewPolicy
}

// NewAccessor binds source to a set of evaluators and a view policy. Nil
// evaluators or views select the built-in tables.
func NewAccessor(source RoleSource, evaluators *auth.Evaluators, views *auth.ViewPolicy) *Accessor {
	if evaluators == nil {
		evaluators = auth.DefaultEvaluators()
	}
	if views == nil {
		views = auth.DefaultViewPolicy()
	}
	return &Accessor{
		source:     source,
		evaluators: evaluators,
		views:      views,
	}
}

// Current returns the evaluator of the session's role as of this call. Before
// the session resolves, and after logout, it is the fail-closed evaluator.
func (a *Accessor) Current() auth.Evaluator {
	if a == nil || a.source == nil {
		return auth.Denied()
	}
	return a.evaluators.For(a.source.Role())
}

// VisibleViews lists the views the current session may see, in navigation
// order.
func (a *Accessor) VisibleViews() []string {
	if a == nil {
		return []string{}
	}
	return a.views.VisibleViews(a.Current())
}

// CanView reports whether the current session may see view. Unregistered
// views fail with auth.ErrUnknownView.
func (a *Accessor) CanView(view string) (bool, error) {
	if a == nil {
		return auth.DefaultViewPolicy().Visible(auth.Denied(), view)
	}
	return a.views.Visible(a.Current(), view)
}
