// Package auth is the authorization core of the Ops Console.
//
// It owns the closed catalog of capabilities, the closed set of roles, the
// role policy table mapping each role to the capabilities it grants, the
// evaluator used by every call site to answer "can the current session do X",
// and the view policy table that gates navigation.
//
// Everything in this package is pure and immutable after init. Unknown roles
// and unregistered views are configuration errors and surface as typed
// errors; capability checks themselves never fail and default to deny.
package auth
