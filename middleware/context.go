package middleware

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/ops-console/internal/auth"
	"github.com/upb/ops-console/models"
	"github.com/upb/ops-console/tokens"
)

// Context key type to avoid collisions
type contextKey string

const (
	// ClaimsKey is the context key for validated token claims
	ClaimsKey contextKey = "claims"

	// UserKey is the context key for the authenticated user
	UserKey contextKey = "user"

	// EvaluatorKey is the context key for the caller's capability evaluator
	EvaluatorKey contextKey = "evaluator"
)

// GetRequestIDFromContext returns the ID assigned by chi's RequestID
// middleware, or "" outside a request
func GetRequestIDFromContext(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// GetClaimsFromContext retrieves token claims from context
func GetClaimsFromContext(ctx context.Context) *tokens.ParsedClaims {
	claims, _ := ctx.Value(ClaimsKey).(*tokens.ParsedClaims)
	return claims
}

// WithClaims adds token claims to the context
func WithClaims(ctx context.Context, claims *tokens.ParsedClaims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// GetUserFromContext retrieves the authenticated user from context
func GetUserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(UserKey).(*models.User)
	return user
}

// WithUser adds the authenticated user to the context
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// GetEvaluatorFromContext retrieves the caller's evaluator. Requests that
// did not pass RequireAuth get the fail-closed evaluator.
func GetEvaluatorFromContext(ctx context.Context) auth.Evaluator {
	if ev, ok := ctx.Value(EvaluatorKey).(auth.Evaluator); ok {
		return ev
	}
	return auth.Denied()
}

// WithEvaluator adds the caller's evaluator to the context
func WithEvaluator(ctx context.Context, ev auth.Evaluator) context.Context {
	return context.WithValue(ctx, EvaluatorKey, ev)
}
