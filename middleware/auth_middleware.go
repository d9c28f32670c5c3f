package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/upb/ops-console/internal/auth"
	"github.com/upb/ops-console/models"
	"github.com/upb/ops-console/services"
	"github.com/upb/ops-console/tokens"
	"github.com/upb/ops-console/utils"
	"go.uber.org/zap"
)

// TokenValidator defines the interface for validating bearer tokens
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*tokens.ParsedClaims, error)
}

// UserResolver loads the user behind a token subject
type UserResolver interface {
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AuthMiddleware authenticates requests and attaches the caller's evaluator
type AuthMiddleware struct {
	validator  TokenValidator
	users      UserResolver
	evaluators *auth.Evaluators
	cookieName string
	logger     *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware. Nil evaluators select the
// built-in role policy.
func NewAuthMiddleware(validator TokenValidator, users UserResolver, evaluators *auth.Evaluators, cookieName string, logger *zap.Logger) *AuthMiddleware {
	if evaluators == nil {
		evaluators = auth.DefaultEvaluators()
	}
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &AuthMiddleware{
		validator:  validator,
		users:      users,
		evaluators: evaluators,
		cookieName: cookieName,
		logger:     logger,
	}
}

// DefaultCookieName is the cookie carrying the token when no Authorization
// header is sent
const DefaultCookieName = "auth_token"

// RequireAuth validates the bearer token, loads the user and attaches the
// user and the evaluator of the stored role to the request context. The
// role is always read from the users table, never from the token.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		token := m.extractToken(r)
		if token == "" {
			m.logger.Warn("missing token",
				zap.String("request_id", requestID))
			_ = utils.WriteUnauthorized(w, "Missing or invalid authorization")
			return
		}

		claims, err := m.validator.ValidateToken(ctx, token)
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("request_id", requestID),
				zap.Error(err))
			_ = utils.WriteUnauthorized(w, "Invalid or expired token")
			return
		}

		user, err := m.users.Get(ctx, claims.Subject)
		if err != nil {
			switch {
			case services.IsNotFoundError(err):
				m.logger.Warn("token subject has no user",
					zap.String("request_id", requestID),
					zap.String("sub", claims.Subject.String()))
				_ = utils.WriteUnauthorized(w, "Unknown user")
			case services.IsConfigurationError(err):
				m.logger.Error("user has an invalid stored role",
					zap.String("request_id", requestID),
					zap.String("sub", claims.Subject.String()),
					zap.Error(err))
				_ = utils.WriteInternalServerError(w, "User role misconfigured")
			default:
				m.logger.Error("failed to load user",
					zap.String("request_id", requestID),
					zap.Error(err))
				_ = utils.WriteInternalServerError(w, "")
			}
			return
		}

		ev := m.evaluators.For(user.Role)
		ctx = WithClaims(ctx, claims)
		ctx = WithUser(ctx, user)
		ctx = WithEvaluator(ctx, ev)

		m.logger.Debug("authentication successful",
			zap.String("request_id", requestID),
			zap.String("sub", claims.Subject.String()),
			zap.Stringer("role", user.Role))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireCapability rejects requests whose evaluator lacks c. It must run
// after RequireAuth; on its own every request is rejected.
func (m *AuthMiddleware) RequireCapability(c auth.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestIDFromContext(ctx)

			if GetUserFromContext(ctx) == nil {
				m.logger.Error("user not found in context",
					zap.String("request_id", requestID))
				_ = utils.WriteUnauthorized(w, "Authentication required")
				return
			}

			ev := GetEvaluatorFromContext(ctx)
			if !ev.Can(c) {
				m.logger.Warn("insufficient capabilities",
					zap.String("request_id", requestID),
					zap.Stringer("required", c),
					zap.Stringer("role", ev.Role()))
				_ = utils.WriteForbidden(w, "Insufficient capabilities", map[string]interface{}{
					"required": c.String(),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractToken reads the Authorization bearer token, falling back to the
// auth cookie. The header takes precedence when both are present.
func (m *AuthMiddleware) extractToken(r *http.Request) string {
	if token := extractBearerToken(r); token != "" {
		return token
	}
	if cookie, err := r.Cookie(m.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
