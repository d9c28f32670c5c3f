package handlers

import (
	"net/http"

	"github.com/upb/ops-console/middleware"
	"github.com/upb/ops-console/utils"
	"go.uber.org/zap"
)

// AuthHandler handles the session cookie lifecycle
type AuthHandler struct {
	cookieName string
	secure     bool
	logger     *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(cookieName string, secure bool, logger *zap.Logger) *AuthHandler {
	if cookieName == "" {
		cookieName = middleware.DefaultCookieName
	}
	return &AuthHandler{
		cookieName: cookieName,
		secure:     secure,
		logger:     logger,
	}
}

// HandleLogout handles POST /auth/logout by expiring the auth cookie. The
// token itself stays valid until it expires; clients drop their copy.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})

	h.logger.Debug("auth cookie cleared",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())))

	_ = utils.WriteMessage(w, "Logged out")
}
