package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upb/ops-console/internal/auth"
	"github.com/upb/ops-console/middleware"
	"github.com/upb/ops-console/services"
	"github.com/upb/ops-console/utils"
	"go.uber.org/zap"
)

// NavigationResponse lists the views visible to the caller. Role is NONE
// for a caller without a role.
type NavigationResponse struct {
	Role  string   `json:"role"`
	Views []string `json:"views"`
}

// CapabilitiesResponse lists the caller's capability tokens
type CapabilitiesResponse struct {
	Role         string             `json:"role"`
	Capabilities auth.CapabilitySet `json:"capabilities"`
}

// ViewResponse reports whether the caller may open a view
type ViewResponse struct {
	View        string           `json:"view"`
	Visible     bool             `json:"visible"`
	Requirement auth.Requirement `json:"requirement"`
}

// ConsoleHandler answers navigation and view-gating questions for the
// authenticated caller
type ConsoleHandler struct {
	views  *auth.ViewPolicy
	logger *zap.Logger
}

// NewConsoleHandler creates a ConsoleHandler. A nil policy selects the
// built-in view table.
func NewConsoleHandler(views *auth.ViewPolicy, logger *zap.Logger) *ConsoleHandler {
	if views == nil {
		views = auth.DefaultViewPolicy()
	}
	return &ConsoleHandler{
		views:  views,
		logger: logger,
	}
}

// HandleNavigation handles GET /api/v1/navigation
func (h *ConsoleHandler) HandleNavigation(w http.ResponseWriter, r *http.Request) {
	ev := middleware.GetEvaluatorFromContext(r.Context())
	_ = utils.WriteOK(w, NavigationResponse{
		Role:  ev.Role().String(),
		Views: h.views.VisibleViews(ev),
	})
}

// HandleCapabilities handles GET /api/v1/capabilities
func (h *ConsoleHandler) HandleCapabilities(w http.ResponseWriter, r *http.Request) {
	ev := middleware.GetEvaluatorFromContext(r.Context())
	_ = utils.WriteOK(w, CapabilitiesResponse{
		Role:         ev.Role().String(),
		Capabilities: ev.All(),
	})
}

// HandleRegistry handles GET /api/v1/views
func (h *ConsoleHandler) HandleRegistry(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, h.views.Registry())
}

// HandleView handles GET /api/v1/views/{view}
func (h *ConsoleHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)
	view := chi.URLParam(r, "view")

	if err := utils.ValidateViewID(view); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	req, err := h.views.RequiredCapabilities(view)
	if err != nil {
		if errors.Is(err, auth.ErrUnknownView) {
			HandleServiceError(w, services.NewDomainError(services.ErrorTypeNotFound, services.ErrViewNotFound.Message, err).
				WithDetail("view", view), h.logger)
			return
		}
		h.logger.Error("view lookup failed",
			zap.String("request_id", requestID),
			zap.String("view", view),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	ev := middleware.GetEvaluatorFromContext(ctx)
	if !req.SatisfiedBy(ev.All()) {
		h.logger.Debug("view hidden",
			zap.String("request_id", requestID),
			zap.String("view", view),
			zap.Stringer("role", ev.Role()))
		HandleServiceError(w, services.NewDomainError(services.ErrorTypeForbidden, "view not available for this role", nil).
			WithDetail("view", view).
			WithDetail("requirement", req), h.logger)
		return
	}

	_ = utils.WriteOK(w, ViewResponse{
		View:        view,
		Visible:     true,
		Requirement: req,
	})
}
