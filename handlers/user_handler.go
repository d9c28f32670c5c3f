package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/upb/ops-console/internal/auth"
	"github.com/upb/ops-console/middleware"
	"github.com/upb/ops-console/models"
	"github.com/upb/ops-console/utils"
	"go.uber.org/zap"
)

// UserService defines the user operations the handlers need
type UserService interface {
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role auth.Role) (*models.User, error)
}

// UpdateRoleRequest is the body of PATCH /api/v1/admin/users/{id}/role
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,role"`
}

// UserListResponse is the response body for GET /api/v1/admin/users
type UserListResponse struct {
	Users  []*models.User `json:"users"`
	Count  int            `json:"count"`
	Offset int            `json:"offset"`
}

// UserHandler serves the identity endpoint and user administration
type UserHandler struct {
	users  UserService
	logger *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

// HandleMe handles GET /api/v1/users/me. This is the identity endpoint the
// session provider polls; the body is {"data":{"id","email","role"}}.
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}
	_ = utils.WriteOK(w, user.Identity())
}

// HandleListUsers handles GET /api/v1/admin/users
func (h *UserHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	limit, offset, err := parsePage(r)
	if err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	users, err := h.users.List(ctx, limit, offset)
	if err != nil {
		h.logger.Error("failed to list users",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Debug("listed users",
		zap.String("request_id", requestID),
		zap.Int("count", len(users)))

	_ = utils.WriteOK(w, UserListResponse{
		Users:  users,
		Count:  len(users),
		Offset: offset,
	})
}

// HandleUpdateRole handles PATCH /api/v1/admin/users/{id}/role. The new
// role applies from the target user's next request.
func (h *UserHandler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	rawID := chi.URLParam(r, "id")
	if err := utils.ValidateUUID(rawID); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid user ID", map[string]interface{}{"id": rawID})
		return
	}
	id := uuid.MustParse(rawID)

	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	role, err := auth.ParseRole(req.Role)
	if err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	user, err := h.users.UpdateRole(ctx, id, role)
	if err != nil {
		h.logger.Error("failed to update user role",
			zap.String("request_id", requestID),
			zap.String("user_id", id.String()),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("user_id", id.String()),
		zap.Stringer("role", role),
	}
	if claims := middleware.GetClaimsFromContext(ctx); claims != nil {
		fields = append(fields,
			zap.String("actor_id", claims.Subject.String()),
			zap.String("token_id", claims.TokenID))
	}
	h.logger.Info("role assigned", fields...)

	_ = utils.WriteOK(w, user)
}

// parsePage reads the limit and offset query parameters. Missing values
// are zero and left for the service to default.
func parsePage(r *http.Request) (limit, offset int, err error) {
	fields := make(map[string]string)
	q := r.URL.Query()

	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil {
			fields["limit"] = "limit must be a number"
		}
	}
	if v := q.Get("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil {
			fields["offset"] = "offset must be a number"
		}
	}

	if len(fields) > 0 {
		return 0, 0, &utils.ValidationError{Message: "Validation failed", Fields: fields}
	}
	return limit, offset, nil
}
