package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/ops-console/internal/auth"
	"github.com/upb/ops-console/middleware"
	"github.com/upb/ops-console/models"
	"github.com/upb/ops-console/services"
	"github.com/upb/ops-console/tokens"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// MockUserService is a mock implementation of UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserService) UpdateRole(ctx context.Context, id uuid.UUID, role auth.Role) (*models.User, error) {
	args := m.Called(ctx, id, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func withUser(req *http.Request, user *models.User) *http.Request {
	ctx := middleware.WithUser(req.Context(), user)
	ctx = middleware.WithEvaluator(ctx, auth.Build(user.Role))
	return req.WithContext(ctx)
}

func TestHandleMe(t *testing.T) {
	handler := NewUserHandler(new(MockUserService), zap.NewNop())

	t.Run("returns the identity of the authenticated user", func(t *testing.T) {
		user := models.NewUser("ds@example.com", auth.RoleDataScientist)

		req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil), user)
		rec := httptest.NewRecorder()

		handler.HandleMe(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t,
			`{"data":{"id":"`+user.ID.String()+`","email":"ds@example.com","role":"DATA_SCIENTIST"}}`,
			rec.Body.String())
	})

	t.Run("returns 401 when no user in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		rec := httptest.NewRecorder()

		handler.HandleMe(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHandleListUsers(t *testing.T) {
	logger := zap.NewNop()

	t.Run("lists a page of users", func(t *testing.T) {
		svc := new(MockUserService)
		handler := NewUserHandler(svc, logger)

		users := []*models.User{
			models.NewUser("admin@example.com", auth.RoleAdmin),
			models.NewUser("op@example.com", auth.RoleOperator),
		}
		svc.On("List", mock.Anything, 10, 20).Return(users, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users?limit=10&offset=20", nil)
		rec := httptest.NewRecorder()

		handler.HandleListUsers(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Data struct {
				Users []struct {
					Email string `json:"email"`
					Role  string `json:"role"`
				} `json:"users"`
				Count  int `json:"count"`
				Offset int `json:"offset"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, 2, body.Data.Count)
		assert.Equal(t, 20, body.Data.Offset)
		assert.Equal(t, "ADMIN", body.Data.Users[0].Role)
		assert.Equal(t, "op@example.com", body.Data.Users[1].Email)
		svc.AssertExpectations(t)
	})

	t.Run("missing paging leaves defaults to the service", func(t *testing.T) {
		svc := new(MockUserService)
		handler := NewUserHandler(svc, logger)
		svc.On("List", mock.Anything, 0, 0).Return([]*models.User{}, nil)

		rec := httptest.NewRecorder()
		handler.HandleListUsers(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("non-numeric paging returns 400", func(t *testing.T) {
		svc := new(MockUserService)
		handler := NewUserHandler(svc, logger)

		rec := httptest.NewRecorder()
		handler.HandleListUsers(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/users?limit=ten&offset=x", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var body struct {
			Details map[string]string `json:"details"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Contains(t, body.Details, "limit")
		assert.Contains(t, body.Details, "offset")
		svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
	})

	serviceErrors := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"negative offset", services.NewDomainError(services.ErrorTypeValidation, "offset must not be negative", nil), http.StatusBadRequest},
		{"invalid stored role", services.ErrInvalidStoredRole, http.StatusInternalServerError},
		{"database failure", services.WrapInternal("list users", errors.New("timeout")), http.StatusInternalServerError},
	}

	for _, tt := range serviceErrors {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockUserService)
			handler := NewUserHandler(svc, logger)
			svc.On("List", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := httptest.NewRecorder()
			handler.HandleListUsers(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/users?offset=-1", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandleUpdateRole(t *testing.T) {
	target := models.NewUser("ops@example.com", auth.RoleOperator)
	admin := models.NewUser("root@example.com", auth.RoleAdmin)

	newRouter := func(svc *MockUserService) http.Handler {
		r := chi.NewRouter()
		r.Patch("/api/v1/admin/users/{id}/role", NewUserHandler(svc, zap.NewNop()).HandleUpdateRole)
		return r
	}

	t.Run("assigns the role", func(t *testing.T) {
		svc := new(MockUserService)
		promoted := *target
		promoted.Role = auth.RoleEngineer
		svc.On("UpdateRole", mock.Anything, target.ID, auth.RoleEngineer).Return(&promoted, nil)

		req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/users/"+target.ID.String()+"/role",
			strings.NewReader(`{"role":"ENGINEER"}`))
		rec := httptest.NewRecorder()
		newRouter(svc).ServeHTTP(rec, withUser(req, admin))

		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Data struct {
				Email string `json:"email"`
				Role  string `json:"role"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "ops@example.com", body.Data.Email)
		assert.Equal(t, "ENGINEER", body.Data.Role)
		svc.AssertExpectations(t)
	})

	t.Run("logs the acting token", func(t *testing.T) {
		svc := new(MockUserService)
		svc.On("UpdateRole", mock.Anything, target.ID, auth.RoleAdmin).Return(target, nil)

		core, logs := observer.New(zap.InfoLevel)
		r := chi.NewRouter()
		r.Patch("/api/v1/admin/users/{id}/role", NewUserHandler(svc, zap.New(core)).HandleUpdateRole)

		req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/users/"+target.ID.String()+"/role",
			strings.NewReader(`{"role":"ADMIN"}`))
		req = withUser(req, admin)
		req = req.WithContext(middleware.WithClaims(req.Context(), &tokens.ParsedClaims{
			Subject: admin.ID,
			Email:   admin.Email,
			TokenID: "jti-1",
		}))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		entries := logs.FilterMessage("role assigned").All()
		require.Len(t, entries, 1)
		fields := entries[0].ContextMap()
		assert.Equal(t, admin.ID.String(), fields["actor_id"])
		assert.Equal(t, "jti-1", fields["token_id"])
		assert.Equal(t, "ADMIN", fields["role"])
	})

	tests := []struct {
		name       string
		id         string
		body       string
		serviceErr error
		wantStatus int
	}{
		{"malformed id", "not-a-uuid", `{"role":"ADMIN"}`, nil, http.StatusBadRequest},
		{"truncated id", target.ID.String()[:8], `{"role":"ADMIN"}`, nil, http.StatusBadRequest},
		{"malformed body", target.ID.String(), `{"role":`, nil, http.StatusBadRequest},
		{"missing role", target.ID.String(), `{}`, nil, http.StatusBadRequest},
		{"role outside the set", target.ID.String(), `{"role":"GUEST"}`, nil, http.StatusBadRequest},
		{"role none", target.ID.String(), `{"role":"NONE"}`, nil, http.StatusBadRequest},
		{"unknown user", target.ID.String(), `{"role":"ADMIN"}`, services.ErrUserNotFound, http.StatusNotFound},
		{"database failure", target.ID.String(), `{"role":"ADMIN"}`, services.ErrDatabaseError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockUserService)
			if tt.serviceErr != nil {
				svc.On("UpdateRole", mock.Anything, target.ID, auth.RoleAdmin).Return(nil, tt.serviceErr)
			}

			req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/users/"+tt.id+"/role", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			newRouter(svc).ServeHTTP(rec, withUser(req, admin))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.serviceErr == nil {
				svc.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}
