package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/ops-console/internal/auth"
	"github.com/upb/ops-console/services"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClient_FetchIdentity(t *testing.T) {
	t.Run("enveloped payload", func(t *testing.T) {
		server := newTestServer(t, http.StatusOK,
			`{"data":{"id":"u-1","email":"eng@example.com","role":"ENGINEER"}}`)
		client := NewClient(server.URL, nil, zap.NewNop())

		identity, err := client.FetchIdentity(context.Background(), "test-token")
		require.NoError(t, err)
		assert.Equal(t, "u-1", identity.ID)
		assert.Equal(t, "eng@example.com", identity.Email)
		assert.Equal(t, auth.RoleEngineer, identity.Role)
	})

	t.Run("bare payload", func(t *testing.T) {
		server := newTestServer(t, http.StatusOK,
			`{"id":"u-2","email":"ds@example.com","role":"DATA_SCIENTIST"}`)
		client := NewClient(server.URL, nil, zap.NewNop())

		identity, err := client.FetchIdentity(context.Background(), "test-token")
		require.NoError(t, err)
		assert.Equal(t, auth.RoleDataScientist, identity.Role)
	})

	t.Run("unauthorized status is a fetch failure", func(t *testing.T) {
		server := newTestServer(t, http.StatusUnauthorized, `{"error":"unauthorized"}`)
		client := NewClient(server.URL, nil, zap.NewNop())

		identity, err := client.FetchIdentity(context.Background(), "test-token")
		assert.Nil(t, identity)
		require.Error(t, err)
		assert.ErrorIs(t, err, services.ErrSessionFetch)
		assert.Equal(t, http.StatusUnauthorized, services.GetErrorDetails(err)["status"])
	})

	t.Run("server error is a fetch failure", func(t *testing.T) {
		server := newTestServer(t, http.StatusInternalServerError, ``)
		client := NewClient(server.URL, nil, zap.NewNop())

		_, err := client.FetchIdentity(context.Background(), "test-token")
		assert.True(t, services.IsSessionFetchError(err))
		assert.ErrorIs(t, err, services.ErrIdentityUnavailable)
	})

	t.Run("rejected credential is not an outage", func(t *testing.T) {
		server := newTestServer(t, http.StatusForbidden, ``)
		client := NewClient(server.URL, nil, zap.NewNop())

		_, err := client.FetchIdentity(context.Background(), "test-token")
		assert.ErrorIs(t, err, services.ErrSessionFetch)
		assert.NotErrorIs(t, err, services.ErrIdentityUnavailable)
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()
		client := NewClient(url, nil, zap.NewNop())

		_, err := client.FetchIdentity(context.Background(), "test-token")
		assert.True(t, services.IsSessionFetchError(err))
		assert.ErrorIs(t, err, services.ErrIdentityUnavailable)
	})

	malformed := map[string]string{
		"not json":       `<html>`,
		"unknown role":   `{"id":"u-1","email":"x@example.com","role":"SUPERUSER"}`,
		"lowercase role": `{"id":"u-1","email":"x@example.com","role":"admin"}`,
		"missing id":     `{"email":"x@example.com","role":"ADMIN"}`,
		"bad email":      `{"id":"u-1","email":"nope","role":"ADMIN"}`,
		"missing role":   `{"data":{"id":"u-1","email":"x@example.com"}}`,
	}
	for name, body := range malformed {
		t.Run("malformed "+name, func(t *testing.T) {
			server := newTestServer(t, http.StatusOK, body)
			client := NewClient(server.URL, nil, zap.NewNop())

			identity, err := client.FetchIdentity(context.Background(), "test-token")
			assert.Nil(t, identity)
			assert.ErrorIs(t, err, services.ErrSessionFetch)
			assert.ErrorIs(t, err, services.ErrInvalidIdentity)
		})
	}

	t.Run("validation failures name the fields", func(t *testing.T) {
		server := newTestServer(t, http.StatusOK, `{"id":"u-1","email":"nope","role":"ADMIN"}`)
		client := NewClient(server.URL, nil, zap.NewNop())

		_, err := client.FetchIdentity(context.Background(), "test-token")
		var invalid *services.DomainError
		require.True(t, errors.As(errors.Unwrap(err), &invalid))
		assert.Equal(t, services.ErrorTypeValidation, invalid.Type)
		assert.Contains(t, invalid.Details["fields"], "Email")
	})

	t.Run("missing credential never reaches the network", func(t *testing.T) {
		called := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer server.Close()
		client := NewClient(server.URL, nil, zap.NewNop())

		_, err := client.FetchIdentity(context.Background(), "")
		assert.ErrorIs(t, err, services.ErrSessionFetch)
		assert.False(t, called)
	})

	t.Run("context deadline", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
		}))
		defer server.Close()
		defer close(release)
		client := NewClient(server.URL, nil, zap.NewNop())

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := client.FetchIdentity(ctx, "test-token")
		assert.ErrorIs(t, err, services.ErrSessionFetch)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
