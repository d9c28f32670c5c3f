// Package identity fetches the authenticated identity of a console session
// from the gateway's identity endpoint.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/upb/ops-console/models"
	"github.com/upb/ops-console/services"
	"github.com/upb/ops-console/utils"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds a single identity fetch.
	DefaultTimeout = 10 * time.Second

	maxResponseBytes = 1 << 20
)

// Client calls the identity endpoint with a bearer credential.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates an identity client for endpoint. A nil httpClient gets a
// client with DefaultTimeout.
func NewClient(endpoint string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
		logger:     logger,
	}
}

// envelope matches the gateway's success wrapper. Bare identity objects are
// accepted too.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// FetchIdentity performs the identity fetch. Any non-2xx status, transport
// failure or malformed payload is returned as a session fetch error.
func (c *Client) FetchIdentity(ctx context.Context, token string) (*models.Identity, error) {
	if token == "" {
		return nil, services.WrapSessionFetch("no credential to present", nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, services.WrapSessionFetch("failed to build identity request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.WrapSessionFetch("identity request failed", unavailable(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		var cause error
		if resp.StatusCode >= http.StatusInternalServerError {
			cause = unavailable(fmt.Errorf("status %d", resp.StatusCode))
		}
		return nil, services.NewDomainError(
			services.ErrorTypeSessionFetch,
			fmt.Sprintf("identity endpoint returned %d", resp.StatusCode),
			cause,
		).WithDetail("status", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, services.WrapSessionFetch("failed to read identity response", err)
	}

	identity, err := decodeIdentity(body)
	if err != nil {
		return nil, services.WrapSessionFetch("identity payload rejected", err)
	}

	c.logger.Debug("identity fetched",
		zap.String("user_id", identity.ID),
		zap.String("role", identity.Role.String()))

	return identity, nil
}

// unavailable marks a failure on the endpoint's side, as opposed to a
// rejected credential.
func unavailable(err error) error {
	return services.NewDomainError(services.ErrorTypeExternal, services.ErrIdentityUnavailable.Message, err)
}

// decodeIdentity failures match services.ErrInvalidIdentity.
func decodeIdentity(body []byte) (*models.Identity, error) {
	payload := body
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, invalidIdentity(err)
	}
	if len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		payload = env.Data
	}

	identity := &models.Identity{}
	if err := json.Unmarshal(payload, identity); err != nil {
		return nil, invalidIdentity(err)
	}
	if err := utils.ValidateStruct(identity); err != nil {
		return nil, invalidIdentity(err).WithDetail("fields", utils.GetValidationFields(err))
	}
	return identity, nil
}

func invalidIdentity(err error) *services.DomainError {
	return services.NewDomainError(services.ErrorTypeValidation, services.ErrInvalidIdentity.Message, err)
}
