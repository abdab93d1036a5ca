package membersdk

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *SDKClient) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

// Bootstrap creates the first super admin. token is the service's configured
// bootstrap token.
func (c *SDKClient) Bootstrap(ctx context.Context, token string, req BootstrapRequest) (*BootstrapResponse, error) {
	body, headers, err := jsonBody(req)
	if err != nil {
		return nil, err
	}
	headers["X-Bootstrap-Token"] = token

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/bootstrap", body, headers)
	if err != nil {
		return nil, err
	}

	var out BootstrapResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates any principal kind and returns a Session.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*Session, error) {
	body, headers, err := jsonBody(LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/login", body, headers)
	if err != nil {
		return nil, err
	}

	var out SessionResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return c.newSession(out), nil
}

// VerifyInvitation reports the email an invitation secret was issued for.
func (c *SDKClient) VerifyInvitation(ctx context.Context, secret string) (string, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/auth/invitations/"+url.PathEscape(secret), nil, nil)
	if err != nil {
		return "", err
	}

	var out VerifyInvitationResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return "", err
	}
	return out.Email, nil
}

// Register redeems an invitation and returns a Session for the new alumni.
func (c *SDKClient) Register(ctx context.Context, secret string, req RegisterRequest) (*Session, error) {
	body, headers, err := jsonBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/register/"+url.PathEscape(secret), body, headers)
	if err != nil {
		return nil, err
	}

	var out SessionResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return c.newSession(out), nil
}

func (c *SDKClient) newSession(r SessionResponse) *Session {
	var exp time.Time
	if r.ExpiresAt > 0 {
		exp = time.Unix(r.ExpiresAt, 0)
	}
	return &Session{
		client:    c,
		token:     r.Token,
		expiresAt: exp,
		principal: r.Principal,
	}
}
