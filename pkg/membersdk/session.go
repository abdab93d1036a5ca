package membersdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Session is an authenticated handle. Session credentials are not
// refreshable; calls fail with ErrSessionExpired once expiresAt passes.
type Session struct {
	client *SDKClient

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	principal PrincipalResponse
}

// Token returns the bearer credential.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// Principal returns the principal the session was issued for, as reported
// at login or registration. It is empty for sessions built from a raw token.
func (s *Session) Principal() PrincipalResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.principal
}

func (s *Session) validToken() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return "", ErrInvalidToken
	}
	if !s.expiresAt.IsZero() && !time.Now().Before(s.expiresAt) {
		return "", ErrSessionExpired
	}
	return s.token, nil
}

func (s *Session) doAuthRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	token, err := s.validToken()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, s.client.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// call sends an optional JSON body and decodes a JSON reply into out.
func (s *Session) call(ctx context.Context, method, path string, in, out any, expectedStatus int) error {
	var (
		body    io.Reader
		headers map[string]string
		err     error
	)
	if in != nil {
		if body, headers, err = jsonBody(in); err != nil {
			return err
		}
	}

	resp, err := s.doAuthRequest(ctx, method, path, body, headers)
	if err != nil {
		return err
	}
	if out == nil {
		return checkStatusNoContent(resp)
	}
	return decodeJSON(resp, out, expectedStatus)
}

// Me returns the authenticated principal.
func (s *Session) Me(ctx context.Context) (*PrincipalResponse, error) {
	var out PrincipalResponse
	if err := s.call(ctx, http.MethodGet, "/v1/me", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
