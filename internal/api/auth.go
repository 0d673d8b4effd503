package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Login exchanges credentials for an access token. The backend also sets the
// HTTP-only refresh cookie on the client's cookie jar.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	spec := requestSpec{
		method: http.MethodPost,
		path:   "/auth/login",
		body: jsonBody(map[string]string{
			"username": username,
			"password": password,
		}),
	}

	var payload LoginResponse
	if err := c.doJSON(ctx, spec, &payload); err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) &&
			(statusErr.Status == http.StatusUnauthorized || statusErr.Status == http.StatusBadRequest || statusErr.Status == http.StatusForbidden) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, ErrorMessage(err))
		}
		return nil, err
	}
	if payload.AccessToken == "" {
		return nil, errors.New("login response missing access token")
	}
	return &payload, nil
}

// CurrentUser fetches the authenticated identity.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	spec := requestSpec{method: http.MethodGet, path: "/auth/me", auth: true}
	var user User
	if err := c.doJSON(ctx, spec, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Refresh exchanges the cookie-borne refresh credential for a new access
// token. No bearer token is attached; the request is authenticated by the
// cookie alone.
func (c *Client) Refresh(ctx context.Context) (*RefreshResponse, error) {
	spec := requestSpec{
		method: http.MethodPost,
		path:   "/auth/refresh",
		body:   jsonBody(map[string]string{}),
	}
	var payload RefreshResponse
	if err := c.doJSON(ctx, spec, &payload); err != nil {
		return nil, err
	}
	if payload.AccessToken == "" {
		return nil, errors.New("refresh response missing access token")
	}
	return &payload, nil
}

// Logout invalidates the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, requestSpec{method: http.MethodPost, path: "/auth/logout", auth: true}, nil)
}

// ClearMemory asks the backend to drop session-scoped AI resources.
func (c *Client) ClearMemory(ctx context.Context, sessionID string) error {
	spec := requestSpec{
		method: http.MethodPost,
		path:   "/ai/clear-memory/" + escapeSegment(sessionID),
		auth:   true,
	}
	return c.doJSON(ctx, spec, nil)
}
