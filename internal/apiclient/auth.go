package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"uia-atlas/atlas-portal/pkg/catalog"
)

// Login exchanges credentials for a token and signs the session in.
func (c *Client) Login(ctx context.Context, email, password string) (*catalog.Credentials, error) {
	data, err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/api/auth/login",
		body:      map[string]string{"email": email, "password": password},
		anonymous: true,
	})
	if err != nil {
		return nil, err
	}
	creds, err := decodeInto(credentialsSchema, data)
	if err != nil {
		return nil, err
	}
	if c.session == nil {
		return nil, errors.New("client has no session to sign in")
	}
	if err := c.session.SignIn(creds.AccessToken, creds.User); err != nil {
		return nil, fmt.Errorf("login succeeded but session could not be stored: %w", err)
	}
	return creds, nil
}

// Logout destroys the local session. Tokens are stateless on the server.
func (c *Client) Logout() error {
	if c.session == nil {
		return nil
	}
	return c.session.Destroy()
}

// Me returns the user the current token belongs to.
func (c *Client) Me(ctx context.Context) (*catalog.User, error) {
	data, err := c.do(ctx, request{method: http.MethodGet, path: "/api/auth/me", auth: true})
	if err != nil {
		return nil, err
	}
	return decodeInto(userSchema, data)
}
