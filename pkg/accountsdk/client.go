// Package accountsdk is a small Go client for the account service. It covers
// the four account operations and the health endpoints, and is also what the
// service's own integration tests drive requests through.
package accountsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client talks to one account service instance.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SignIn exchanges credentials for a bearer token.
func (c *Client) SignIn(ctx context.Context, username, password string) (*SignInResponse, error) {
	var out SignInResponse
	err := c.postJSON(ctx, "/signin", SignInRequest{
		Username: username,
		Password: password,
	}, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SignUp registers a new account under the caller-chosen id.
func (c *Client) SignUp(ctx context.Context, id int64, username, email, password string) error {
	var out MessageResponse
	return c.postJSON(ctx, "/signup", SignUpRequest{
		ID:       &id,
		Username: username,
		Email:    email,
		Password: password,
	}, nil, &out)
}

// Edit changes the username and/or email of the account with the given id.
// Empty fields are left unchanged. Any valid token is accepted; the server
// does not bind the token's subject to the target id.
func (c *Client) Edit(ctx context.Context, id int64, token, newUsername, email string) error {
	var out MessageResponse
	return c.postJSON(ctx, "/edit", EditRequest{
		ID:          &id,
		Token:       token,
		NewUsername: newUsername,
		Email:       email,
	}, map[string]string{"token": token}, &out)
}

// Delete removes the account with the given id.
func (c *Client) Delete(ctx context.Context, id int64) error {
	var out MessageResponse
	return c.postJSON(ctx, "/delete", DeleteRequest{ID: &id}, nil, &out)
}

// Livez reports basic service liveness.
func (c *Client) Livez(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/livez", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("accountsdk: decode response: %w", err)
	}
	return &out, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in any, headers map[string]string, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("accountsdk: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("accountsdk: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("accountsdk: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg MessageResponse
		_ = json.NewDecoder(resp.Body).Decode(&msg)
		return &APIError{StatusCode: resp.StatusCode, Message: msg.Message}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("accountsdk: decode response: %w", err)
	}
	return nil
}
