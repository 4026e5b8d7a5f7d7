package forum

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultTimeout = 15 * time.Second

// Client talks to the remote gossip store.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the store at baseURL.
func NewClient(baseURL string) *Client {
	return NewClientWith(baseURL, &http.Client{Timeout: defaultTimeout})
}

// NewClientWith creates a client with a caller-supplied http.Client.
func NewClientWith(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Login registers the identity claim with the store. Success is the only
// proof of identity the client ever obtains; no token is issued.
func (c *Client) Login(ctx context.Context, username string) error {
	if strings.TrimSpace(username) == "" {
		return &ValidationError{Field: "username"}
	}
	body := struct {
		Username string `json:"username"`
	}{Username: username}
	return c.do(ctx, http.MethodPost, "/login", body, nil)
}

// do performs one round trip against the store. A nil out means the caller
// only cares about the status. Each request carries a fresh X-Request-ID so
// client and store logs can be correlated.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: method + " " + path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServerError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response for %s %s: %w", method, path, err)
	}
	return nil
}
