// Package xapi is a minimal client for the X (Twitter) REST API v2,
// covering the operations that the MCP tool layer exposes.  Every operation
// has a fixed request and response schema; optional response fields are
// expressed as omitempty struct fields rather than probed at runtime.
//
// One Client is constructed per credential set and passed explicitly to its
// consumers; the package holds no global state.
package xapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
)

// DefaultBaseURL is the X API v2 endpoint prefix.
const DefaultBaseURL = "https://api.twitter.com/2"

// Client calls the X API v2 on behalf of one authenticated user.
type Client struct {
	cl      *http.Client
	baseURL string
	token   string

	// mu guards the lazily resolved id of the authenticated user, which the
	// engagement endpoints (likes, reposts, follows) require in the URL.
	mu   sync.Mutex
	meID string
}

// Option is the Client constructor option.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for all requests.
func WithHTTPClient(cl *http.Client) Option {
	return func(c *Client) {
		if cl != nil {
			c.cl = cl
		}
	}
}

// WithBaseURL overrides the API endpoint prefix.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.baseURL = base
		}
	}
}

// New creates a Client authenticating with the given bearer token.
func New(token string, opt ...Option) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("token is empty")
	}
	c := &Client{
		cl:      http.DefaultClient,
		baseURL: DefaultBaseURL,
		token:   token,
	}
	for _, o := range opt {
		o(c)
	}
	return c, nil
}

// APIError is a non-2xx response from the API, carrying the status code and
// the raw response body for diagnostics.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Body)
}

// do issues one request and decodes the JSON response into out (when out is
// non-nil).  A non-2xx status is returned as *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, reqBody, out any) error {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.cl.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Body: string(data)}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, reqBody, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, reqBody, out)
}

func (c *Client) del(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out)
}

// authedUserID returns the id of the authenticated user, resolving it via
// [Client.Me] on first use.  A successful lookup is cached for the lifetime
// of the Client; a failed one is retried on the next call.
func (c *Client) authedUserID(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.meID != "" {
		return c.meID, nil
	}
	u, err := c.Me(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve authenticated user: %w", err)
	}
	c.meID = u.ID
	return c.meID, nil
}
