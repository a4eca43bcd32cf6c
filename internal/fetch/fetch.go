// Package fetch downloads media referenced by URL so that it can be
// re-uploaded to the X API.  Downloads are retried on transient failures,
// unlike the upload protocol itself, which never retries.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
)

// fallbackContentType is assumed when the origin does not declare one.
const fallbackContentType = "image/jpeg"

// maxRetries is the number of retry attempts for a failed download.
const maxRetries = 3

// Client downloads remote media.
type Client struct {
	cl *retryablehttp.Client
	lg *slog.Logger
}

// New creates a download client.
func New(lg *slog.Logger) *Client {
	if lg == nil {
		lg = slog.Default()
	}
	rc := retryablehttp.NewClient()
	rc.RetryMax = maxRetries
	rc.Logger = nil // messages go through our own logger
	return &Client{cl: rc, lg: lg}
}

// Fetch downloads the resource at rawURL and returns its bytes and declared
// content type.  A missing Content-Type header defaults to image/jpeg, which
// matches what posting clients conventionally assume for attached media.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	resp, err := c.cl.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("fetch %s: status %s", rawURL, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: read body: %w", rawURL, err)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = fallbackContentType
	}
	c.lg.DebugContext(ctx, "media fetched", "url", rawURL, "content_type", contentType, "bytes", len(data))
	return data, contentType, nil
}
