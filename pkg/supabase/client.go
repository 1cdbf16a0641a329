// Package supabase provides a minimal REST client for the orders table.
// The pipeline only needs partial-field PATCH by order code; the upstream
// treats PATCH as idempotent, so re-issuing a payload is always safe.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the record-store operations used by the pipeline.
type Client interface {
	// PatchOrder updates the given columns of the row addressed by
	// orderCode.
	PatchOrder(ctx context.Context, orderCode string, fields map[string]any) error
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a record-store client for the given project URL and
// service key.
func NewClient(baseURL, apiKey string, opts ...Option) Client {
	c := &httpClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) PatchOrder(ctx context.Context, orderCode string, fields map[string]any) error {
	body, err := json.Marshal(fields)
	if err != nil {
		return eris.Wrap(err, "supabase: marshal patch")
	}

	endpoint := fmt.Sprintf("%s/rest/v1/orders?order_code=eq.%s", c.baseURL, url.QueryEscape(orderCode))
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "supabase: build request")
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "supabase: patch order %s", orderCode)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return eris.Errorf("supabase: patch order %s: status %d: %s", orderCode, resp.StatusCode, string(msg))
	}
	return nil
}
