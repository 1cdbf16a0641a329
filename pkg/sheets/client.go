// Package sheets posts finished reports to the spreadsheet webhook (a
// Google Apps Script deployment). Write-only; there is no read-back.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the spreadsheet webhook operations.
type Client interface {
	// UpdateResult mirrors the final report text for an order.
	UpdateResult(ctx context.Context, orderCode, document string) error
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
	webhookURL string
	http       *http.Client
}

// NewClient creates a webhook client for the given Apps Script URL.
func NewClient(webhookURL string, opts ...Option) Client {
	c := &httpClient{
		webhookURL: webhookURL,
		http: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type updatePayload struct {
	Action    string `json:"action"`
	OrderCode string `json:"orderCode"`
	MDResult  string `json:"mdResult"`
}

func (c *httpClient) UpdateResult(ctx context.Context, orderCode, document string) error {
	body, err := json.Marshal(updatePayload{
		Action:    "updateMdResult",
		OrderCode: orderCode,
		MDResult:  document,
	})
	if err != nil {
		return eris.Wrap(err, "sheets: marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "sheets: build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "sheets: post result %s", orderCode)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return eris.Errorf("sheets: post result %s: status %d: %s", orderCode, resp.StatusCode, string(msg))
	}
	return nil
}
