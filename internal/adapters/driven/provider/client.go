package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxErrorBody limits how much of a failed response is kept.
const maxErrorBody = 4096

// Client sends JSON requests to one provider.
type Client struct {
	// Name identifies the provider in errors, e.g. "ollama".
	Name string

	BaseURL string
	HTTP    *http.Client

	// Headers are added to every request.
	Headers map[string]string

	Policy Policy
}

// NewClient creates a client with the given request timeout.
func NewClient(name, baseURL string, timeout time.Duration, policy Policy) *Client {
	return &Client{
		Name:    name,
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: timeout},
		Headers: map[string]string{},
		Policy:  policy,
	}
}

// PostJSON posts in to path and decodes the reply into out, retrying
// transient failures. Every error is a *domain.ProviderError.
func (c *Client) PostJSON(ctx context.Context, op, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.Policy.Do(ctx, func(ctx context.Context) error {
		return c.do(ctx, op, http.MethodPost, path, body, out)
	})
}

// Get issues a single GET without retries and discards the body.
// It is meant for reachability checks.
func (c *Client) Get(ctx context.Context, op, path string) error {
	return c.do(ctx, op, http.MethodGet, path, nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, body []byte, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Classify(c.Name, op, fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Classify(c.Name, op, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       string(data),
			RetryAfter: ParseRetryAfter(resp.Header),
		})
	}

	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Classify(c.Name, op, fmt.Errorf("read response: %w", err))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return Malformed(c.Name, op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
