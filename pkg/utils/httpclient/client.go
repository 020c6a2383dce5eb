// Package httpclient provides a small HTTP client wrapper shared by the
// model provider implementations.
//
// Calls are made exactly once: failures surface to the caller instead of
// being retried, so the caller stays in control of its latency budget.
// Timeouts come from the request context and the client timeout.
package httpclient

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bookrag-io/bookrag/pkg/utils/json"
)

// Client is a wrapper around http.Client.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new HTTP client wrapper with the given timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Do executes an HTTP request once.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// DoJSON executes a request, decodes the JSON response into v, and ensures
// the body is closed. Status codes >= 400 are returned as errors carrying
// the response body.
func (c *Client) DoJSON(req *http.Request, v interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request failed with status code %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// ReadBody executes a request and returns the raw response body.
// Status codes >= 400 are returned as errors carrying the body.
func (c *Client) ReadBody(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("request failed with status code %d: %s", resp.StatusCode, string(bodyBytes))
	}
	return bodyBytes, nil
}
