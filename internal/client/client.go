// Package client talks to the sweet shop REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout bounds every outbound request.
const DefaultTimeout = 15 * time.Second

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// WithRequestID returns a context whose outbound calls carry id as their
// X-Request-Id instead of a fresh one.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id set by WithRequestID, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned %d", e.Status)
	}
	return fmt.Sprintf("api returned %d: %s", e.Status, e.Message)
}

// UserMessage is the server-supplied error text.
func (e *APIError) UserMessage() string {
	return e.Message
}

// Client is a JSON client for the API rooted at BaseURL.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Metrics *Metrics
}

// New creates a client for baseURL with the default timeout.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: DefaultTimeout},
	}
}

// do sends a JSON request and decodes a JSON response into out (if non-nil).
// op names the call for metrics.
func (c *Client) do(ctx context.Context, op, method, path, token string, body, out any) error {
	start := time.Now()
	status, err := c.roundTrip(ctx, method, path, token, body, out)
	c.Metrics.observe(op, status, err, time.Since(start))
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path, token string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	id := RequestID(ctx)
	if id == "" {
		id = uuid.NewString()
	}
	req.Header.Set(RequestIDHeader, id)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, readAPIError(resp)
	}

	if out == nil {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
	}
	return resp.StatusCode, nil
}

// readAPIError turns a {"error": "..."} or {"message": "..."} body into an
// *APIError. Bodies that are not JSON leave Message empty.
func readAPIError(resp *http.Response) error {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(data, &body)

	msg := body.Error
	if msg == "" {
		msg = body.Message
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
