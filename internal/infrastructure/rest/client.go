// Package rest binds the catalog service's HTTP API to the core's port
// interfaces. One Client carries the base URL, the bearer token source, and
// the 401 invalidation hook shared by every binding.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/openshelf/libctl/internal/core/domain"
)

// APIError is a non-2xx answer from the catalog service. Message carries the
// server-supplied error text when the response body had one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
}

// ServerMessage exposes the server's human-readable message for display.
func (e *APIError) ServerMessage() string {
	return e.Message
}

// Client is the shared HTTP transport for all API bindings.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger

	// token returns the current bearer token, or "" when no session exists.
	token func() string
	// onUnauthorized runs when an authenticated request gets a 401 back:
	// the server no longer honours the token, so the session must be
	// cleared before the error propagates.
	onUnauthorized func()
}

func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
		token:   func() string { return "" },
	}
}

// SetTokenSource installs the function consulted for the bearer token on
// every request.
func (c *Client) SetTokenSource(fn func() string) {
	c.token = fn
}

// SetUnauthorizedHook installs the session invalidation hook.
func (c *Client) SetUnauthorizedHook(fn func()) {
	c.onUnauthorized = fn
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, "", out)
}

func (c *Client) post(ctx context.Context, path string, query url.Values, body, out any) error {
	return c.do(ctx, http.MethodPost, path, query, body, "application/json", out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, "application/json", out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, "", nil)
}

// postForm sends an application/x-www-form-urlencoded body; the librarian
// borrowing endpoint is the only consumer.
func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, form.Encode(), "application/x-www-form-urlencoded", out)
}

// getText fetches a plain-text response body.
func (c *Client) getText(ctx context.Context, path string) (string, error) {
	var text string
	if err := c.do(ctx, http.MethodGet, path, nil, nil, "", &text); err != nil {
		return "", err
	}
	return text, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, contentType string, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		encoded, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	authenticated := false
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
		authenticated = true
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.errorFrom(resp, method, path, authenticated)
	}

	switch target := out.(type) {
	case nil:
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
	case *string:
		raw, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("read response body: %w", readErr)
		}
		*target = string(raw)
	default:
		if decodeErr := json.NewDecoder(resp.Body).Decode(target); decodeErr != nil {
			return fmt.Errorf("decode response body: %w", decodeErr)
		}
	}
	return nil
}

// errorFrom converts a non-2xx response into an *APIError, firing the 401
// hook when an authenticated request was rejected.
func (c *Client) errorFrom(resp *http.Response, method, path string, authenticated bool) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: serverMessage(resp.Body)}

	c.log.Debug().
		Int("status", resp.StatusCode).
		Str("method", method).
		Str("path", path).
		Str("message", apiErr.Message).
		Msg("request failed")

	if resp.StatusCode == http.StatusUnauthorized {
		if authenticated && c.onUnauthorized != nil {
			c.log.Warn().Str("method", method).Str("path", path).Msg("server rejected session token")
			c.onUnauthorized()
		}
		return fmt.Errorf("%w: %w", domain.ErrUnauthorized, apiErr)
	}

	return apiErr
}

// errorEnvelope covers both error body shapes the service emits.
type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func serverMessage(body io.Reader) string {
	var envelope errorEnvelope
	if err := json.NewDecoder(body).Decode(&envelope); err != nil {
		return ""
	}
	if envelope.Error != "" {
		return envelope.Error
	}
	return envelope.Message
}

// statusIs reports whether err is an *APIError with the given status code.
func statusIs(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// mapStatus wires a well-known status code on err to a domain sentinel while
// keeping the server message available via errors.As.
func mapStatus(err error, code int, sentinel error) error {
	if err == nil {
		return nil
	}
	if statusIs(err, code) {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return err
}
