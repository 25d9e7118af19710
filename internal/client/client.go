// Package client is a typed HTTP client for the diary API plus an
// optimistic feed store for interactive front ends.
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

	"github.com/sethvargo/go-retry"
)

// Session is the caller's credential. It is passed to every call
// explicitly; the client keeps no login state of its own.
type Session struct {
	Token  string
	UserID int64
}

// IsZero reports whether the session carries no token.
func (s Session) IsZero() bool { return s.Token == "" }

// Client talks to one API base URL, e.g. http://localhost:8080/api.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    uint64
	backoff    time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetries sets how often a read is retried on transport errors and
// 502/503/504. Writes are never retried.
func WithRetries(n uint64, base time.Duration) Option {
	return func(c *Client) {
		c.retries = n
		c.backoff = base
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		retries:    2,
		backoff:    200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// =====================================================
// ERRORS
// =====================================================

// APIError is a non-2xx response decoded from the failure envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
	Errors  map[string]string
	// set on 429 cooldown rejections
	DaysRemaining int
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// envelope is the common response body. Data is decoded lazily.
type envelope struct {
	Success       bool              `json:"success"`
	Message       string            `json:"message"`
	Code          string            `json:"code"`
	Data          json.RawMessage   `json:"data"`
	Meta          *Meta             `json:"meta"`
	Errors        map[string]string `json:"errors"`
	DaysRemaining int               `json:"days_remaining"`
}

// Meta is the paging block of list responses.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// =====================================================
// TRANSPORT
// =====================================================

// do sends one request and returns the raw body of a 2xx response.
func (c *Client) do(ctx context.Context, s Session, method, path string, in interface{}) ([]byte, error) {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}

	send := func(ctx context.Context) ([]byte, error) {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if !s.IsZero() {
			req.Header.Set("Authorization", "Bearer "+s.Token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return raw, nil
		}
		return nil, decodeError(resp.StatusCode, raw)
	}

	if method != http.MethodGet || c.retries == 0 {
		return send(ctx)
	}

	var out []byte
	b := retry.WithMaxRetries(c.retries, retry.NewExponential(c.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		raw, err := send(ctx)
		if err != nil {
			if transient(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		out = raw
		return nil
	})
	return out, err
}

func decodeError(status int, raw []byte) error {
	apiErr := &APIError{Status: status, Message: http.StatusText(status)}
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil {
		if env.Message != "" {
			apiErr.Message = env.Message
		}
		apiErr.Code = env.Code
		apiErr.Errors = env.Errors
		apiErr.DaysRemaining = env.DaysRemaining
	}
	return apiErr
}

func transient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// call performs the request and decodes the envelope's data into out.
func (c *Client) call(ctx context.Context, s Session, method, path string, in, out interface{}) (*envelope, error) {
	raw, err := c.do(ctx, s, method, path, in)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
	}
	return &env, nil
}
