// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the retrying HTTP transport shared by every
// PUG-REST operation. All network failures, timeouts, non-2xx statuses,
// and response-decoding errors are treated uniformly as one failed
// attempt; callers only ever observe total success or a terminal error
// after the retry budget is spent.
package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/rebelford/CheminformaticsPackage26/pkg/types"
)

const (
	// DefaultRetries is the number of attempts per request.
	DefaultRetries = 3

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultBaseDelay is the base backoff unit. Attempt n sleeps
	// DefaultBaseDelay*n before the next try, so the waits grow
	// linearly: 2s, 4s, 6s, ...
	DefaultBaseDelay = 2 * time.Second
)

// Client issues PUG-REST requests with bounded retries and linear
// backoff. The zero value is not usable; construct with NewClient.
type Client struct {
	http      *http.Client
	userAgent string
	retries   int
	baseDelay time.Duration
	logger    zerolog.Logger
}

// NewClient builds a Client from cfg, applying defaults for unset
// fields and clamping invalid ones (retries below 1 becomes the
// default, negative base delay becomes zero). Attempt warnings and the
// terminal failure record go to logger.
func NewClient(cfg types.HTTPConfig, logger zerolog.Logger) *Client {
	retries := cfg.Retries
	if retries < 1 {
		retries = DefaultRetries
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	baseDelay := cfg.BaseDelay
	if cfg.BaseDelay == 0 {
		baseDelay = DefaultBaseDelay
	} else if baseDelay < 0 {
		baseDelay = 0
	}

	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: cfg.UserAgent,
		retries:   retries,
		baseDelay: baseDelay,
		logger:    logger,
	}
}

// GetText performs a GET request and returns the response body as text.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	var out string
	err := c.do(ctx, url,
		func() (*http.Request, error) {
			return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		},
		func(body []byte) error {
			out = string(body)
			return nil
		})
	return out, err
}

// GetJSON performs a GET request and decodes the JSON response into v.
// A malformed body counts as a failed attempt and is retried like any
// transport error.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	return c.do(ctx, url,
		func() (*http.Request, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return nil, err
			}
			req.Header.Set("Accept", "application/json")
			return req, nil
		},
		func(body []byte) error {
			if err := json.Unmarshal(body, v); err != nil {
				return fmt.Errorf("decoding JSON response: %w", err)
			}
			return nil
		})
}

// PostText performs a POST request with payload JSON-encoded as the
// request body and returns the response body as text.
func (c *Client) PostText(ctx context.Context, url string, payload any) (string, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding request payload: %w", err)
	}

	var out string
	err = c.do(ctx, url,
		func() (*http.Request, error) {
			req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
			if reqErr != nil {
				return nil, reqErr
			}
			req.Header.Set("Content-Type", "application/json")
			return req, nil
		},
		func(body []byte) error {
			out = string(body)
			return nil
		})
	return out, err
}

// PostJSON performs a POST request with a JSON-encoded payload and
// decodes the JSON response into v.
func (c *Client) PostJSON(ctx context.Context, url string, payload, v any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request payload: %w", err)
	}

	return c.do(ctx, url,
		func() (*http.Request, error) {
			req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
			if reqErr != nil {
				return nil, reqErr
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Accept", "application/json")
			return req, nil
		},
		func(body []byte) error {
			if err := json.Unmarshal(body, v); err != nil {
				return fmt.Errorf("decoding JSON response: %w", err)
			}
			return nil
		})
}

// do runs the attempt loop. newReq builds a fresh request per attempt
// (POST bodies cannot be reused), decode consumes a successful body.
// Attempts are numbered 1..retries; attempt n is followed by a
// baseDelay*n wait unless it was the last. Cancellation during a
// backoff wait returns ctx.Err().
func (c *Client) do(ctx context.Context, url string, newReq func() (*http.Request, error), decode func([]byte) error) error {
	var lastErr error

	for attempt := 1; attempt <= c.retries; attempt++ {
		lastErr = c.attempt(newReq, decode)
		if lastErr == nil {
			return nil
		}

		c.logger.Warn().
			Int("attempt", attempt).
			Int("retries", c.retries).
			Str("url", url).
			Err(lastErr).
			Msg("request attempt failed")

		if attempt == c.retries {
			break
		}

		backoff := c.baseDelay * time.Duration(attempt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	c.logger.Error().Str("url", url).Msg("all request attempts failed")
	return fmt.Errorf("all %d attempts failed for %s: %w", c.retries, url, lastErr)
}

// attempt issues one request and hands the body to decode.
func (c *Client) attempt(newReq func() (*http.Request, error), decode func([]byte) error) error {
	req, err := newReq()
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, req.URL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	return decode(body)
}
