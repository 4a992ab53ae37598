package https

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/streamkit/popcorn/internal/lib/fails"
	"github.com/streamkit/popcorn/internal/lib/retry"
	"golang.org/x/time/rate"
)

// ErrAuth marks a 401/403 from an authenticated endpoint. Callers must treat
// it differently from a plain network failure, so it is classified here, at
// the transport boundary.
var ErrAuth = errors.New("authentication failed")

var httpClient = &http.Client{Timeout: 30 * time.Second}

type Client struct {
	BaseURL string
	Header  http.Header
	// Limiter, when set, throttles calls to the upstream.
	Limiter *rate.Limiter
}

func (c *Client) Get(ctx context.Context, uri string, response any, header http.Header) error {
	return c.Request(ctx, http.MethodGet, uri, nil, response, header)
}

func (c *Client) Post(ctx context.Context, uri string, request any, response any, header http.Header) error {
	return c.Request(ctx, http.MethodPost, uri, request, response, header)
}

func (c *Client) Delete(ctx context.Context, uri string, header http.Header) error {
	return c.Request(ctx, http.MethodDelete, uri, nil, nil, header)
}

func (c *Client) Request(ctx context.Context, method, uri string, request any, response any, header http.Header) error {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	var body io.Reader
	if request != nil {
		bodyJSON, err := json.Marshal(request)
		if err != nil {
			return fmt.Errorf("marshalling request (%+v): %w", request, err)
		}
		body = bytes.NewBuffer(bodyJSON)
	}

	// clone header
	h := make(http.Header, len(c.Header))
	for k, v := range c.Header {
		h[k] = slices.Clone(v)
	}
	for k, v := range header {
		h[k] = slices.Clone(v)
	}

	url := c.BaseURL + uri
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header = h
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return fails.New("too many requests", "url", url, "retry-after", resp.Header.Get("Retry-After"))
		case http.StatusUnauthorized, http.StatusForbidden:
			return retry.NewPermanentError(fails.NewWithErr(ErrAuth, "rejected request", "url", url, "status", resp.StatusCode))
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.NewPermanentError(fmt.Errorf("reading response body: %w", err))
		}
		return retry.NewPermanentError(fmt.Errorf("response status code %d for %s; response: %s", resp.StatusCode, url, string(body)))
	}

	if response != nil {
		err = json.NewDecoder(resp.Body).Decode(response)
		if err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
