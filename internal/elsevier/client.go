// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package elsevier

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pdiddy/elsevier-harvest/pkg/types"
)

// Client issues authenticated requests against the Elsevier APIs. All
// outbound calls pass through the Limiter and retry Policy, so one Client
// instance carries the complete rate state for a run.
type Client struct {
	HTTP    *http.Client
	Limiter *Limiter
	Retry   Policy

	// APIKey is sent as the X-ELS-APIKey header on every request.
	APIKey string

	// InstToken is the optional institutional token, sent as
	// X-ELS-Insttoken when non-empty.
	InstToken string

	// UserAgent is the User-Agent header value.
	UserAgent string
}

// NewClient builds a Client from the shared HTTP and rate-limit settings.
func NewClient(httpCfg types.HTTPConfig, rateCfg types.RateLimitConfig, apiKey, instToken string) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: httpCfg.Timeout},
		Limiter: NewLimiter(rateCfg),
		Retry: Policy{
			MaxRetries:     rateCfg.MaxRetries,
			NetworkRetries: rateCfg.NetworkRetries,
		},
		APIKey:    apiKey,
		InstToken: instToken,
		UserAgent: httpCfg.UserAgent,
	}
}

// Get issues a GET request with the authentication headers, rate limiting,
// and retry policy applied. params may be nil. The accept value is sent as
// the Accept header ("application/json" for API calls, "*/*" for binary
// object downloads). The response body is open on return; the caller must
// close it.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values, accept string) (*http.Response, error) {
	if len(params) > 0 {
		rawURL = rawURL + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &RequestFailedError{URL: rawURL, Err: err}
	}
	req.Header.Set("X-ELS-APIKey", c.APIKey)
	if c.InstToken != "" {
		req.Header.Set("X-ELS-Insttoken", c.InstToken)
	}
	req.Header.Set("Accept", accept)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	return DoWithRetry(ctx, c.HTTP, c.Limiter, req, c.Retry)
}
