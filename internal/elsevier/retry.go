// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package elsevier

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Retry budget defaults.
const (
	defaultMaxRetries     = 5
	defaultNetworkRetries = 2
)

// Policy bounds the retry loop independently of any call site so the
// policy itself is testable: MaxRetries caps retries against throttling
// responses, NetworkRetries caps retries after transport-level failures.
type Policy struct {
	MaxRetries     int
	NetworkRetries int
}

func (p Policy) withDefaults() Policy {
	if p.MaxRetries <= 0 {
		p.MaxRetries = defaultMaxRetries
	}
	if p.NetworkRetries <= 0 {
		p.NetworkRetries = defaultNetworkRetries
	}
	return p
}

// DoWithRetry executes an HTTP request through the limiter and retries on
// HTTP 429 (Too Many Requests) and on network-level failures. Each 429
// escalates the limiter's interval before the same request is reissued, so
// every retry waits strictly longer than the baseline. When the throttle
// budget is exhausted the call fails with *QuotaExceededError; when the
// network budget is exhausted the transport error is returned wrapped.
// Any other response, success or failure, is returned to the caller as-is
// with its body open.
func DoWithRetry(ctx context.Context, client *http.Client, limiter *Limiter, req *http.Request, policy Policy) (*http.Response, error) {
	policy = policy.withDefaults()

	var throttled, netFailures int
	for {
		if err := limiter.Acquire(ctx); err != nil {
			return nil, err
		}

		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			netFailures++
			if netFailures > policy.NetworkRetries {
				return nil, fmt.Errorf("network failure after %d retries: %w", policy.NetworkRetries, err)
			}
			limiter.Throttle()
			continue
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			limiter.Success(resp)
			return resp, nil
		}

		// Drain and close the body before retrying.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		limiter.Throttle()
		throttled++
		if throttled > policy.MaxRetries {
			return nil, &QuotaExceededError{URL: req.URL.String(), Attempts: throttled}
		}
	}
}
