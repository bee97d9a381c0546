// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package elsevier

import "fmt"

// QuotaExceededError reports that a request kept hitting the provider's
// throttling signal until the retry budget ran out. The current query is
// abandoned; pages already persisted remain valid.
type QuotaExceededError struct {
	URL      string
	Attempts int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded after %d attempts: %s", e.Attempts, e.URL)
}

// RequestFailedError reports a non-throttling HTTP error or exhausted
// network retries. Page identifies the failing page (1-based) so the
// caller can report or resume; it is 0 for non-paginated calls.
type RequestFailedError struct {
	Page       int
	StatusCode int
	URL        string
	Err        error
}

func (e *RequestFailedError) Error() string {
	switch {
	case e.Err != nil && e.Page > 0:
		return fmt.Sprintf("request failed on page %d: %s: %v", e.Page, e.URL, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("request failed: %s: %v", e.URL, e.Err)
	case e.Page > 0:
		return fmt.Sprintf("request failed on page %d: HTTP %d from %s", e.Page, e.StatusCode, e.URL)
	default:
		return fmt.Sprintf("request failed: HTTP %d from %s", e.StatusCode, e.URL)
	}
}

func (e *RequestFailedError) Unwrap() error { return e.Err }
