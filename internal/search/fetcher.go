// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search drives paginated queries against the ScienceDirect and
// Scopus search APIs.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/pdiddy/elsevier-harvest/internal/elsevier"
	"github.com/pdiddy/elsevier-harvest/internal/normalize"
	"github.com/pdiddy/elsevier-harvest/pkg/types"
)

// Search endpoint bases. Declared as vars so tests can substitute an
// httptest server.
var (
	scienceDirectSearchBase = "https://api.elsevier.com/content/search/sciencedirect"
	scopusSearchBase        = "https://api.elsevier.com/content/search/scopus"
)

// Page is one page of raw entries handed to the caller before the next
// page is fetched. Index is 1-based.
type Page struct {
	Index   int
	Start   int
	Total   int
	Entries []normalize.Entry
}

// Fetcher pages through a search query. All requests go through the
// client's rate limiter, one in flight at a time.
type Fetcher struct {
	Client *elsevier.Client
	Log    zerolog.Logger
}

// FetchAll issues requests page by page, invoking emit for each page
// before the next request is made. The cursor advances by the entry count
// actually returned, so short pages are tolerated. Pagination stops when
// the cursor reaches the reported total, a page comes back empty, or the
// criteria's MaxRecords ceiling is reached.
//
// A non-throttling HTTP error stops pagination with a *RequestFailedError
// identifying the failing page; pages already emitted stay emitted.
// Exhausted throttling retries surface as *QuotaExceededError unchanged.
func (f *Fetcher) FetchAll(ctx context.Context, criteria elsevier.Criteria, emit func(Page) error) error {
	base, err := searchBase(criteria.Source)
	if err != nil {
		return err
	}

	start := 0
	for pageIndex := 1; ; pageIndex++ {
		params, err := criteria.Params(start)
		if err != nil {
			return err
		}

		results, err := f.fetchPage(ctx, base, params, pageIndex)
		if err != nil {
			return err
		}

		total := results.total()
		entries := results.usableEntries()

		if err := emit(Page{Index: pageIndex, Start: start, Total: total, Entries: entries}); err != nil {
			return err
		}

		if len(entries) == 0 {
			break
		}
		start += len(entries)

		f.Log.Info().
			Str("source", criteria.Source).
			Int("page", pageIndex).
			Int("fetched", start).
			Int("total", total).
			Msg("fetched page")

		if start >= total {
			break
		}
		if criteria.MaxRecords > 0 && start >= criteria.MaxRecords {
			f.Log.Info().
				Int("max_records", criteria.MaxRecords).
				Msg("stopping at record ceiling")
			break
		}
	}
	return nil
}

// fetchPage performs one search request and decodes the envelope.
func (f *Fetcher) fetchPage(ctx context.Context, base string, params url.Values, pageIndex int) (*searchResults, error) {
	resp, err := f.Client.Get(ctx, base, params, "application/json")
	if err != nil {
		var quota *elsevier.QuotaExceededError
		if errors.As(err, &quota) {
			return nil, err
		}
		return nil, &elsevier.RequestFailedError{Page: pageIndex, URL: base, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &elsevier.RequestFailedError{
			Page:       pageIndex,
			StatusCode: resp.StatusCode,
			URL:        base,
		}
	}

	var envelope searchEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &elsevier.RequestFailedError{Page: pageIndex, URL: base, Err: fmt.Errorf("parsing response: %w", err)}
	}
	if envelope.SearchResults == nil {
		return nil, &elsevier.RequestFailedError{Page: pageIndex, URL: base, Err: fmt.Errorf("response missing search-results envelope")}
	}
	return envelope.SearchResults, nil
}

func searchBase(source string) (string, error) {
	switch source {
	case types.SourceScienceDirect:
		return scienceDirectSearchBase, nil
	case types.SourceScopus:
		return scopusSearchBase, nil
	default:
		return "", fmt.Errorf("unknown source API %q", source)
	}
}
