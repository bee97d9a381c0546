// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/elsevier-harvest/internal/elsevier"
	"github.com/pdiddy/elsevier-harvest/internal/normalize"
	"github.com/pdiddy/elsevier-harvest/pkg/types"
)

// fakeProvider serves a deterministic result set through the opensearch
// envelope, honoring start/count and an optional per-page cap that forces
// short pages.
type fakeProvider struct {
	total     int
	shortPage int // max entries per page regardless of requested count; 0 = honor count
	failPage  int // 1-based request index to fail with HTTP 500; 0 = never
	calls     int32
}

func (p *fakeProvider) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		call := atomic.AddInt32(&p.calls, 1)
		if p.failPage > 0 && int(call) == p.failPage {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		start, _ := strconv.Atoi(r.URL.Query().Get("start"))
		count, _ := strconv.Atoi(r.URL.Query().Get("count"))
		if p.shortPage > 0 && count > p.shortPage {
			count = p.shortPage
		}

		var entries []map[string]any
		for i := start; i < start+count && i < p.total; i++ {
			entries = append(entries, map[string]any{
				"prism:doi":             fmt.Sprintf("10.1016/test.%04d", i),
				"dc:title":              fmt.Sprintf("Article %d", i),
				"prism:publicationName": "Journal of Testing",
				"prism:coverDate":       "2024-01-15",
				"dc:creator":            "Doe, J.",
			})
		}

		envelope := map[string]any{
			"search-results": map[string]any{
				"opensearch:totalResults": strconv.Itoa(p.total),
				"opensearch:startIndex":   strconv.Itoa(start),
				"opensearch:itemsPerPage": strconv.Itoa(len(entries)),
				"entry":                   entries,
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(envelope)
	}
}

func testFetcher(ts *httptest.Server) *Fetcher {
	return &Fetcher{
		Client: &elsevier.Client{
			HTTP: ts.Client(),
			Limiter: elsevier.NewLimiter(types.RateLimitConfig{
				MinInterval: time.Millisecond,
			}),
			APIKey: "test-key",
		},
		Log: zerolog.Nop(),
	}
}

func testCriteria(maxRecords, pageSize int) elsevier.Criteria {
	return elsevier.Criteria{
		Keywords:   []string{"test"},
		Source:     types.SourceScopus,
		MaxRecords: maxRecords,
		PageSize:   pageSize,
	}
}

func withTestBase(t *testing.T, url string) {
	t.Helper()
	old := scopusSearchBase
	scopusSearchBase = url
	t.Cleanup(func() { scopusSearchBase = old })
}

func collectPages(t *testing.T, f *Fetcher, criteria elsevier.Criteria) ([]Page, error) {
	t.Helper()
	var pages []Page
	err := f.FetchAll(context.Background(), criteria, func(p Page) error {
		pages = append(pages, p)
		return nil
	})
	return pages, err
}

func TestFetchAllSinglePage(t *testing.T) {
	p := &fakeProvider{total: 7}
	ts := httptest.NewServer(p.handler())
	defer ts.Close()
	withTestBase(t, ts.URL)

	pages, err := collectPages(t, testFetcher(ts), testCriteria(0, 10))
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("len(pages) = %d, want 1", len(pages))
	}
	if len(pages[0].Entries) != 7 {
		t.Errorf("entries = %d, want 7", len(pages[0].Entries))
	}
	if pages[0].Total != 7 {
		t.Errorf("total = %d, want 7", pages[0].Total)
	}
}

func TestFetchAllCursorAdvancesByReturnedCount(t *testing.T) {
	// Provider caps pages at 4 entries even though 10 are requested.
	// The cursor must advance by 4, not 10, so no entry is skipped.
	p := &fakeProvider{total: 10, shortPage: 4}
	ts := httptest.NewServer(p.handler())
	defer ts.Close()
	withTestBase(t, ts.URL)

	pages, err := collectPages(t, testFetcher(ts), testCriteria(0, 10))
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}

	wantStarts := []int{0, 4, 8}
	if len(pages) != len(wantStarts) {
		t.Fatalf("len(pages) = %d, want %d", len(pages), len(wantStarts))
	}
	seen := make(map[string]bool)
	for i, page := range pages {
		if page.Start != wantStarts[i] {
			t.Errorf("page %d start = %d, want %d", i+1, page.Start, wantStarts[i])
		}
		for _, e := range page.Entries {
			if seen[e.DOI] {
				t.Errorf("entry %s served twice", e.DOI)
			}
			seen[e.DOI] = true
		}
	}
	if len(seen) != 10 {
		t.Errorf("distinct entries = %d, want 10", len(seen))
	}
}

func TestFetchAllCallBound(t *testing.T) {
	// Pagination must finish within ceil(total/pageSize)+1 requests.
	tests := []struct {
		total, pageSize int
	}{
		{0, 10}, {1, 10}, {10, 10}, {11, 10}, {25, 10}, {50, 7},
	}
	for _, tt := range tests {
		name := fmt.Sprintf("total=%d pageSize=%d", tt.total, tt.pageSize)
		t.Run(name, func(t *testing.T) {
			p := &fakeProvider{total: tt.total}
			ts := httptest.NewServer(p.handler())
			defer ts.Close()
			withTestBase(t, ts.URL)

			_, err := collectPages(t, testFetcher(ts), testCriteria(0, tt.pageSize))
			if err != nil {
				t.Fatalf("FetchAll: %v", err)
			}

			bound := tt.total/tt.pageSize + 2
			if calls := int(atomic.LoadInt32(&p.calls)); calls > bound {
				t.Errorf("calls = %d, want <= %d", calls, bound)
			}
		})
	}
}

func TestFetchAllMaxRecordsCeiling(t *testing.T) {
	p := &fakeProvider{total: 100}
	ts := httptest.NewServer(p.handler())
	defer ts.Close()
	withTestBase(t, ts.URL)

	pages, err := collectPages(t, testFetcher(ts), testCriteria(20, 10))
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}

	fetched := 0
	for _, page := range pages {
		fetched += len(page.Entries)
	}
	if fetched != 20 {
		t.Errorf("fetched = %d, want 20", fetched)
	}
	if calls := int(atomic.LoadInt32(&p.calls)); calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestFetchAllMidRunFailureKeepsEarlierPages(t *testing.T) {
	// Page 2 fails with a non-throttling error: page 1 stays emitted and
	// the error names page 2.
	p := &fakeProvider{total: 30, failPage: 2}
	ts := httptest.NewServer(p.handler())
	defer ts.Close()
	withTestBase(t, ts.URL)

	pages, err := collectPages(t, testFetcher(ts), testCriteria(0, 10))
	if err == nil {
		t.Fatal("expected error")
	}

	var rf *elsevier.RequestFailedError
	if !errors.As(err, &rf) {
		t.Fatalf("error = %v, want *RequestFailedError", err)
	}
	if rf.Page != 2 {
		t.Errorf("failing page = %d, want 2", rf.Page)
	}
	if rf.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rf.StatusCode)
	}

	if len(pages) != 1 {
		t.Fatalf("emitted pages = %d, want 1", len(pages))
	}
	if len(pages[0].Entries) != 10 {
		t.Errorf("page 1 entries = %d, want 10", len(pages[0].Entries))
	}
}

func TestFetchAllRerunReproducesRecords(t *testing.T) {
	// Re-running the same query from page 1 yields identical records for
	// the pages fetched before a failure.
	norm := func(pages []Page) []types.Record {
		n := normalize.New(zerolog.Nop())
		var records []types.Record
		for _, p := range pages {
			records = append(records, n.Page(types.SourceScopus, p.Entries)...)
		}
		return records
	}

	failing := &fakeProvider{total: 30, failPage: 3}
	ts1 := httptest.NewServer(failing.handler())
	defer ts1.Close()
	withTestBase(t, ts1.URL)

	partialPages, err := collectPages(t, testFetcher(ts1), testCriteria(0, 10))
	if err == nil {
		t.Fatal("expected failure on page 3")
	}
	partial := norm(partialPages)

	clean := &fakeProvider{total: 30}
	ts2 := httptest.NewServer(clean.handler())
	defer ts2.Close()
	withTestBase(t, ts2.URL)

	fullPages, err := collectPages(t, testFetcher(ts2), testCriteria(0, 10))
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	full := norm(fullPages)

	if len(partial) != 20 {
		t.Fatalf("partial records = %d, want 20", len(partial))
	}
	for i, r := range partial {
		if r != full[i] {
			t.Errorf("record %d differs between runs: %+v vs %+v", i, r, full[i])
		}
	}
}

func TestFetchAllQuotaExceededPassesThrough(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()
	withTestBase(t, ts.URL)

	f := testFetcher(ts)
	f.Client.Retry = elsevier.Policy{MaxRetries: 1, NetworkRetries: 1}

	_, err := collectPages(t, f, testCriteria(0, 10))
	var quota *elsevier.QuotaExceededError
	if !errors.As(err, &quota) {
		t.Fatalf("error = %v, want *QuotaExceededError", err)
	}
}

func TestFetchAllEmptyResultSet(t *testing.T) {
	// ScienceDirect signals empty result sets with a placeholder error
	// entry rather than an empty array.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"search-results":{
			"opensearch:totalResults":"0",
			"opensearch:startIndex":"0",
			"opensearch:itemsPerPage":"1",
			"entry":[{"error":"Result set was empty"}]
		}}`)
	}))
	defer ts.Close()

	old := scienceDirectSearchBase
	scienceDirectSearchBase = ts.URL
	t.Cleanup(func() { scienceDirectSearchBase = old })

	criteria := testCriteria(0, 10)
	criteria.Source = types.SourceScienceDirect

	pages, err := collectPages(t, testFetcher(ts), criteria)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(pages) != 1 || len(pages[0].Entries) != 0 {
		t.Errorf("expected one empty page, got %+v", pages)
	}
}
