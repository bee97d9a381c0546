// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics annotates harvested records with PlumX news-mention and
// policy-citation counts.
package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/elsevier-harvest/internal/elsevier"
	"github.com/pdiddy/elsevier-harvest/pkg/types"
)

// plumxBase is the PlumX per-DOI analytics endpoint. Declared as a var so
// tests can substitute an httptest server.
var plumxBase = "https://api.elsevier.com/analytics/plumx/doi/"

// PlumX response structures. Counts are nested two levels deep: categories
// (citation, mention, usage, ...) each hold typed count totals.
type plumxResponse struct {
	IDValue         string          `json:"id_value"`
	CountCategories []countCategory `json:"count_categories"`
}

type countCategory struct {
	Name       string      `json:"name"`
	CountTypes []countType `json:"count_types"`
}

type countType struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
}

// Annotator fetches PlumX metrics for records one DOI at a time, paced by
// the client's rate limiter.
type Annotator struct {
	Client *elsevier.Client
	Log    zerolog.Logger
}

// Summary reports the outcome of an annotation batch.
type Summary struct {
	Annotated int
	NoData    int
	Failed    int
}

// Annotate fills in NewsMentions and PolicyCitations for each record in
// place. Records without a DOI and records the PlumX API has no data for
// keep their NotAvailable counts; per-record failures are logged and do
// not abort the batch.
func (a *Annotator) Annotate(ctx context.Context, records []types.Record) (Summary, error) {
	var summary Summary
	for i := range records {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		doi := records[i].DOI
		if doi == "" || doi == types.NotAvailable {
			summary.NoData++
			a.Log.Warn().
				Str("id", records[i].ID).
				Msg("no PlumX data: record missing DOI")
			continue
		}

		news, policy, err := a.fetch(ctx, doi)
		if err != nil {
			var quota *elsevier.QuotaExceededError
			if errors.As(err, &quota) {
				return summary, err
			}
			summary.Failed++
			a.Log.Warn().
				Str("doi", doi).
				Err(err).
				Msg("PlumX fetch failed")
			continue
		}
		if news < 0 {
			summary.NoData++
			a.Log.Info().
				Str("doi", doi).
				Msg("no PlumX data for article")
			continue
		}

		records[i].NewsMentions = strconv.Itoa(news)
		records[i].PolicyCitations = strconv.Itoa(policy)
		summary.Annotated++
	}
	return summary, nil
}

// fetch retrieves one DOI's metrics. It returns (-1, -1, nil) when the
// article exists but carries no PlumX count categories.
func (a *Annotator) fetch(ctx context.Context, doi string) (news, policy int, err error) {
	reqURL := plumxBase + url.PathEscape(doi)

	resp, err := a.Client.Get(ctx, reqURL, nil, "application/json")
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	// PlumX returns 404 for DOIs it has never indexed.
	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return -1, -1, nil
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return 0, 0, &elsevier.RequestFailedError{StatusCode: resp.StatusCode, URL: reqURL}
	}

	var pr plumxResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return 0, 0, fmt.Errorf("parsing PlumX response: %w", err)
	}
	if len(pr.CountCategories) == 0 {
		return -1, -1, nil
	}

	news = extractCount(pr.CountCategories, "news", "mention")
	policy = extractCount(pr.CountCategories, "policy", "citation")
	return news, policy, nil
}

// extractCount finds the total for a citation type within the named
// category kind, or 0 when either is absent.
func extractCount(categories []countCategory, citationType, kind string) int {
	for _, c := range categories {
		if c.Name != kind {
			continue
		}
		for _, t := range c.CountTypes {
			if strings.Contains(strings.ToLower(t.Name), citationType) {
				return t.Total
			}
		}
	}
	return 0
}

// Rank sorts records descending by (policy citations, news mentions).
// Records with NotAvailable counts sort last.
func Rank(records []types.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		pi, ni := countValue(records[i].PolicyCitations), countValue(records[i].NewsMentions)
		pj, nj := countValue(records[j].PolicyCitations), countValue(records[j].NewsMentions)
		if pi != pj {
			return pi > pj
		}
		return ni > nj
	})
}

func countValue(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return math.MinInt64
	}
	return n
}
