// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"strconv"

	"github.com/pdiddy/elsevier-harvest/internal/normalize"
)

// searchEnvelope is the opensearch response wrapper shared by the
// ScienceDirect and Scopus search APIs. The numeric pagination fields
// arrive as JSON strings.
type searchEnvelope struct {
	SearchResults *searchResults `json:"search-results"`
}

type searchResults struct {
	TotalResults string            `json:"opensearch:totalResults"`
	StartIndex   string            `json:"opensearch:startIndex"`
	ItemsPerPage string            `json:"opensearch:itemsPerPage"`
	Entries      []normalize.Entry `json:"entry"`
}

// total parses opensearch:totalResults; malformed or missing counts parse
// as 0, which terminates pagination.
func (r *searchResults) total() int {
	n, err := strconv.Atoi(r.TotalResults)
	if err != nil {
		return 0
	}
	return n
}

// usableEntries filters out the placeholder error entry ScienceDirect
// returns for empty result sets.
func (r *searchResults) usableEntries() []normalize.Entry {
	entries := make([]normalize.Entry, 0, len(r.Entries))
	for _, e := range r.Entries {
		if e.Error != "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries
}
