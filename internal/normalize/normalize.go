// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize flattens provider search entries into the pipeline's
// uniform Record shape. Both ScienceDirect and Scopus responses pass
// through the same normalization so downstream consumers see a stable
// field set regardless of source.
package normalize

import (
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/elsevier-harvest/pkg/types"
)

// Entry is one article entry as returned inside the opensearch envelope.
// Field shapes differ between the two APIs; CreatorField absorbs the
// variants.
type Entry struct {
	DOI         string       `json:"prism:doi"`
	Identifier  string       `json:"dc:identifier"`
	Title       string       `json:"dc:title"`
	Publication string       `json:"prism:publicationName"`
	CoverDate   string       `json:"prism:coverDate"`
	Creator     CreatorField `json:"dc:creator"`

	// Error is set by ScienceDirect on empty result sets
	// ("Result set was empty") instead of omitting the entry array.
	Error string `json:"error"`
}

// CreatorField handles the dc:creator variants: Scopus returns a plain
// string, ScienceDirect returns either {"$": name} or a list of such
// objects.
type CreatorField string

// UnmarshalJSON accepts a string, an object with a "$" key, or a list of
// either, joining multiple names with "; ".
func (c *CreatorField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = CreatorField(s)
		return nil
	}

	type wrapped struct {
		Name string `json:"$"`
	}

	var obj wrapped
	if err := json.Unmarshal(data, &obj); err == nil {
		*c = CreatorField(obj.Name)
		return nil
	}

	var list []wrapped
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	names := make([]string, 0, len(list))
	for _, w := range list {
		if w.Name != "" {
			names = append(names, w.Name)
		}
	}
	*c = CreatorField(strings.Join(names, "; "))
	return nil
}

// Normalizer converts entries to Records and enforces the per-run
// uniqueness of (source API, article identifier). One Normalizer instance
// spans all pages of a run.
type Normalizer struct {
	log     zerolog.Logger
	seen    map[string]struct{}
	skipped int
}

// New returns a Normalizer that logs skipped entries through log.
func New(log zerolog.Logger) *Normalizer {
	return &Normalizer{
		log:  log,
		seen: make(map[string]struct{}),
	}
}

// Page flattens one page of entries into Records. Entries without a usable
// identifier are skipped with a warning; duplicates of already-emitted
// (source, id) pairs are dropped silently. Neither aborts the page.
func (n *Normalizer) Page(source string, entries []Entry) []types.Record {
	records := make([]types.Record, 0, len(entries))
	for _, e := range entries {
		id := entryID(e)
		if id == "" {
			n.skipped++
			n.log.Warn().
				Str("source", source).
				Str("title", e.Title).
				Msg("skipping entry without identifier")
			continue
		}

		key := source + "|" + id
		if _, dup := n.seen[key]; dup {
			continue
		}
		n.seen[key] = struct{}{}

		records = append(records, types.Record{
			Source:          source,
			ID:              id,
			DOI:             naOr(e.DOI),
			Title:           naOr(e.Title),
			Publication:     naOr(e.Publication),
			CoverDate:       naOr(e.CoverDate),
			Creator:         naOr(string(e.Creator)),
			NewsMentions:    types.NotAvailable,
			PolicyCitations: types.NotAvailable,
		})
	}
	return records
}

// Skipped returns the number of entries dropped for missing identifiers.
func (n *Normalizer) Skipped() int { return n.skipped }

// entryID picks the record key: the DOI when present, otherwise the
// provider identifier with its "DOI:" or "SCOPUS_ID:" prefix stripped.
func entryID(e Entry) string {
	if e.DOI != "" {
		return e.DOI
	}
	id := e.Identifier
	id = strings.TrimPrefix(id, "DOI:")
	id = strings.TrimPrefix(id, "SCOPUS_ID:")
	return strings.TrimSpace(id)
}

func naOr(s string) string {
	if strings.TrimSpace(s) == "" {
		return types.NotAvailable
	}
	return s
}
