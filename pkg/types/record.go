// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the elsevier-harvest pipeline.
package types

// NotAvailable is the marker written for any field a source API did not
// supply. Output columns always carry this marker instead of an empty
// string so the field set is stable across ScienceDirect and Scopus.
const NotAvailable = "n/a"

// Source API identifiers.
const (
	SourceScienceDirect = "sciencedirect"
	SourceScopus        = "scopus"
)

// Record is the flat, uniform representation of one article regardless of
// which source API produced it. A record is written once and never
// mutated afterwards, except for the PlumX count fields which the metrics
// stage fills in.
type Record struct {
	// Source identifies the API that produced this record.
	Source string `json:"source" yaml:"source"`

	// ID is the record key within its source: the DOI when present,
	// otherwise the provider identifier (e.g. a Scopus ID).
	ID string `json:"id" yaml:"id"`

	// DOI is the bare DOI, or NotAvailable.
	DOI string `json:"doi" yaml:"doi"`

	Title       string `json:"title" yaml:"title"`
	Publication string `json:"publication" yaml:"publication"`
	CoverDate   string `json:"cover_date" yaml:"cover_date"`
	Creator     string `json:"creator" yaml:"creator"`

	// NewsMentions and PolicyCitations hold PlumX counts as decimal
	// strings, or NotAvailable when the article has no PlumX data.
	NewsMentions    string `json:"news_mentions" yaml:"news_mentions"`
	PolicyCitations string `json:"policy_citations" yaml:"policy_citations"`
}

// Key returns the uniqueness key (source API, article identifier).
func (r Record) Key() string {
	return r.Source + "|" + r.ID
}

// Columns returns the output column names in their stable order.
func Columns() []string {
	return []string{
		"source", "id", "doi", "title", "publication",
		"cover_date", "creator", "news_mentions", "policy_citations",
	}
}

// Values returns the record's fields in Columns order, with empty fields
// replaced by the NotAvailable marker.
func (r Record) Values() []string {
	fields := []string{
		r.Source, r.ID, r.DOI, r.Title, r.Publication,
		r.CoverDate, r.Creator, r.NewsMentions, r.PolicyCitations,
	}
	for i, f := range fields {
		if f == "" {
			fields[i] = NotAvailable
		}
	}
	return fields
}
