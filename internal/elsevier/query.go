// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package elsevier

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/elsevier-harvest/pkg/types"
)

// searchFields lists the entry fields requested from the search APIs.
const searchFields = "prism:doi,dc:title,prism:publicationName,prism:coverDate,dc:creator"

// defaultPageSize is the per-page entry count requested from the provider.
const defaultPageSize = 50

// Criteria holds the search parameters for one query. Constructed once per
// invocation and never mutated.
type Criteria struct {
	// Keywords are searched in article titles, AND-joined.
	Keywords []string

	// Subjects are 4-letter Scopus subject area codes, OR-joined.
	// Scopus only.
	Subjects []string

	// Authors are author names, OR-joined.
	Authors []string

	// AuthorIDs are Scopus author identifiers, OR-joined. Scopus only.
	AuthorIDs []string

	// DateRange is a provider-format date filter, e.g. "2020-2025".
	DateRange string

	// Source selects the API: types.SourceScienceDirect or
	// types.SourceScopus.
	Source string

	// MaxRecords caps the total entries fetched; 0 means all.
	MaxRecords int

	// PageSize is the per-page entry count; 0 means defaultPageSize.
	PageSize int
}

// NormalizeSource canonicalizes a source API name. "scidir" is accepted as
// an alias for ScienceDirect.
func NormalizeSource(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scopus":
		return types.SourceScopus, nil
	case "sciencedirect", "scidir", "":
		return types.SourceScienceDirect, nil
	default:
		return "", fmt.Errorf("unknown source API %q: use %q or %q", s, types.SourceScienceDirect, types.SourceScopus)
	}
}

// Validate checks source-specific restrictions and that the criteria form
// a non-empty query.
func (c Criteria) Validate() error {
	if c.Source != types.SourceScienceDirect && c.Source != types.SourceScopus {
		return fmt.Errorf("unknown source API %q", c.Source)
	}
	if c.Source == types.SourceScienceDirect {
		if len(c.AuthorIDs) > 0 {
			return fmt.Errorf("ScienceDirect does not accept author IDs: provide author names or use Scopus")
		}
		if len(c.Subjects) > 0 {
			return fmt.Errorf("ScienceDirect does not accept subject areas: use Scopus")
		}
	}
	if _, err := c.QueryString(); err != nil {
		return err
	}
	return nil
}

// QueryString builds the boolean query expression: keyword clauses are
// AND-joined inside TITLE(), subjects OR-joined inside SUBJAREA(), author
// IDs become OR-joined AU-ID() terms, and author names OR-joined inside
// AUTHOR-NAME(). The clause groups themselves are AND-joined.
func (c Criteria) QueryString() (string, error) {
	var clauses []string

	if len(c.Keywords) > 0 {
		quoted := make([]string, len(c.Keywords))
		for i, kw := range c.Keywords {
			quoted[i] = "'" + kw + "'"
		}
		clauses = append(clauses, "TITLE("+joinWithOperator(quoted, "AND")+")")
	}
	if len(c.Subjects) > 0 {
		clauses = append(clauses, "SUBJAREA("+joinWithOperator(c.Subjects, "OR")+")")
	}
	if len(c.AuthorIDs) > 0 {
		terms := make([]string, len(c.AuthorIDs))
		for i, id := range c.AuthorIDs {
			terms[i] = "AU-ID(" + id + ")"
		}
		clauses = append(clauses, joinWithOperator(terms, "OR"))
	}
	if len(c.Authors) > 0 {
		clauses = append(clauses, "AUTHOR-NAME("+joinWithOperator(c.Authors, "OR")+")")
	}

	query := joinWithOperator(clauses, "AND")
	if query == "" {
		return "", fmt.Errorf("query is empty: provide keywords, subjects, authors, or author IDs")
	}
	return query, nil
}

// Params builds the request query parameters for the page starting at the
// given cursor offset.
func (c Criteria) Params(start int) (url.Values, error) {
	query, err := c.QueryString()
	if err != nil {
		return nil, err
	}

	pageSize := c.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	params := url.Values{
		"query": {query},
		"start": {strconv.Itoa(start)},
		"count": {strconv.Itoa(pageSize)},
		"field": {searchFields},
	}
	if c.DateRange != "" {
		params.Set("date", c.DateRange)
	}
	return params, nil
}

// joinWithOperator joins terms with " AND " or " OR ".
func joinWithOperator(terms []string, operator string) string {
	return strings.Join(terms, " "+operator+" ")
}
