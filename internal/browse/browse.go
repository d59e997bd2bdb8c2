// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package browse composes a dashboard query: search, then filter, then
// sort, then paginate.
package browse

import (
	"fmt"
	"strings"

	"github.com/pdiddy/pubscope/internal/filter"
	"github.com/pdiddy/pubscope/internal/index"
	"github.com/pdiddy/pubscope/internal/search"
	"github.com/pdiddy/pubscope/pkg/types"
)

// Query is one dashboard request.
type Query struct {
	Text    string              `json:"text" yaml:"text"`
	Mode    types.SearchMode    `json:"mode" yaml:"mode"`
	Filters types.SearchFilters `json:"filters" yaml:"filters"`
	Sort    types.SortOption    `json:"sort" yaml:"sort"`

	// Page is 1-based. PageSize defaults to search.DefaultPageSize.
	Page     int `json:"page" yaml:"page"`
	PageSize int `json:"page_size" yaml:"page_size"`
}

// WithDefaults fills unset fields. A zero year range becomes the corpus
// range of pubs.
func (q Query) WithDefaults(pubs []types.Publication) Query {
	q.Text = strings.TrimSpace(q.Text)
	if q.Mode == "" {
		q.Mode = types.ModeIndexed
	}
	if q.Sort == "" {
		q.Sort = types.SortYearDesc
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = search.DefaultPageSize
	}
	if q.Filters.Years == [2]int{} {
		q.Filters.Years = filter.Defaults(pubs).Years
	}
	return q
}

// Results runs q against pubs and returns every match in display order.
// idx must have been built from pubs; a nil idx searches without it.
func Results(pubs []types.Publication, idx *index.Index, q Query) ([]types.Publication, error) {
	q = q.WithDefaults(pubs)

	matched, err := search.Run(q.Mode, idx, pubs, q.Text)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	filtered, err := filter.Apply(matched, q.Filters)
	if err != nil {
		return nil, fmt.Errorf("filtering: %w", err)
	}
	sorted, err := search.Sort(filtered, q.Sort, q.Text)
	if err != nil {
		return nil, fmt.Errorf("sorting: %w", err)
	}
	return sorted, nil
}

// Run returns the requested page of Results.
func Run(pubs []types.Publication, idx *index.Index, q Query) (search.Page, error) {
	results, err := Results(pubs, idx, q)
	if err != nil {
		return search.Page{}, err
	}
	q = q.WithDefaults(pubs)
	return search.Paginate(results, q.Page, q.PageSize), nil
}
