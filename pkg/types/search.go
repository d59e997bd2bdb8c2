// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// SearchFilters is the multi-dimension filter value object. An empty set
// for a dimension means no constraint on that dimension.
type SearchFilters struct {
	// Years is the inclusive [start, end] year range.
	Years [2]int `json:"years" yaml:"years"`

	Topics          []string `json:"topics" yaml:"topics,omitempty"`
	Organisms       []string `json:"organisms" yaml:"organisms,omitempty"`
	ExperimentTypes []string `json:"experiment_types" yaml:"experiment_types,omitempty"`
	Missions        []string `json:"missions" yaml:"missions,omitempty"`
	Platforms       []string `json:"platforms" yaml:"platforms,omitempty"`
}

// Validate reports whether the year range is well formed.
func (f SearchFilters) Validate() error {
	if f.Years[0] > f.Years[1] {
		return fmt.Errorf("year range start %d is after end %d", f.Years[0], f.Years[1])
	}
	return nil
}

// SearchMode selects the ranking strategy for a free-text query.
type SearchMode string

const (
	// ModeIndexed looks terms up in the inverted index and ranks by the
	// number of distinct query tokens matched.
	ModeIndexed SearchMode = "indexed"

	// ModeWeighted scores substring hits per field with fixed weights.
	ModeWeighted SearchMode = "weighted"

	// ModeFullText keeps publications containing every query term, unranked.
	ModeFullText SearchMode = "fulltext"
)

// SortOption selects the ordering applied after search and filtering.
type SortOption string

const (
	SortYearDesc  SortOption = "year-desc"
	SortYearAsc   SortOption = "year-asc"
	SortCitations SortOption = "citations"
	SortRelevance SortOption = "relevance"
)

// FilterOption is one selectable value of a filter dimension with the
// number of publications carrying it.
type FilterOption struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// FilterOptions lists the sorted unique values of every filter dimension.
type FilterOptions struct {
	Years           []int          `json:"years" yaml:"years"`
	Topics          []FilterOption `json:"topics" yaml:"topics"`
	Organisms       []FilterOption `json:"organisms" yaml:"organisms"`
	ExperimentTypes []FilterOption `json:"experiment_types" yaml:"experiment_types"`
	Missions        []FilterOption `json:"missions" yaml:"missions"`
	Platforms       []FilterOption `json:"platforms" yaml:"platforms"`
}
