// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubscope/pkg/types"
)

// QueryFile is the on-disk form of a dashboard query and the ids it
// returned. A saved query can be replayed against a later corpus load.
type QueryFile struct {
	Query   QueryParams  `yaml:"query"`
	Results []string     `yaml:"results"`
	Summary QuerySummary `yaml:"summary"`
}

// QueryParams stores the query in a serializable form.
type QueryParams struct {
	Text    string              `yaml:"text,omitempty"`
	Mode    types.SearchMode    `yaml:"mode,omitempty"`
	Sort    types.SortOption    `yaml:"sort,omitempty"`
	Filters types.SearchFilters `yaml:"filters"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	Total     int       `yaml:"total"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteQueryFile saves params and the ids of results to a YAML file.
func WriteQueryFile(path string, params QueryParams, results []types.Publication, now time.Time) error {
	qf := QueryFile{
		Query:   params,
		Results: make([]string, len(results)),
		Summary: QuerySummary{
			Total:     len(results),
			Timestamp: now,
		},
	}
	for i, p := range results {
		qf.Results[i] = p.ID
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	if err := qf.Query.Filters.Validate(); err != nil {
		return nil, fmt.Errorf("query file %s: %w", path, err)
	}
	return &qf, nil
}
