// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search ranks publications against a free-text query. Three
// strategies are offered: indexed lookup, a weighted per-field substring
// scorer, and an unranked all-terms full-text filter. Sorting and
// pagination of result lists also live here.
package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/pubscope/internal/index"
	"github.com/pdiddy/pubscope/pkg/types"
)

// Field weights for the weighted scorer.
const (
	TitleWeight    = 3
	AbstractWeight = 1
	KeywordWeight  = 2
	AuthorWeight   = 2
)

// Hit is a publication position with its match score.
type Hit struct {
	Position int
	Score    int
}

// Terms returns the distinct query tokens in first-seen order, tokenized
// exactly as the index is.
func Terms(query string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, tok := range index.Tokenize(query) {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// IndexedHits looks every query token up in idx and counts, per position,
// how many distinct query tokens matched. Positions matching no token are
// excluded. Hits are ordered by score descending, ties by position.
func IndexedHits(idx *index.Index, query string) []Hit {
	counts := make(map[int]int)
	for _, term := range Terms(query) {
		for _, pos := range idx.Lookup(term) {
			counts[pos]++
		}
	}
	hits := make([]Hit, 0, len(counts))
	for pos, n := range counts {
		hits = append(hits, Hit{Position: pos, Score: n})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Position < hits[j].Position
	})
	return hits
}

// Indexed returns the publications of pubs matching query through idx,
// best first. idx must have been built over pubs. A query with no usable
// tokens returns pubs unchanged.
func Indexed(idx *index.Index, pubs []types.Publication, query string) []types.Publication {
	if len(Terms(query)) == 0 {
		return pubs
	}
	hits := IndexedHits(idx, query)
	out := make([]types.Publication, 0, len(hits))
	for _, h := range hits {
		if h.Position < len(pubs) {
			out = append(out, pubs[h.Position])
		}
	}
	return out
}

// Score returns the weighted substring score of p for the given lowercase
// terms. Each term contributes a field's weight once if the field contains
// it anywhere.
func Score(p types.Publication, terms []string) int {
	title := strings.ToLower(p.Title)
	abstract := strings.ToLower(p.Abstract)
	keywords := strings.ToLower(strings.Join(p.Keywords, " "))
	authors := strings.ToLower(strings.Join(p.Authors, " "))

	score := 0
	for _, t := range terms {
		if strings.Contains(title, t) {
			score += TitleWeight
		}
		if strings.Contains(abstract, t) {
			score += AbstractWeight
		}
		if strings.Contains(keywords, t) {
			score += KeywordWeight
		}
		if strings.Contains(authors, t) {
			score += AuthorWeight
		}
	}
	return score
}

// Weighted scores every publication with Score and returns those scoring
// above zero, best first, ties in input order. Repeated query words count
// once. A query with no usable tokens returns pubs unchanged.
func Weighted(pubs []types.Publication, query string) []types.Publication {
	terms := Terms(query)
	if len(terms) == 0 {
		return pubs
	}
	type scored struct {
		pub   types.Publication
		score int
	}
	var ranked []scored
	for _, p := range pubs {
		if s := Score(p, terms); s > 0 {
			ranked = append(ranked, scored{p, s})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	out := make([]types.Publication, len(ranked))
	for i, r := range ranked {
		out[i] = r.pub
	}
	return out
}

// FullText keeps the publications whose title, authors, abstract, and
// journal together contain every whitespace-separated query term as a
// substring. Input order is preserved.
func FullText(pubs []types.Publication, query string) []types.Publication {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return pubs
	}
	out := make([]types.Publication, 0, len(pubs))
	for _, p := range pubs {
		haystack := strings.ToLower(strings.Join([]string{
			p.Title,
			strings.Join(p.Authors, " "),
			p.Abstract,
			p.Journal,
		}, "\n"))
		if containsAll(haystack, terms) {
			out = append(out, p)
		}
	}
	return out
}

func containsAll(s string, terms []string) bool {
	for _, t := range terms {
		if !strings.Contains(s, t) {
			return false
		}
	}
	return true
}

// Run dispatches query to the strategy named by mode. The indexed strategy
// needs idx; without one it falls back to the weighted scorer.
func Run(mode types.SearchMode, idx *index.Index, pubs []types.Publication, query string) ([]types.Publication, error) {
	switch mode {
	case types.ModeIndexed, "":
		if idx == nil {
			return Weighted(pubs, query), nil
		}
		return Indexed(idx, pubs, query), nil
	case types.ModeWeighted:
		return Weighted(pubs, query), nil
	case types.ModeFullText:
		return FullText(pubs, query), nil
	default:
		return nil, fmt.Errorf("unknown search mode %q", mode)
	}
}

// Sort returns a copy of pubs ordered by opt. All orderings are stable.
// Missing or defaulted years sort as year 0. The citations ordering ranks publications
// with a catalog identifier first; no citation counts exist in the source
// data. The relevance ordering uses the weighted score against query and
// keeps input order when query has no usable tokens.
func Sort(pubs []types.Publication, opt types.SortOption, query string) ([]types.Publication, error) {
	out := append([]types.Publication(nil), pubs...)
	switch opt {
	case types.SortYearDesc, "":
		sort.SliceStable(out, func(i, j int) bool { return sortYear(out[i]) > sortYear(out[j]) })
	case types.SortYearAsc:
		sort.SliceStable(out, func(i, j int) bool { return sortYear(out[i]) < sortYear(out[j]) })
	case types.SortCitations:
		sort.SliceStable(out, func(i, j int) bool { return out[i].PMCID != "" && out[j].PMCID == "" })
	case types.SortRelevance:
		terms := Terms(query)
		if len(terms) == 0 {
			return out, nil
		}
		order := make([]int, len(out))
		scores := make([]int, len(out))
		for i, p := range out {
			order[i] = i
			scores[i] = Score(p, terms)
		}
		sort.SliceStable(order, func(i, j int) bool { return scores[order[i]] > scores[order[j]] })
		ranked := make([]types.Publication, len(out))
		for i, pos := range order {
			ranked[i] = out[pos]
		}
		out = ranked
	default:
		return nil, fmt.Errorf("unknown sort option %q", opt)
	}
	return out, nil
}

// sortYear is the year used by the year orderings.
func sortYear(p types.Publication) int {
	if p.YearDefaulted {
		return 0
	}
	return p.Year
}

// Page is one page of a result list.
type Page struct {
	Items      []types.Publication `json:"items" yaml:"items"`
	Page       int                 `json:"page" yaml:"page"`
	PageSize   int                 `json:"page_size" yaml:"page_size"`
	Total      int                 `json:"total" yaml:"total"`
	TotalPages int                 `json:"total_pages" yaml:"total_pages"`
}

// DefaultPageSize is the dashboard page size.
const DefaultPageSize = 12

// Paginate returns the 1-based page of pubs. Pages below 1 select the first
// page; pages past the end are empty.
func Paginate(pubs []types.Publication, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	p := Page{
		Page:       page,
		PageSize:   size,
		Total:      len(pubs),
		TotalPages: (len(pubs) + size - 1) / size,
		Items:      []types.Publication{},
	}
	start := (page - 1) * size
	if start >= len(pubs) {
		return p
	}
	end := min(start+size, len(pubs))
	p.Items = pubs[start:end]
	return p
}
