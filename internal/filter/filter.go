// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filter implements the multi-dimension publication filter: AND
// across dimensions, OR within a dimension. It also derives the selectable
// values of each dimension for a corpus.
package filter

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pdiddy/pubscope/pkg/types"
)

// ErrInvalidYearRange is returned when a filter's start year is after its
// end year.
var ErrInvalidYearRange = errors.New("invalid year range")

// Apply returns the publications of pubs that satisfy every non-empty
// dimension of f, in input order. The input slice is not modified.
func Apply(pubs []types.Publication, f types.SearchFilters) ([]types.Publication, error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYearRange, err)
	}
	m := newMatcher(f)
	out := make([]types.Publication, 0, len(pubs))
	for i := range pubs {
		if m.match(&pubs[i]) {
			out = append(out, pubs[i])
		}
	}
	return out, nil
}

// Match reports whether p passes every non-empty dimension of f. The year
// range is assumed valid.
func Match(p types.Publication, f types.SearchFilters) bool {
	return newMatcher(f).match(&p)
}

type set map[string]struct{}

func toSet(values []string) set {
	if len(values) == 0 {
		return nil
	}
	s := make(set, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s set) any(values []string) bool {
	for _, v := range values {
		if _, ok := s[v]; ok {
			return true
		}
	}
	return false
}

func (s set) has(v string) bool {
	_, ok := s[v]
	return ok
}

type matcher struct {
	start, end      int
	topics          set
	organisms       set
	experimentTypes set
	missions        set
	platforms       set
}

func newMatcher(f types.SearchFilters) matcher {
	return matcher{
		start:           f.Years[0],
		end:             f.Years[1],
		topics:          toSet(f.Topics),
		organisms:       toSet(f.Organisms),
		experimentTypes: toSet(f.ExperimentTypes),
		missions:        toSet(f.Missions),
		platforms:       toSet(f.Platforms),
	}
}

// match checks dimensions in a fixed order and stops at the first failure.
func (m matcher) match(p *types.Publication) bool {
	if p.Year < m.start || p.Year > m.end {
		return false
	}
	if m.topics != nil && !m.topics.any(p.Topics) {
		return false
	}
	if m.organisms != nil && !m.organisms.any(p.Organisms) {
		return false
	}
	if m.experimentTypes != nil && !m.experimentTypes.any(p.ExperimentType) {
		return false
	}
	if m.missions != nil && !m.missions.has(p.Mission) {
		return false
	}
	if m.platforms != nil && !m.platforms.has(p.Platform) {
		return false
	}
	return true
}

// Defaults returns filters that constrain nothing for pubs: the year range
// spans the minimum to maximum known year and every set is empty.
func Defaults(pubs []types.Publication) types.SearchFilters {
	var f types.SearchFilters
	for i, p := range pubs {
		if i == 0 || p.Year < f.Years[0] {
			f.Years[0] = p.Year
		}
		if i == 0 || p.Year > f.Years[1] {
			f.Years[1] = p.Year
		}
	}
	return f
}

// Options returns the sorted unique values of every filter dimension with
// the number of publications carrying each value. Years are ascending.
func Options(pubs []types.Publication) types.FilterOptions {
	years := make(map[int]struct{})
	topics := newCounter()
	organisms := newCounter()
	experimentTypes := newCounter()
	missions := newCounter()
	platforms := newCounter()

	for _, p := range pubs {
		years[p.Year] = struct{}{}
		topics.addAll(p.Topics)
		organisms.addAll(p.Organisms)
		experimentTypes.addAll(p.ExperimentType)
		missions.add(p.Mission)
		platforms.add(p.Platform)
	}

	opts := types.FilterOptions{
		Years:           make([]int, 0, len(years)),
		Topics:          topics.options(),
		Organisms:       organisms.options(),
		ExperimentTypes: experimentTypes.options(),
		Missions:        missions.options(),
		Platforms:       platforms.options(),
	}
	for y := range years {
		opts.Years = append(opts.Years, y)
	}
	sort.Ints(opts.Years)
	return opts
}

type counter map[string]int

func newCounter() counter { return make(counter) }

func (c counter) add(v string) {
	if v != "" {
		c[v]++
	}
}

// addAll counts each distinct value of values once.
func (c counter) addAll(values []string) {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		c.add(v)
	}
}

func (c counter) options() []types.FilterOption {
	out := make([]types.FilterOption, 0, len(c))
	for v, n := range c {
		out = append(out, types.FilterOption{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}
