// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analytics aggregates a corpus snapshot into topic and timeline
// statistics and flags under-researched topics. Every function is a pure
// computation over its input; nothing is cached between calls.
package analytics

import (
	"sort"

	"github.com/pdiddy/pubscope/pkg/types"
)

// TopTopicsPerYear bounds YearlyStats.TopTopics.
const TopTopicsPerYear = 5

// TopicDistribution counts, per topic, the publications carrying it, most
// frequent first. Ties keep first-encountered topic order.
func TopicDistribution(pubs []types.Publication) []types.TopicDistribution {
	var out []types.TopicDistribution
	pos := make(map[string]int)
	for _, p := range pubs {
		for _, topic := range p.Topics {
			i, ok := pos[topic]
			if !ok {
				i = len(out)
				pos[topic] = i
				out = append(out, types.TopicDistribution{Topic: topic})
			}
			out[i].Count++
			out[i].Publications = append(out[i].Publications, p.ID)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// YearlyStats groups publications by year, ascending. Each year carries its
// publication count and up to five most frequent topics, ties in
// first-encountered order within the year.
func YearlyStats(pubs []types.Publication) []types.YearlyStats {
	byYear := make(map[int]*yearTally)
	for _, p := range pubs {
		y, ok := byYear[p.Year]
		if !ok {
			y = &yearTally{pos: make(map[string]int)}
			byYear[p.Year] = y
		}
		y.count++
		for _, topic := range p.Topics {
			y.add(topic)
		}
	}

	out := make([]types.YearlyStats, 0, len(byYear))
	for year, y := range byYear {
		out = append(out, types.YearlyStats{
			Year:             year,
			PublicationCount: y.count,
			TopTopics:        y.top(TopTopicsPerYear),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

type yearTally struct {
	count  int
	topics []types.TopicCount
	pos    map[string]int
}

func (y *yearTally) add(topic string) {
	i, ok := y.pos[topic]
	if !ok {
		i = len(y.topics)
		y.pos[topic] = i
		y.topics = append(y.topics, types.TopicCount{Topic: topic})
	}
	y.topics[i].Count++
}

func (y *yearTally) countOf(topic string) int {
	if i, ok := y.pos[topic]; ok {
		return y.topics[i].Count
	}
	return 0
}

func (y *yearTally) top(n int) []types.TopicCount {
	ranked := append([]types.TopicCount{}, y.topics...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// RelatedTopics returns up to n topics co-occurring with topic in at least
// one publication, by co-occurrence count descending, ties in
// first-encountered order.
func RelatedTopics(topic string, pubs []types.Publication, n int) []string {
	order := []string{}
	counts := make(map[string]int)
	for _, p := range pubs {
		if !contains(p.Topics, topic) {
			continue
		}
		for _, t := range p.Topics {
			if t == topic {
				continue
			}
			if _, ok := counts[t]; !ok {
				order = append(order, t)
			}
			counts[t]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > n {
		order = order[:n]
	}
	return order
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
