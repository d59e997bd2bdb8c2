// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analytics

import (
	"fmt"
	"sort"

	"github.com/pdiddy/pubscope/pkg/types"
)

// DecliningSeverity is assigned to every declining-trend gap. It is a fixed
// constant, not derived from the data.
const DecliningSeverity = 0.7

// GapOptions tunes ResearchGaps.
type GapOptions struct {
	// LowCoverageThreshold flags topics with fewer publications.
	LowCoverageThreshold int

	// MaxLowCoverage keeps only the first N low-coverage topics in
	// distribution order. Zero means no cap.
	MaxLowCoverage int

	// MaxRelated bounds RelatedTopics on each gap.
	MaxRelated int

	// Declining enables declining-trend detection.
	Declining bool

	// RecentYears is the window inspected for declining trends.
	RecentYears int

	// MinHistory skips declining detection when fewer years exist.
	MinHistory int
}

// DefaultGapOptions returns the dashboard gap analysis settings.
func DefaultGapOptions() GapOptions {
	return GapOptions{
		LowCoverageThreshold: 5,
		MaxLowCoverage:       10,
		MaxRelated:           5,
		Declining:            true,
		RecentYears:          5,
		MinHistory:           3,
	}
}

// FallbackGapOptions returns the settings used when the oracle is
// unavailable: a lower threshold, no cap, fewer related topics, and no
// trend detection.
func FallbackGapOptions() GapOptions {
	return GapOptions{
		LowCoverageThreshold: 3,
		MaxRelated:           3,
	}
}

// ResearchGaps flags low-coverage and declining-trend topics, sorted by
// severity descending. A topic flagged by both heuristics yields two
// entries; they are not merged.
func ResearchGaps(pubs []types.Publication, opts GapOptions) []types.ResearchGap {
	dist := TopicDistribution(pubs)
	if len(dist) == 0 {
		return []types.ResearchGap{}
	}
	maxCount := 0
	for _, d := range dist {
		maxCount = max(maxCount, d.Count)
	}

	gaps := []types.ResearchGap{}
	low := 0
	for _, d := range dist {
		if d.Count >= opts.LowCoverageThreshold {
			continue
		}
		if opts.MaxLowCoverage > 0 && low == opts.MaxLowCoverage {
			break
		}
		low++
		gaps = append(gaps, types.ResearchGap{
			Topic:         d.Topic,
			Severity:      Severity(d.Count, maxCount),
			RelatedTopics: RelatedTopics(d.Topic, pubs, opts.MaxRelated),
			Description:   fmt.Sprintf("Limited research on %s with only %d publications.", d.Topic, d.Count),
			Kind:          types.GapLowCoverage,
		})
	}

	if opts.Declining {
		for _, topic := range DecliningTopics(pubs, dist, opts.RecentYears, opts.MinHistory) {
			gaps = append(gaps, types.ResearchGap{
				Topic:         topic,
				Severity:      DecliningSeverity,
				RelatedTopics: RelatedTopics(topic, pubs, opts.MaxRelated),
				Description:   fmt.Sprintf("Declining research trend for %s in recent years.", topic),
				Kind:          types.GapDeclining,
			})
		}
	}

	sort.SliceStable(gaps, func(i, j int) bool { return gaps[i].Severity > gaps[j].Severity })
	return gaps
}

// Severity maps a topic count to a gap severity in [0, 1]: the fewer
// publications relative to the best-covered topic, the closer to 1.
func Severity(count, maxCount int) float64 {
	if maxCount <= 0 {
		return 0
	}
	return Clamp(1 - float64(count)/float64(maxCount))
}

// Clamp bounds s to [0, 1].
func Clamp(s float64) float64 {
	switch {
	case s < 0:
		return 0
	case s > 1:
		return 1
	default:
		return s
	}
}

// DecliningTopics returns, in distribution order, the topics whose per-year
// counts over the most recent window years never increase and peak above
// zero. It returns nil when fewer than minHistory years exist.
func DecliningTopics(pubs []types.Publication, dist []types.TopicDistribution, window, minHistory int) []string {
	byYear := make(map[int]*yearTally)
	var years []int
	for _, p := range pubs {
		y, ok := byYear[p.Year]
		if !ok {
			y = &yearTally{pos: make(map[string]int)}
			byYear[p.Year] = y
			years = append(years, p.Year)
		}
		for _, topic := range p.Topics {
			y.add(topic)
		}
	}
	sort.Ints(years)
	if window > 0 && len(years) > window {
		years = years[len(years)-window:]
	}
	if len(years) < minHistory {
		return nil
	}

	var out []string
	for _, d := range dist {
		peak, prev, declining := 0, 0, true
		for i, year := range years {
			n := byYear[year].countOf(d.Topic)
			if i > 0 && n > prev {
				declining = false
				break
			}
			prev = n
			peak = max(peak, n)
		}
		if declining && peak > 0 {
			out = append(out, d.Topic)
		}
	}
	return out
}
