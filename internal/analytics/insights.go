// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/pubscope/pkg/types"
)

const defaultOrganism = "humans"

// Insights derives dataset-level observations: the year span, the most
// studied topics and organisms, and the gaps worth attention. An empty
// corpus yields the zero value.
func Insights(pubs []types.Publication) types.Insights {
	if len(pubs) == 0 {
		return types.Insights{}
	}

	minYear, maxYear := pubs[0].Year, pubs[0].Year
	for _, p := range pubs[1:] {
		minYear = min(minYear, p.Year)
		maxYear = max(maxYear, p.Year)
	}

	dist := TopicDistribution(pubs)
	var top []string
	for i := 0; i < len(dist) && i < 5; i++ {
		top = append(top, dist[i].Topic)
	}

	organisms, most := organismCoverage(pubs)

	ins := types.Insights{
		Timespan:        fmt.Sprintf("The dataset spans %d years of research from %d to %d.", maxYear-minYear, minYear, maxYear),
		Organisms:       fmt.Sprintf("Research covers %d different organisms, with %s being the most studied.", organisms, most),
		Recommendations: "Future research should focus on closing gaps in under-researched areas.",
	}

	switch len(top) {
	case 0:
		ins.TopicFocus = "No topics were identified in the dataset."
		ins.Trends = "Not enough topic data to identify trends."
	case 1:
		ins.TopicFocus = fmt.Sprintf("The most studied topic is %s.", top[0])
		ins.Trends = fmt.Sprintf("Research has shown increasing focus on %s in recent years.", top[0])
	default:
		ins.TopicFocus = fmt.Sprintf("The most studied topics are %s.", strings.Join(top, ", "))
		ins.Trends = fmt.Sprintf("Research has shown increasing focus on %s and %s in recent years.", top[0], top[1])
	}

	gaps := ResearchGaps(pubs, DefaultGapOptions())
	if len(gaps) == 0 {
		ins.Gaps = "No significant research gaps were detected."
	} else {
		var names []string
		seen := make(map[string]struct{})
		for _, g := range gaps {
			if _, ok := seen[g.Topic]; ok {
				continue
			}
			seen[g.Topic] = struct{}{}
			names = append(names, g.Topic)
			if len(names) == 3 {
				break
			}
		}
		ins.Gaps = fmt.Sprintf("There are significant research gaps in topics related to %s.", strings.Join(names, ", "))
	}
	return ins
}

// organismCoverage returns the number of distinct organisms and the one
// studied by the most publications. Ties keep the first encountered.
func organismCoverage(pubs []types.Publication) (int, string) {
	counts := make(map[string]int)
	var order []string
	for _, p := range pubs {
		seen := make(map[string]struct{}, len(p.Organisms))
		for _, o := range p.Organisms {
			if _, ok := seen[o]; ok {
				continue
			}
			seen[o] = struct{}{}
			if _, ok := counts[o]; !ok {
				order = append(order, o)
			}
			counts[o]++
		}
	}
	if len(order) == 0 {
		return 0, defaultOrganism
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	return len(order), order[0]
}
