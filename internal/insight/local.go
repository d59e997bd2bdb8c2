// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package insight

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/pubscope/internal/analytics"
	"github.com/pdiddy/pubscope/internal/index"
	"github.com/pdiddy/pubscope/pkg/types"
)

// summaryVocabulary is searched, case-insensitively, for the terms a local
// summary is built around.
var summaryVocabulary = []string{
	"microgravity", "radiation", "bone loss", "muscle atrophy",
	"cardiovascular", "immune system", "plants", "microbiome",
	"neuroscience", "genetics", "cell biology", "physiology",
	"behavior", "development", "astronaut health", "Mars missions",
	"Moon missions", "ISS", "space station", "lunar habitat",
	"bioregenerative", "countermeasures", "adaptation", "space medicine",
}

var commonWords = map[string]bool{
	"research": true, "study": true, "results": true, "analysis": true, "significant": true,
}

var nonWord = regexp.MustCompile(`\W+`)

// LocalSummary builds a summary from vocabulary terms found in abstract. It
// is deterministic and never fails.
func LocalSummary(abstract string) types.AISummary {
	kw := summaryKeywords(abstract)
	at := func(i int, fallback string) string {
		if i < len(kw) {
			return kw[i]
		}
		return fallback
	}

	s := types.AISummary{
		OneLineSummary: fmt.Sprintf("Research investigating %s in %s conditions, with implications for %s.",
			at(0, "space biology"), at(1, "microgravity"), at(2, "future space missions")),
		KeyFindings: []string{
			fmt.Sprintf("%s showed significant changes under %s conditions.",
				capitalize(at(0, "Biological systems")), at(1, "space")),
			fmt.Sprintf("%s demonstrated potential adaptations to %s.",
				capitalize(at(2, "Research")), at(3, "microgravity")),
			fmt.Sprintf("Results suggest important considerations for %s during long-duration missions.",
				at(4, "astronaut health")),
		},
		MissionRelevance: fmt.Sprintf("This research is relevant to %s as it addresses %s challenges in the space environment.",
			at(5, "future Moon and Mars missions"), at(0, "biological")),
		Source: SourceLocal,
	}

	lower := strings.ToLower(abstract)
	if strings.Contains(lower, "future") || strings.Contains(lower, "further") {
		s.GapAreas = []string{
			"Further research needed on long-term adaptation mechanisms",
			"Additional studies required on countermeasure effectiveness",
		}
	}
	return s
}

// summaryKeywords returns the vocabulary terms found in text. With fewer
// than three it adds up to ten long words from the text itself.
func summaryKeywords(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, term := range summaryVocabulary {
		if strings.Contains(lower, strings.ToLower(term)) {
			found = append(found, term)
		}
	}
	if len(found) >= 3 {
		return found
	}

	var words []string
	for _, w := range nonWord.Split(text, -1) {
		if utf8.RuneCountInString(w) > 5 && !commonWords[strings.ToLower(w)] {
			words = append(words, w)
		}
	}
	if len(words) > 10 {
		words = words[:10]
	}

	seen := make(map[string]bool, len(found)+len(words))
	out := make([]string, 0, len(found)+len(words))
	for _, w := range append(found, words...) {
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Local relevance weights.
const (
	localTitleWeight = 5
	localTopicWeight = 4
)

// LocalRank scores pubs against query and returns those with a positive
// score, best first. A query term scores when it occurs in the title or a
// topic, plus one for every title, abstract or topic word containing it.
func LocalRank(query string, pubs []types.Publication) []types.Publication {
	terms := index.Tokenize(query)
	type scored struct {
		pos   int
		score int
	}
	var hits []scored
	for i := range pubs {
		if s := localScore(&pubs[i], terms); s > 0 {
			hits = append(hits, scored{pos: i, score: s})
		}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].score > hits[b].score })

	out := make([]types.Publication, 0, len(hits))
	for _, h := range hits {
		out = append(out, pubs[h.pos])
	}
	return out
}

func localScore(p *types.Publication, terms []string) int {
	title := strings.ToLower(p.Title)
	topics := make([]string, len(p.Topics))
	for i, t := range p.Topics {
		topics[i] = strings.ToLower(t)
	}
	words := append(nonWord.Split(title, -1), nonWord.Split(strings.ToLower(p.Abstract), -1)...)
	words = append(words, topics...)

	score := 0
	for _, term := range terms {
		if strings.Contains(title, term) {
			score += localTitleWeight
		}
		for _, t := range topics {
			if strings.Contains(t, term) {
				score += localTopicWeight
				break
			}
		}
		for _, w := range words {
			if strings.Contains(w, term) {
				score++
			}
		}
	}
	return score
}

// LocalGaps runs the frequency heuristic with the fallback thresholds.
func LocalGaps(pubs []types.Publication) []types.ResearchGap {
	return analytics.ResearchGaps(pubs, analytics.FallbackGapOptions())
}
