// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package insight

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/pdiddy/pubscope/internal/analytics"
	"github.com/pdiddy/pubscope/pkg/types"
)

// ErrMalformedResponse is returned when oracle text cannot be interpreted.
var ErrMalformedResponse = errors.New("malformed oracle response")

// Placeholders substituted when a summary response lacks a section.
const (
	DefaultOneLineSummary   = "Research investigating effects of space environment on biological systems"
	DefaultMissionRelevance = "This research has implications for long-duration space missions"
)

// DefaultKeyFindings is substituted when a summary response lacks findings.
var DefaultKeyFindings = []string{
	"Significant changes observed in space conditions",
	"Adaptation mechanisms identified",
	"Implications for astronaut health",
}

const (
	sectionSummary   = "one-line summary"
	sectionFindings  = "key findings"
	sectionRelevance = "relevance to space missions"
	sectionGaps      = "research gap areas"
)

var (
	bulletPrefix = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)
	gapsJSON     = regexp.MustCompile(`(?s)\[\s*\{.*\}\s*\]`)
)

// ParseSummary extracts the labelled sections of a summary response.
// Missing sections are replaced by placeholders; only blank text is an error.
func ParseSummary(text string) (types.AISummary, error) {
	if strings.TrimSpace(text) == "" {
		return types.AISummary{}, fmt.Errorf("%w: empty summary", ErrMalformedResponse)
	}

	s := types.AISummary{
		OneLineSummary:   section(text, sectionSummary),
		KeyFindings:      listItems(text, sectionFindings),
		MissionRelevance: section(text, sectionRelevance),
		GapAreas:         listItems(text, sectionGaps),
		Source:           SourceOracle,
	}
	if s.OneLineSummary == "" {
		s.OneLineSummary = DefaultOneLineSummary
	}
	if len(s.KeyFindings) == 0 {
		s.KeyFindings = append([]string(nil), DefaultKeyFindings...)
	}
	if s.MissionRelevance == "" {
		s.MissionRelevance = DefaultMissionRelevance
	}
	return s, nil
}

// section returns the text following a heading up to the next blank line.
func section(text, name string) string {
	re := regexp.MustCompile(`(?is)` + regexp.QuoteMeta(name) + `[*:\s]+(.*?)(?:\n[ \t]*\n|$)`)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(m[1]), "*"))
}

// listItems splits a section into bullet items. Lines without a bullet
// continue the previous item.
func listItems(text, name string) []string {
	body := section(text, name)
	if body == "" {
		return nil
	}
	var items []string
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		bulleted := bulletPrefix.MatchString(line)
		item := strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))
		if item == "" {
			continue
		}
		if !bulleted && len(items) > 0 {
			items[len(items)-1] += " " + item
			continue
		}
		items = append(items, item)
	}
	return items
}

// ParseRanking orders pubs by the first mention of each publication id in
// text. Publications the text does not mention follow in their original
// order. A response naming no known id is malformed.
func ParseRanking(text string, pubs []types.Publication) ([]types.Publication, error) {
	type mention struct {
		at  int
		pos int
	}
	var found []mention
	ranked := make([]bool, len(pubs))
	for i := range pubs {
		if at := indexID(text, pubs[i].ID); at >= 0 {
			found = append(found, mention{at: at, pos: i})
			ranked[i] = true
		}
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: no publication ids in ranking", ErrMalformedResponse)
	}
	sort.SliceStable(found, func(a, b int) bool { return found[a].at < found[b].at })

	out := make([]types.Publication, 0, len(pubs))
	for _, m := range found {
		out = append(out, pubs[m.pos])
	}
	for i := range pubs {
		if !ranked[i] {
			out = append(out, pubs[i])
		}
	}
	return out, nil
}

// indexID finds id in text where it is not part of a longer identifier.
func indexID(text, id string) int {
	if id == "" {
		return -1
	}
	for from := 0; from <= len(text)-len(id); {
		i := strings.Index(text[from:], id)
		if i < 0 {
			return -1
		}
		at := from + i
		end := at + len(id)
		if (at == 0 || !idRune(rune(text[at-1]))) && (end == len(text) || !idRune(rune(text[end]))) {
			return at
		}
		from = at + 1
	}
	return -1
}

func idRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'
}

type oracleGap struct {
	Topic         string   `json:"topic"`
	Severity      float64  `json:"severity"`
	RelatedTopics []string `json:"relatedTopics"`
	Description   string   `json:"description"`
}

// ParseGaps extracts the JSON array of gaps embedded in text. Severities are
// clamped to [0, 1] and the result is sorted by severity, highest first.
func ParseGaps(text string) ([]types.ResearchGap, error) {
	raw := gapsJSON.FindString(text)
	if raw == "" {
		return nil, fmt.Errorf("%w: no gap array found", ErrMalformedResponse)
	}
	var parsed []oracleGap
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	gaps := make([]types.ResearchGap, 0, len(parsed))
	for _, g := range parsed {
		topic := strings.TrimSpace(g.Topic)
		if topic == "" {
			continue
		}
		related := make([]string, 0, len(g.RelatedTopics))
		for _, r := range g.RelatedTopics {
			if r = strings.TrimSpace(r); r != "" {
				related = append(related, r)
			}
		}
		gaps = append(gaps, types.ResearchGap{
			Topic:         topic,
			Severity:      analytics.Clamp(g.Severity),
			RelatedTopics: related,
			Description:   strings.TrimSpace(g.Description),
			Kind:          types.GapOracle,
		})
	}
	if len(gaps) == 0 {
		return nil, fmt.Errorf("%w: no usable gaps", ErrMalformedResponse)
	}
	sort.SliceStable(gaps, func(i, j int) bool { return gaps[i].Severity > gaps[j].Severity })
	return gaps, nil
}
