// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// TopicDistribution counts the publications carrying one topic.
type TopicDistribution struct {
	Topic string `json:"topic" yaml:"topic"`
	Count int    `json:"count" yaml:"count"`

	// Publications lists the ids of the publications carrying the topic.
	Publications []string `json:"publications" yaml:"publications"`
}

// TopicCount is a topic with its count inside some grouping.
type TopicCount struct {
	Topic string `json:"topic" yaml:"topic"`
	Count int    `json:"count" yaml:"count"`
}

// YearlyStats summarizes one publication year.
type YearlyStats struct {
	Year             int `json:"year" yaml:"year"`
	PublicationCount int `json:"publication_count" yaml:"publication_count"`

	// TopTopics holds at most five topics, most frequent first.
	TopTopics []TopicCount `json:"top_topics" yaml:"top_topics"`
}

// GapKind records which heuristic flagged a research gap.
type GapKind string

const (
	GapLowCoverage GapKind = "low-coverage"
	GapDeclining   GapKind = "declining"
	GapOracle      GapKind = "oracle"
)

// ResearchGap is a topic flagged as under-researched. Severity is derived
// from current corpus statistics on every analysis run.
type ResearchGap struct {
	Topic string `json:"topic" yaml:"topic"`

	// Severity is in [0, 1]; higher means a more significant gap.
	Severity float64 `json:"severity" yaml:"severity"`

	RelatedTopics []string `json:"related_topics" yaml:"related_topics"`
	Description   string   `json:"description" yaml:"description"`
	Kind          GapKind  `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// AISummary is the structured summary of one abstract.
type AISummary struct {
	OneLineSummary   string   `json:"one_line_summary" yaml:"one_line_summary"`
	KeyFindings      []string `json:"key_findings" yaml:"key_findings"`
	MissionRelevance string   `json:"mission_relevance" yaml:"mission_relevance"`
	GapAreas         []string `json:"gap_areas,omitempty" yaml:"gap_areas,omitempty"`

	// Source is "oracle" when the external model produced the summary and
	// "local" when the deterministic heuristic did.
	Source string `json:"source" yaml:"source"`
}

// Insights holds dataset-level observations for the dashboard header.
type Insights struct {
	Timespan        string `json:"timespan" yaml:"timespan"`
	TopicFocus      string `json:"topic_focus" yaml:"topic_focus"`
	Organisms       string `json:"organisms" yaml:"organisms"`
	Trends          string `json:"trends" yaml:"trends"`
	Gaps            string `json:"gaps" yaml:"gaps"`
	Recommendations string `json:"recommendations" yaml:"recommendations"`
}
