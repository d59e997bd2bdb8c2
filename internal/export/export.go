// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders publications and analytics as terminal tables,
// JSON, YAML, and CSL-YAML.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubscope/internal/search"
	"github.com/pdiddy/pubscope/pkg/types"
)

// Format names an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatCSL   Format = "csl"
)

const (
	// SummaryLength is the number of abstract characters kept in a summary.
	SummaryLength = 200

	// AuthorLimit is the number of authors named before "and N more".
	AuthorLimit = 3
)

// WritePage renders one result page in format.
func WritePage(page search.Page, format Format, w io.Writer) error {
	switch format {
	case FormatTable, "":
		PublicationTable(page, w)
		return nil
	case FormatJSON:
		return WriteJSON(page, w)
	case FormatYAML:
		return WriteYAML(page, w)
	case FormatCSL:
		return WriteCSL(page.Items, w)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// WriteJSON writes v as indented JSON to w.
func WriteJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteYAML writes v as YAML to w.
func WriteYAML(v any, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(v)
}

// PublicationTable writes a page of publications as a table to w.
func PublicationTable(page search.Page, w io.Writer) {
	if len(page.Items) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-14s  %-56s  %-24s  %-4s\n",
		"#", "ID", "Title", "Authors", "Year")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	offset := (page.Page - 1) * page.PageSize
	for i, p := range page.Items {
		year := ""
		if p.Year > 0 {
			year = fmt.Sprintf("%d", p.Year)
		}
		fmt.Fprintf(w, "%-4d  %-14s  %-56s  %-24s  %-4s\n",
			offset+i+1, truncate(p.ID, 14), truncate(p.Title, 56),
			truncate(FormatAuthors(p.Authors, 1), 24), year)
	}

	fmt.Fprintf(w, "\npage %d of %d, %d results\n", page.Page, max(page.TotalPages, 1), page.Total)
}

// PublicationDetail writes every displayed field of p to w.
func PublicationDetail(p types.Publication, w io.Writer) {
	fmt.Fprintf(w, "%s\n%s\n\n", p.Title, strings.Repeat("=", min(len(p.Title), 80)))
	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(w, "%-10s %s\n", name+":", value)
		}
	}
	field("ID", p.ID)
	field("Authors", FormatAuthors(p.Authors, AuthorLimit))
	if p.Year > 0 {
		field("Year", fmt.Sprintf("%d", p.Year))
	}
	field("Journal", p.Journal)
	field("DOI", FormatDOI(p.DOI))
	field("PMCID", p.PMCID)
	field("Topics", strings.Join(p.Topics, ", "))
	field("Organisms", strings.Join(p.Organisms, ", "))
	field("Mission", p.Mission)
	field("Platform", p.Platform)
	if p.Abstract != "" {
		fmt.Fprintf(w, "\n%s\n", p.Abstract)
	}
	for _, s := range p.Sections {
		fmt.Fprintf(w, "\n## %s\n%s\n", s.Name, s.Content)
	}
}

// DistributionTable writes topic counts to w.
func DistributionTable(dist []types.TopicDistribution, w io.Writer) {
	if len(dist) == 0 {
		fmt.Fprintln(w, "No topics.")
		return
	}
	fmt.Fprintf(w, "%-40s  %6s\n", "Topic", "Count")
	fmt.Fprintln(w, strings.Repeat("-", 48))
	for _, d := range dist {
		fmt.Fprintf(w, "%-40s  %6d\n", truncate(d.Topic, 40), d.Count)
	}
}

// TimelineTable writes per-year counts and top topics to w.
func TimelineTable(stats []types.YearlyStats, w io.Writer) {
	if len(stats) == 0 {
		fmt.Fprintln(w, "No publications.")
		return
	}
	fmt.Fprintf(w, "%-4s  %6s  %s\n", "Year", "Count", "Top topics")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, s := range stats {
		top := make([]string, len(s.TopTopics))
		for i, t := range s.TopTopics {
			top[i] = fmt.Sprintf("%s (%d)", t.Topic, t.Count)
		}
		fmt.Fprintf(w, "%-4d  %6d  %s\n", s.Year, s.PublicationCount, strings.Join(top, ", "))
	}
}

// GapTable writes research gaps to w.
func GapTable(gaps []types.ResearchGap, w io.Writer) {
	if len(gaps) == 0 {
		fmt.Fprintln(w, "No research gaps identified.")
		return
	}
	fmt.Fprintf(w, "%-32s  %-8s  %-12s  %s\n", "Topic", "Severity", "Kind", "Related")
	fmt.Fprintln(w, strings.Repeat("-", 96))
	for _, g := range gaps {
		fmt.Fprintf(w, "%-32s  %8.2f  %-12s  %s\n",
			truncate(g.Topic, 32), g.Severity, g.Kind, strings.Join(g.RelatedTopics, ", "))
	}
}

// SummaryText writes an AI summary to w.
func SummaryText(s types.AISummary, w io.Writer) {
	fmt.Fprintf(w, "Summary: %s\n\nKey findings:\n", s.OneLineSummary)
	for _, f := range s.KeyFindings {
		fmt.Fprintf(w, "  - %s\n", f)
	}
	fmt.Fprintf(w, "\nMission relevance: %s\n", s.MissionRelevance)
	if len(s.GapAreas) > 0 {
		fmt.Fprintln(w, "\nResearch gap areas:")
		for _, g := range s.GapAreas {
			fmt.Fprintf(w, "  - %s\n", g)
		}
	}
	fmt.Fprintf(w, "\n(source: %s)\n", s.Source)
}

// InsightsText writes dataset insights to w.
func InsightsText(in types.Insights, w io.Writer) {
	for _, line := range []struct{ name, text string }{
		{"Timespan", in.Timespan},
		{"Topics", in.TopicFocus},
		{"Organisms", in.Organisms},
		{"Trends", in.Trends},
		{"Gaps", in.Gaps},
		{"Next", in.Recommendations},
	} {
		fmt.Fprintf(w, "%-10s %s\n", line.name+":", line.text)
	}
}

// Summaries returns display summaries with abstracts truncated to
// SummaryLength characters.
func Summaries(pubs []types.Publication) []types.PublicationSummary {
	out := make([]types.PublicationSummary, len(pubs))
	for i, p := range pubs {
		topics := p.Topics
		if topics == nil {
			topics = []string{}
		}
		out[i] = types.PublicationSummary{
			ID:                p.ID,
			Title:             p.Title,
			Authors:           p.Authors,
			Year:              p.Year,
			Abstract:          Ellipsize(p.Abstract, SummaryLength),
			Topics:            topics,
			FullTextAvailable: p.FullTextAvailable,
		}
	}
	return out
}

// Ellipsize keeps the first n characters of s and appends "..." when
// anything was cut.
func Ellipsize(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// FormatAuthors names up to limit authors and counts the rest.
func FormatAuthors(authors []string, limit int) string {
	switch len(authors) {
	case 0:
		return "Unknown"
	case 1:
		return authors[0]
	}
	if limit <= 0 {
		limit = AuthorLimit
	}
	if len(authors) <= limit {
		return strings.Join(authors, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(authors[:limit], ", "), len(authors)-limit)
}

// FormatDOI returns doi as a resolver URL. URLs are returned unchanged.
func FormatDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	if doi == "" || strings.HasPrefix(doi, "http") {
		return doi
	}
	return "https://doi.org/" + doi
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
