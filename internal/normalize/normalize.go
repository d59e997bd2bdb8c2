// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize maps raw source rows onto the canonical Publication.
// Two row schemas are recognized: the scraped export (capitalized headers,
// numbered full-text sections) and the curated catalog (lowercase headers
// with topics, organisms, and mission labels). Field access never fails; a
// missing or malformed value takes its default.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/pdiddy/pubscope/internal/source"
	"github.com/pdiddy/pubscope/internal/topics"
	"github.com/pdiddy/pubscope/pkg/types"
)

// DefaultMaxTopics bounds the topics kept per publication.
const DefaultMaxTopics = 10

// Schema identifies the layout of a raw row.
type Schema int

const (
	SchemaScraped Schema = iota
	SchemaCurated
)

func (s Schema) String() string {
	if s == SchemaCurated {
		return "curated"
	}
	return "scraped"
}

// scrapedMarkers are headers only the scraped export carries.
var scrapedMarkers = []string{
	"Title", "PMCID", "Publication Date", "Full Text Available",
	"Scraping Success", "Section_1_Name", "publicationDate", "pmcid",
}

// Detect reports the schema of rec.
func Detect(rec source.Record) Schema {
	if rec.Has(scrapedMarkers...) {
		return SchemaScraped
	}
	return SchemaCurated
}

// Normalizer converts raw rows to publications. It is safe for concurrent
// use once constructed.
type Normalizer struct {
	extractor *topics.Extractor
	logger    *zap.Logger
	now       func() time.Time
	maxTopics int
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLogger sets the logger receiving duplicate and identity diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(n *Normalizer) { n.logger = l }
}

// WithClock sets the clock used for the current-year fallback.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) { n.now = now }
}

// WithExtractor sets the topic extractor.
func WithExtractor(e *topics.Extractor) Option {
	return func(n *Normalizer) { n.extractor = e }
}

// WithMaxTopics bounds topics per publication. Non-positive values keep the
// default.
func WithMaxTopics(max int) Option {
	return func(n *Normalizer) {
		if max > 0 {
			n.maxTopics = max
		}
	}
}

// New returns a Normalizer with defaults for every unset option.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		extractor: topics.New(nil, nil),
		logger:    zap.NewNop(),
		now:       time.Now,
		maxTopics: DefaultMaxTopics,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Record converts one raw row at position pos. It never fails.
func (n *Normalizer) Record(rec source.Record, pos int) types.Publication {
	var p types.Publication
	switch Detect(rec) {
	case SchemaCurated:
		p = n.curated(rec)
	default:
		p = n.scraped(rec)
	}
	if p.ID == "" {
		p.ID = fmt.Sprintf("pub-%d", pos)
	}
	return p
}

func (n *Normalizer) scraped(rec source.Record) types.Publication {
	date := rec.Get("Publication Date", "publicationDate")
	year, known := n.yearFromDate(date)
	p := types.Publication{
		ID:                rec.Get("PMCID", "pmcid"),
		Title:             StripHTML(rec.Get("Title", "title")),
		Authors:           authorList(rec.Get("Authors", "authors")),
		Year:              year,
		YearDefaulted:     !known,
		Abstract:          StripHTML(rec.Get("Abstract", "abstract")),
		Journal:           rec.Get("Journal", "journal"),
		DOI:               rec.Get("DOI", "doi"),
		PMCID:             rec.Get("PMCID", "pmcid"),
		PMID:              rec.Get("PMID", "pmid"),
		URL:               rec.Get("URL", "url"),
		PublicationDate:   date,
		Volume:            rec.Get("Volume", "volume"),
		Issue:             rec.Get("Issue", "issue"),
		Pages:             rec.Get("Pages", "pages"),
		Sections:          sections(rec),
		FullTextAvailable: yes(rec.Get("Full Text Available", "fullTextAvailable")),
		ScrapingSuccess:   yes(rec.Get("Scraping Success", "scrapingSuccess")),
	}
	p.Topics = n.topicsFor(p.Title+" "+p.Abstract, "")
	return p
}

func (n *Normalizer) curated(rec source.Record) types.Publication {
	keywords := rec.Get("keywords")
	year, known := n.year(rec.Get("year"))
	p := types.Publication{
		ID:                rec.Get("id"),
		Title:             StripHTML(rec.Get("title")),
		Authors:           splitList(rec.Get("authors"), ";"),
		Year:              year,
		YearDefaulted:     !known,
		Abstract:          StripHTML(rec.Get("abstract")),
		Journal:           rec.Get("journal"),
		DOI:               rec.Get("doi"),
		URL:               rec.Get("url"),
		PublicationDate:   rec.Get("year"),
		Volume:            rec.Get("volume"),
		Issue:             rec.Get("issue"),
		Pages:             rec.Get("pages"),
		Keywords:          splitList(keywords, ";"),
		Organisms:         splitList(rec.Get("organisms"), ";"),
		ExperimentType:    splitList(rec.Get("experiment_type", "experimentType"), ";"),
		Mission:           rec.Get("mission"),
		Platform:          rec.Get("platform"),
		FullTextAvailable: true,
		ScrapingSuccess:   true,
	}
	if explicit := splitList(rec.Get("topics"), ";"); len(explicit) > 0 {
		p.Topics = n.bound(explicit)
	} else {
		p.Topics = n.topicsFor(p.Title+" "+p.Abstract, keywords)
	}
	return p
}

// topicsFor extracts topics from text and keywords, falling back to lexical
// words when nothing matches.
func (n *Normalizer) topicsFor(text, keywords string) []string {
	t := n.extractor.Extract(text, keywords)
	if len(t) == 0 {
		t = n.extractor.Lexical(text, n.maxTopics)
	}
	return n.bound(t)
}

// bound dedupes topics case-sensitively and keeps the first maxTopics.
func (n *Normalizer) bound(in []string) []string {
	out := make([]string, 0, min(len(in), n.maxTopics))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == n.maxTopics {
			break
		}
	}
	return out
}

// yearFromDate parses the leading digits of the first whitespace-separated
// token of a date like "2017 Apr 11" or "2017-04-11". It reports false
// when the current year was substituted.
func (n *Normalizer) yearFromDate(date string) (int, bool) {
	fields := strings.Fields(date)
	if len(fields) == 0 {
		return n.now().Year(), false
	}
	return n.year(fields[0])
}

func (n *Normalizer) year(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if end < 0 {
		end = len(s)
	}
	y, err := strconv.Atoi(s[:end])
	if err != nil || y <= 0 {
		return n.now().Year(), false
	}
	return y, true
}

// maxSections bounds the numbered section columns scanned.
const maxSections = 50

// sections collects Section_N_Name/Section_N_Content pairs until the first
// missing column pair, dropping entries with empty names.
func sections(rec source.Record) []types.Section {
	var out []types.Section
	for i := 1; i <= maxSections; i++ {
		nameKey := fmt.Sprintf("Section_%d_Name", i)
		contentKey := fmt.Sprintf("Section_%d_Content", i)
		if !rec.Has(nameKey, contentKey) {
			break
		}
		name := rec.Get(nameKey)
		if name == "" {
			continue
		}
		out = append(out, types.Section{Name: name, Content: StripHTML(rec.Get(contentKey))})
	}
	return out
}

// authorList splits a scraped author field. Spreadsheet cells separate
// names with commas; JSON author arrays arrive joined with semicolons.
func authorList(s string) []string {
	if strings.Contains(s, ";") {
		return splitList(s, ";")
	}
	return splitList(s, ",")
}

func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func yes(s string) bool {
	return s == "Yes"
}
