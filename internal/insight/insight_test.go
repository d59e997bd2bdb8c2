// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package insight

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/pubscope/internal/analytics"
	"github.com/pdiddy/pubscope/internal/metrics"
	"github.com/pdiddy/pubscope/internal/oracle"
	"github.com/pdiddy/pubscope/pkg/types"
)

// fakeGenerator returns a canned response and records prompts.
type fakeGenerator struct {
	mu      sync.Mutex
	text    string
	parts   []oracle.Part
	err     error
	block   bool
	prompts []string
	calls   int32
}

func (f *fakeGenerator) Generate(ctx context.Context, req oracle.Request) (oracle.Response, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.prompts = append(f.prompts, req.Prompt)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return oracle.Response{}, ctx.Err()
	}
	if f.err != nil {
		return oracle.Response{}, f.err
	}
	parts := f.parts
	if parts == nil && f.text != "" {
		parts = []oracle.Part{{Text: f.text}}
	}
	return oracle.Response{Text: f.text, Parts: parts}, nil
}

func (f *fakeGenerator) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

const summaryResponse = `**One-line summary:** Spaceflight accelerates bone loss in mice.

**Key findings:**
- Trabecular bone volume dropped 30%.
- Osteoclast activity increased
  within the first week.
- Recovery was incomplete after return.

**Relevance to space missions:** Countermeasures are needed for Mars transits.

**Research gap areas:**
- Long-duration recovery`

func TestSummarize_Oracle(t *testing.T) {
	gen := &fakeGenerator{text: summaryResponse}
	s := New(gen).Summarize(context.Background(), "Mice flew on the ISS.")

	assert.Equal(t, SourceOracle, s.Source)
	assert.Equal(t, "Spaceflight accelerates bone loss in mice.", s.OneLineSummary)
	assert.Equal(t, []string{
		"Trabecular bone volume dropped 30%.",
		"Osteoclast activity increased within the first week.",
		"Recovery was incomplete after return.",
	}, s.KeyFindings)
	assert.Equal(t, "Countermeasures are needed for Mars transits.", s.MissionRelevance)
	assert.Equal(t, []string{"Long-duration recovery"}, s.GapAreas)
	assert.Contains(t, gen.lastPrompt(), "Abstract: Mice flew on the ISS.")
}

func TestSummarize_OracleUnavailable(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	m := metrics.New()
	gen := &fakeGenerator{err: errors.New("dial tcp: connection refused")}
	a := New(gen, WithLogger(zap.New(core)), WithMetrics(m))

	s := a.Summarize(context.Background(), "Microgravity and radiation cause bone loss.")

	assert.Equal(t, SourceLocal, s.Source)
	assert.NotEmpty(t, s.OneLineSummary)
	assert.NotEmpty(t, s.KeyFindings)
	assert.NotEmpty(t, s.MissionRelevance)

	entries := logs.FilterMessage("oracle unavailable, using local heuristic").All()
	require.Len(t, entries, 1)
	assert.Equal(t, OpSummarize, entries[0].ContextMap()["operation"])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OracleFallbacks.WithLabelValues(OpSummarize)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OracleRequests.WithLabelValues(OpSummarize, "error")))
}

func TestSummarize_Degrades(t *testing.T) {
	tests := []struct {
		name string
		gen  oracle.Generator
	}{
		{"no generator", nil},
		{"no credentials", oracle.NewClient()},
		{"blank response", &fakeGenerator{text: "   "}},
		{"timeout", &fakeGenerator{block: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(tt.gen, WithTimeout(20*time.Millisecond))
			s := a.Summarize(context.Background(), "Plants grown in microgravity on the ISS.")
			assert.Equal(t, SourceLocal, s.Source)
			assert.NotEmpty(t, s.OneLineSummary)
			assert.NotEmpty(t, s.KeyFindings)
		})
	}
}

func TestParseSummary(t *testing.T) {
	s, err := ParseSummary("The model could not follow the format.")
	require.NoError(t, err)
	assert.Equal(t, DefaultOneLineSummary, s.OneLineSummary)
	assert.Equal(t, DefaultKeyFindings, s.KeyFindings)
	assert.Equal(t, DefaultMissionRelevance, s.MissionRelevance)
	assert.Nil(t, s.GapAreas)

	s, err = ParseSummary("ONE-LINE SUMMARY: Short.\n\nKEY FINDINGS:\n1. First\n2) Second")
	require.NoError(t, err)
	assert.Equal(t, "Short.", s.OneLineSummary)
	assert.Equal(t, []string{"First", "Second"}, s.KeyFindings)

	_, err = ParseSummary(" \n ")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func pubsWithIDs(ids ...string) []types.Publication {
	out := make([]types.Publication, len(ids))
	for i, id := range ids {
		out[i] = types.Publication{ID: id, Title: "Title " + id, Abstract: strings.Repeat("a", 250)}
	}
	return out
}

func ids(pubs []types.Publication) []string {
	out := make([]string, len(pubs))
	for i, p := range pubs {
		out[i] = p.ID
	}
	return out
}

func TestParseRanking(t *testing.T) {
	pubs := pubsWithIDs("pub-1", "pub-12", "PMC5")

	got, err := ParseRanking("Most relevant: pub-12, then pub-1.", pubs)
	require.NoError(t, err)
	assert.Equal(t, []string{"pub-12", "pub-1", "PMC5"}, ids(got))

	got, err = ParseRanking("PMC5,pub-1", pubs)
	require.NoError(t, err)
	assert.Equal(t, []string{"PMC5", "pub-1", "pub-12"}, ids(got))

	_, err = ParseRanking("pub-123, PMC55", pubs)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestRank(t *testing.T) {
	pubs := pubsWithIDs("pub-0", "pub-1", "pub-2")

	gen := &fakeGenerator{text: "pub-2, pub-0"}
	got := New(gen).Rank(context.Background(), "bone", pubs)
	assert.Equal(t, []string{"pub-2", "pub-0", "pub-1"}, ids(got))

	prompt := gen.lastPrompt()
	assert.Contains(t, prompt, `Given the search query: "bone"`)
	assert.Contains(t, prompt, "ID: pub-1")
	assert.Contains(t, prompt, strings.Repeat("a", AbstractPreview)+"...")
	assert.NotContains(t, prompt, strings.Repeat("a", AbstractPreview+1))

	// blank query never reaches the oracle
	gen = &fakeGenerator{text: "pub-2"}
	got = New(gen).Rank(context.Background(), "  ", pubs)
	assert.Equal(t, []string{"pub-0", "pub-1", "pub-2"}, ids(got))
	assert.Zero(t, atomic.LoadInt32(&gen.calls))
}

func rankCorpus() []types.Publication {
	return []types.Publication{
		{ID: "c", Title: "Radiation"},
		{ID: "b", Title: "Plant roots", Abstract: "roots grow; bone not studied", Topics: []string{"plants"}},
		{ID: "a", Title: "Bone density in mice", Abstract: "bone loss observed", Topics: []string{"bone loss"}},
	}
}

func TestRank_FallsBackToLocal(t *testing.T) {
	tests := []struct {
		name string
		gen  oracle.Generator
	}{
		{"oracle error", &fakeGenerator{err: errors.New("503")}},
		{"unrecognized ids", &fakeGenerator{text: "I cannot rank these."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.gen).Rank(context.Background(), "bone", rankCorpus())
			assert.Equal(t, []string{"a", "b"}, ids(got))
		})
	}
}

func TestLocalRank(t *testing.T) {
	pubs := rankCorpus()
	terms := []string{"bone"}
	assert.Equal(t, 12, localScore(&pubs[2], terms))
	assert.Equal(t, 1, localScore(&pubs[1], terms))
	assert.Equal(t, 0, localScore(&pubs[0], terms))

	assert.Empty(t, LocalRank("zebrafish", pubs))
}

func TestParseGaps(t *testing.T) {
	text := "Here are the gaps:\n```json\n" + `[
	  {"topic": "Partial gravity", "severity": 0.6, "relatedTopics": ["bone loss", " "], "description": "Few lunar-gravity studies."},
	  {"topic": "Radiation", "severity": 1.4, "relatedTopics": ["dna damage"], "description": "Deep space doses."},
	  {"topic": "", "severity": 0.9}
	]` + "\n```"

	gaps, err := ParseGaps(text)
	require.NoError(t, err)
	require.Len(t, gaps, 2)
	assert.Equal(t, types.ResearchGap{
		Topic: "Radiation", Severity: 1, RelatedTopics: []string{"dna damage"},
		Description: "Deep space doses.", Kind: types.GapOracle,
	}, gaps[0])
	assert.Equal(t, "Partial gravity", gaps[1].Topic)
	assert.Equal(t, []string{"bone loss"}, gaps[1].RelatedTopics)

	for _, bad := range []string{"no json here", `[{"topic": 3}]`, `[{"topic": ""}]`} {
		_, err := ParseGaps(bad)
		assert.ErrorIs(t, err, ErrMalformedResponse, bad)
	}
}

func gapCorpus(n int) []types.Publication {
	pubs := make([]types.Publication, n)
	for i := range pubs {
		topics := []string{"microgravity"}
		if i%7 == 0 {
			topics = append(topics, "radiation")
		}
		pubs[i] = types.Publication{ID: "p" + string(rune('a'+i)), Title: "Study", Year: 2010 + i%5, Topics: topics}
	}
	return pubs
}

func TestFindGaps_Oracle(t *testing.T) {
	gen := &fakeGenerator{text: `[{"topic":"Sleep","severity":0.5,"relatedTopics":["circadian"],"description":"d"}]`}
	gaps := New(gen).FindGaps(context.Background(), gapCorpus(25))

	require.Len(t, gaps, 1)
	assert.Equal(t, "Sleep", gaps[0].Topic)
	assert.Equal(t, GapSampleSize, strings.Count(gen.lastPrompt(), "Title: "))
}

func TestFindGaps_FallsBackToLocal(t *testing.T) {
	pubs := gapCorpus(10)
	gaps := New(&fakeGenerator{text: "Sorry, no JSON."}).FindGaps(context.Background(), pubs)

	assert.Equal(t, analytics.ResearchGaps(pubs, analytics.FallbackGapOptions()), gaps)
	require.NotEmpty(t, gaps)
	assert.Equal(t, "radiation", gaps[0].Topic)
	for _, g := range gaps {
		assert.GreaterOrEqual(t, g.Severity, 0.0)
		assert.LessOrEqual(t, g.Severity, 1.0)
	}

	assert.Equal(t, []types.ResearchGap{}, New(nil).FindGaps(context.Background(), nil))
}

func TestSummarizeAll(t *testing.T) {
	gen := &fakeGenerator{text: summaryResponse}
	pubs := pubsWithIDs("a", "b", "c", "d", "e")
	out, err := New(gen, WithConcurrency(2)).SummarizeAll(context.Background(), pubs)
	require.NoError(t, err)
	require.Len(t, out, len(pubs))
	for _, s := range out {
		assert.Equal(t, SourceOracle, s.Source)
	}
	assert.Equal(t, int32(len(pubs)), atomic.LoadInt32(&gen.calls))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(gen).SummarizeAll(ctx, pubs)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIllustrate(t *testing.T) {
	gen := &fakeGenerator{parts: []oracle.Part{
		{Text: "Here is your image"},
		{MimeType: "image/png", Data: []byte{0x89, 0x50}},
	}}
	url, ok := New(gen).Illustrate(context.Background(), "a plant on the ISS")
	require.True(t, ok)
	assert.Equal(t, "data:image/png;base64,iVA=", url)

	_, ok = New(&fakeGenerator{text: "no image"}).Illustrate(context.Background(), "x")
	assert.False(t, ok)

	_, ok = New(nil).Illustrate(context.Background(), "x")
	assert.False(t, ok)
}

func TestLocalSummary(t *testing.T) {
	s := LocalSummary("Microgravity and radiation cause bone loss; future work is needed.")
	assert.Equal(t, SourceLocal, s.Source)
	assert.Equal(t, "Research investigating microgravity in radiation conditions, with implications for bone loss.", s.OneLineSummary)
	assert.Equal(t, []string{
		"Microgravity showed significant changes under radiation conditions.",
		"Bone loss demonstrated potential adaptations to microgravity.",
		"Results suggest important considerations for astronaut health during long-duration missions.",
	}, s.KeyFindings)
	assert.Equal(t, "This research is relevant to future Moon and Mars missions as it addresses microgravity challenges in the space environment.", s.MissionRelevance)
	assert.Len(t, s.GapAreas, 2)

	s = LocalSummary("Research results analysis")
	assert.Equal(t, "Research investigating space biology in microgravity conditions, with implications for future space missions.", s.OneLineSummary)
	assert.Nil(t, s.GapAreas)

	assert.Equal(t, LocalSummary("same text"), LocalSummary("same text"))
}

func TestSummaryKeywords(t *testing.T) {
	assert.Equal(t, []string{"Zebrafish", "embryos", "developed", "normally"},
		summaryKeywords("Zebrafish embryos developed normally."))
	assert.Equal(t, []string{"microgravity", "radiation", "bone loss"},
		summaryKeywords("MICROGRAVITY, radiation and bone loss"))
}

func TestTracker(t *testing.T) {
	tr := NewTracker()
	first, ctx1 := tr.Begin(context.Background())
	assert.True(t, tr.Current(first))

	second, ctx2 := tr.Begin(context.Background())
	assert.False(t, tr.Current(first))
	assert.True(t, tr.Current(second))
	assert.Positive(t, second.ID.Compare(first.ID))
	assert.ErrorIs(t, ctx1.Err(), context.Canceled)
	assert.NoError(t, ctx2.Err())

	delivered := ""
	assert.False(t, tr.Deliver(first, func() { delivered = "stale" }))
	assert.True(t, tr.Deliver(second, func() { delivered = "fresh" }))
	assert.Equal(t, "fresh", delivered)

	tr.End(first)
	assert.NoError(t, ctx2.Err())
	tr.End(second)
	assert.ErrorIs(t, ctx2.Err(), context.Canceled)
	assert.NotEmpty(t, second.String())
}
