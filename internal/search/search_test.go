// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubscope/internal/index"
	"github.com/pdiddy/pubscope/internal/normalize"
	"github.com/pdiddy/pubscope/internal/source"
	"github.com/pdiddy/pubscope/pkg/types"
)

func ids(pubs []types.Publication) []string {
	out := make([]string, 0, len(pubs))
	for _, p := range pubs {
		out = append(out, p.ID)
	}
	return out
}

func boneCorpus() []types.Publication {
	return []types.Publication{
		{ID: "P1", Year: 2010, Title: "bone density study", Topics: []string{"bone loss"}},
		{ID: "P2", Year: 2015, Title: "bone density study", Topics: []string{"bone loss", "radiation"}},
		{ID: "P3", Year: 2020, Title: "Cosmic rays and DNA", Topics: []string{"radiation"}},
	}
}

// --- Indexed ---

func TestIndexed_Bone(t *testing.T) {
	pubs := boneCorpus()
	// P3 carries no "bone" anywhere, topics included.
	pubs[0].Topics = []string{"density"}
	pubs[1].Topics = []string{"radiation"}

	got := Indexed(index.Build(pubs), pubs, "bone")
	assert.Equal(t, []string{"P1", "P2"}, ids(got))
}

func TestIndexed_ScoresDistinctQueryTokens(t *testing.T) {
	pubs := []types.Publication{
		{ID: "A", Title: "radiation radiation radiation"},
		{ID: "B", Title: "radiation shielding"},
		{ID: "C", Title: "shielding materials"},
		{ID: "D", Title: "unrelated"},
	}
	idx := index.Build(pubs)

	hits := IndexedHits(idx, "radiation shielding radiation")
	assert.Equal(t, []Hit{
		{Position: 1, Score: 2},
		{Position: 0, Score: 1},
		{Position: 2, Score: 1},
	}, hits)

	assert.Equal(t, []string{"B", "A", "C"}, ids(Indexed(idx, pubs, "radiation shielding")))
}

func TestIndexed_EmptyQueryReturnsAll(t *testing.T) {
	pubs := boneCorpus()
	got := Indexed(index.Build(pubs), pubs, "  a, of ")
	assert.Equal(t, ids(pubs), ids(got))
}

// --- Weighted ---

func TestScore(t *testing.T) {
	p := types.Publication{
		Title:    "Bone loss in microgravity",
		Abstract: "We measured bone density.",
		Keywords: []string{"osteoporosis", "bone"},
		Authors:  []string{"A. Boneham"},
	}
	tests := []struct {
		terms []string
		want  int
	}{
		{[]string{"bone"}, TitleWeight + AbstractWeight + KeywordWeight + AuthorWeight},
		{[]string{"micro"}, TitleWeight},
		{[]string{"density"}, AbstractWeight},
		{[]string{"osteo"}, KeywordWeight},
		{[]string{"missing"}, 0},
		{[]string{"bone", "density"}, 9},
	}
	for _, tt := range tests {
		if got := Score(p, tt.terms); got != tt.want {
			t.Errorf("Score(%v) = %d, want %d", tt.terms, got, tt.want)
		}
	}
}

func TestScore_MissingFields(t *testing.T) {
	assert.Zero(t, Score(types.Publication{}, []string{"bone"}))
}

func TestWeighted_RanksAndExcludesZero(t *testing.T) {
	pubs := []types.Publication{
		{ID: "abstract-only", Abstract: "effects on plants"},
		{ID: "none", Title: "cardiac output"},
		{ID: "title", Title: "Plants in orbit"},
		{ID: "abstract-too", Abstract: "plants again"},
	}
	got := Weighted(pubs, "plants")
	assert.Equal(t, []string{"title", "abstract-only", "abstract-too"}, ids(got))
}

func TestWeighted_RepeatedWordsCountOnce(t *testing.T) {
	p := types.Publication{Title: "Plants in orbit", Abstract: "plants"}
	assert.Equal(t, []string{"plants"}, Terms("plants PLANTS plants"))
	assert.Equal(t, Score(p, Terms("plants")), Score(p, Terms("plants plants")))
	assert.Equal(t, 4, Score(p, Terms("plants plants")))
}

// --- Full text ---

func TestFullText_AllTermsRequired(t *testing.T) {
	pubs := []types.Publication{
		{ID: "both", Title: "alpha study", Abstract: "with beta"},
		{ID: "alpha", Title: "alpha only"},
		{ID: "beta-journal", Title: "x", Journal: "Beta Letters"},
		{ID: "split", Authors: []string{"Alphonse Alpha"}, Journal: "betamax"},
	}

	both := FullText(pubs, "Alpha BETA")
	assert.Equal(t, []string{"both", "split"}, ids(both))

	for _, q := range []string{"alpha", "beta"} {
		sub := ids(FullText(pubs, q))
		for _, id := range ids(both) {
			assert.Contains(t, sub, id, "dropping a term must not lose %s", id)
		}
	}
}

func TestFullText_DoesNotMatchKeywords(t *testing.T) {
	pubs := []types.Publication{{ID: "k", Keywords: []string{"alpha"}}}
	assert.Empty(t, FullText(pubs, "alpha"))
}

// --- Run ---

func TestRun(t *testing.T) {
	pubs := boneCorpus()
	idx := index.Build(pubs)

	got, err := Run(types.ModeIndexed, idx, pubs, "radiation")
	require.NoError(t, err)
	assert.Equal(t, []string{"P2", "P3"}, ids(got))

	got, err = Run(types.ModeIndexed, nil, pubs, "cosmic")
	require.NoError(t, err)
	assert.Equal(t, []string{"P3"}, ids(got))

	got, err = Run(types.ModeFullText, idx, pubs, "density study")
	require.NoError(t, err)
	assert.Equal(t, []string{"P1", "P2"}, ids(got))

	_, err = Run("vector", idx, pubs, "x")
	assert.Error(t, err)
}

// --- Sort ---

func TestSort(t *testing.T) {
	pubs := []types.Publication{
		{ID: "a", Year: 2015, Title: "plants"},
		{ID: "b", Year: 0, PMCID: "PMC1"},
		{ID: "c", Year: 2020, Title: "plants in plants", Abstract: "plants"},
		{ID: "d", Year: 2015, PMCID: "PMC2"},
	}

	tests := []struct {
		opt   types.SortOption
		query string
		want  []string
	}{
		{types.SortYearDesc, "", []string{"c", "a", "d", "b"}},
		{"", "", []string{"c", "a", "d", "b"}},
		{types.SortYearAsc, "", []string{"b", "a", "d", "c"}},
		{types.SortCitations, "", []string{"b", "d", "a", "c"}},
		{types.SortRelevance, "", []string{"a", "b", "c", "d"}},
		{types.SortRelevance, "plants", []string{"c", "a", "b", "d"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.opt)+"/"+tt.query, func(t *testing.T) {
			got, err := Sort(pubs, tt.opt, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}

	assert.Equal(t, "a", pubs[0].ID, "input must not be reordered")

	_, err := Sort(pubs, "random", "")
	assert.Error(t, err)
}

func TestSort_DefaultedYearSortsAsZero(t *testing.T) {
	n := normalize.New(normalize.WithClock(func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }))
	pubs, _ := n.Normalize([]source.Record{
		{"Title": "undated", "PMCID": "PMC2"},
		{"Title": "dated", "PMCID": "PMC1", "Publication Date": "2010 Mar 4"},
		{"id": "cur-1", "title": "curated, no year", "year": "n/a"},
	})
	require.Len(t, pubs, 3)
	require.Equal(t, 2025, pubs[0].Year)

	desc, err := Sort(pubs, types.SortYearDesc, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"PMC1", "PMC2", "cur-1"}, ids(desc))

	asc, err := Sort(pubs, types.SortYearAsc, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"PMC2", "cur-1", "PMC1"}, ids(asc))
}

// --- Paginate ---

func TestPaginate(t *testing.T) {
	pubs := make([]types.Publication, 25)
	for i := range pubs {
		pubs[i].ID = string(rune('a' + i))
	}

	p := Paginate(pubs, 1, 0)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.Len(t, p.Items, 12)
	assert.Equal(t, 25, p.Total)
	assert.Equal(t, 3, p.TotalPages)

	p = Paginate(pubs, 3, 12)
	assert.Equal(t, []string{"y"}, ids(p.Items))

	p = Paginate(pubs, 4, 12)
	assert.Empty(t, p.Items)

	p = Paginate(pubs, -2, 10)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, "a", p.Items[0].ID)

	p = Paginate(nil, 1, 12)
	assert.Zero(t, p.TotalPages)
	assert.NotNil(t, p.Items)
}

// --- Query file ---

func TestQueryFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q.yaml")
	params := QueryParams{
		Text:    "bone",
		Mode:    types.ModeWeighted,
		Sort:    types.SortRelevance,
		Filters: types.SearchFilters{Years: [2]int{2010, 2020}, Topics: []string{"bone loss"}},
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, WriteQueryFile(path, params, boneCorpus()[:2], now))

	qf, err := ReadQueryFile(path)
	require.NoError(t, err)
	assert.Equal(t, params, qf.Query)
	assert.Equal(t, []string{"P1", "P2"}, qf.Results)
	assert.Equal(t, 2, qf.Summary.Total)
	assert.True(t, now.Equal(qf.Summary.Timestamp))
}

func TestReadQueryFile_InvalidYears(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q.yaml")
	params := QueryParams{Filters: types.SearchFilters{Years: [2]int{2020, 2010}}}
	require.NoError(t, WriteQueryFile(path, params, nil, time.Now()))

	_, err := ReadQueryFile(path)
	assert.Error(t, err)
}
