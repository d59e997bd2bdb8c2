// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/pubscope/pkg/types"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Bone density study", []string{"bone", "density", "study"}},
		{"ISS-based  RNA-seq, of mice", []string{"iss", "based", "rna", "seq", "mice"}},
		{"a an to", nil},
		{"", nil},
		{"snake_case stays", []string{"snake_case", "stays"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.in))
		})
	}
}

func TestBuild_DedupesWithinPublication(t *testing.T) {
	pubs := []types.Publication{
		{Title: "Bone bone BONE", Abstract: "bone loss in bone"},
		{Title: "Radiation", Topics: []string{"bone loss"}},
	}
	idx := Build(pubs)

	assert.Equal(t, []int{0, 1}, idx.Lookup("bone"))
	assert.Equal(t, []int{0, 1}, idx.Lookup("loss"))
	assert.Equal(t, []int{1}, idx.Lookup("radiation"))
	assert.Equal(t, 2, idx.Size())
}

func TestBuild_IndexesEveryField(t *testing.T) {
	pubs := []types.Publication{{
		Title:    "Title words",
		Abstract: "abstract words",
		Keywords: []string{"Keyword Phrase"},
		Authors:  []string{"Jane Smith"},
		Topics:   []string{"muscle atrophy"},
	}}
	idx := Build(pubs)

	for _, term := range []string{"title", "words", "abstract", "keyword", "phrase", "jane", "smith", "muscle", "atrophy"} {
		assert.True(t, idx.Contains(term, 0), term)
	}
	assert.False(t, idx.Contains("missing", 0))
}

func TestBuild_TitleTokensAlwaysIndexed(t *testing.T) {
	pubs := []types.Publication{
		{Title: "Effects of spaceflight on murine skeletal tissue"},
		{Title: "Arabidopsis root growth: a microgravity experiment"},
		{Title: "Cardiovascular deconditioning after 6-month ISS missions"},
	}
	idx := Build(pubs)

	for pos, p := range pubs {
		for _, tok := range Tokenize(p.Title) {
			assert.Contains(t, idx.Lookup(tok), pos, "token %q of publication %d", tok, pos)
		}
	}
}

func TestBuild_PostingsAscending(t *testing.T) {
	pubs := make([]types.Publication, 20)
	for i := range pubs {
		pubs[i].Title = "shared term"
	}
	postings := Build(pubs).Lookup("shared")
	for i := 1; i < len(postings); i++ {
		assert.Less(t, postings[i-1], postings[i])
	}
}

func TestNilIndex(t *testing.T) {
	var idx *Index
	assert.Nil(t, idx.Lookup("bone"))
	assert.Zero(t, idx.Size())
	assert.Zero(t, idx.Terms())
}
