// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package topics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	e := New(nil, nil)

	tests := []struct {
		name     string
		text     string
		keywords string
		want     []string
	}{
		{
			name:     "keywords first then vocabulary",
			text:     "Effects of Microgravity on bone loss in mice",
			keywords: "mice; spaceflight ",
			want:     []string{"mice", "spaceflight", "microgravity", "bone loss"},
		},
		{
			name: "substring match, not tokenized",
			text: "Radiationally induced damage",
			want: []string{"radiation"},
		},
		{
			name:     "dedupes keyword and vocabulary term",
			text:     "radiation exposure",
			keywords: "radiation;radiation",
			want:     []string{"radiation"},
		},
		{
			name:     "case-sensitive dedupe keeps both spellings",
			text:     "radiation",
			keywords: "Radiation",
			want:     []string{"Radiation", "radiation"},
		},
		{
			name:     "empties dropped",
			text:     "",
			keywords: ";; ;",
			want:     nil,
		},
		{
			name: "vocabulary order, not text order",
			text: "plants grown under radiation",
			want: []string{"radiation", "plants"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Extract(tt.text, tt.keywords))
		})
	}
}

func TestExtract_Deterministic(t *testing.T) {
	e := New(nil, nil)
	text := "Spaceflight alters the microbiome and immune system of astronauts."
	first := e.Extract(text, "astronauts;omics")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, e.Extract(text, "astronauts;omics"))
	}
}

func TestLexical(t *testing.T) {
	e := New(nil, nil)

	got := e.Lexical("The 2019 study of Arabidopsis roots, with roots grown in orbit for 30 days", 5)
	assert.Equal(t, []string{"study", "arabidopsis", "roots", "grown", "orbit"}, got)

	assert.Nil(t, e.Lexical("anything", 0))
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("terms:\n  - hibernation\n  - circadian rhythm\n"), 0o644))

	e, err := NewFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"hibernation", "circadian rhythm"}, e.Vocabulary())
	assert.Equal(t, []string{"circadian rhythm"}, e.Extract("Disrupted Circadian Rhythm in crew", ""))
}

func TestLoadVocabulary_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadVocabulary(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("stopwords: [the]\n"), 0o644))
	_, err = LoadVocabulary(empty)
	assert.ErrorContains(t, err, "no terms")
}
