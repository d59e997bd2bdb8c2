// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package topics derives lexical topics for publications from free text and
// explicit keyword fields. Extraction is a pure function of its input: a
// fixed domain vocabulary matched by substring, plus a stop-word-filtered
// word tokenizer for records that match nothing in the vocabulary.
package topics

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"
)

// KeywordDelimiter separates entries in explicit keyword fields.
const KeywordDelimiter = ";"

// DefaultVocabulary is the built-in list of space biology research topics.
var DefaultVocabulary = []string{
	"microgravity",
	"radiation",
	"space flight",
	"bone loss",
	"muscle atrophy",
	"cardiovascular",
	"immune system",
	"plants",
	"microbiome",
	"neuroscience",
	"genetics",
	"cell biology",
	"physiology",
	"behavior",
	"development",
}

// DefaultStopwords are dropped by the lexical tokenizer.
var DefaultStopwords = []string{
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for", "with", "from", "by",
	"this", "that", "these", "those", "were", "was", "are", "been", "have", "has", "which",
	"their", "than", "into", "also", "such", "using",
}

var nonWord = regexp.MustCompile(`\W+`)

// Extractor matches text against a vocabulary. The zero value is not usable;
// construct with New.
type Extractor struct {
	vocabulary []string
	lowered    []string
	stopwords  map[string]struct{}
}

// New returns an Extractor for vocabulary and stopwords. Nil arguments select
// the defaults.
func New(vocabulary, stopwords []string) *Extractor {
	if vocabulary == nil {
		vocabulary = DefaultVocabulary
	}
	if stopwords == nil {
		stopwords = DefaultStopwords
	}
	e := &Extractor{
		vocabulary: make([]string, 0, len(vocabulary)),
		stopwords:  make(map[string]struct{}, len(stopwords)),
	}
	for _, term := range vocabulary {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		e.vocabulary = append(e.vocabulary, term)
		e.lowered = append(e.lowered, strings.ToLower(term))
	}
	for _, w := range stopwords {
		e.stopwords[strings.ToLower(w)] = struct{}{}
	}
	return e
}

// Vocabulary returns a copy of the extractor's vocabulary.
func (e *Extractor) Vocabulary() []string {
	return append([]string(nil), e.vocabulary...)
}

// Extract returns the union of the explicit keywords (split on ";" and
// trimmed) and every vocabulary term occurring in text as a case-insensitive
// substring. Empties are dropped and first-seen order is preserved; entries
// are deduplicated case-sensitively. No size limit is applied.
func (e *Extractor) Extract(text, keywords string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(t string) {
		if t == "" {
			return
		}
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	for _, k := range strings.Split(keywords, KeywordDelimiter) {
		add(strings.TrimSpace(k))
	}

	lower := strings.ToLower(text)
	for i, term := range e.lowered {
		if strings.Contains(lower, term) {
			add(e.vocabulary[i])
		}
	}
	return out
}

// Lexical returns up to n distinct lowercase words from text that are longer
// than three characters, are not stopwords, and are not numbers. It is used
// when a record matches no vocabulary term and carries no keywords.
func (e *Extractor) Lexical(text string, n int) []string {
	if n <= 0 {
		return nil
	}
	var out []string
	seen := make(map[string]struct{})
	for _, w := range nonWord.Split(strings.ToLower(text), -1) {
		if len(w) <= 3 {
			continue
		}
		if _, stop := e.stopwords[w]; stop {
			continue
		}
		if _, err := strconv.ParseFloat(w, 64); err == nil {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
		if len(out) == n {
			break
		}
	}
	return out
}

// VocabularyFile is the YAML layout of a custom vocabulary:
//
//	terms: [microgravity, radiation]
//	stopwords: [the, and]
type VocabularyFile struct {
	Terms     []string `yaml:"terms"`
	Stopwords []string `yaml:"stopwords"`
}

// LoadVocabulary reads a VocabularyFile from path.
func LoadVocabulary(path string) (*VocabularyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary %s: %w", path, err)
	}
	var vf VocabularyFile
	if err := yaml.Unmarshal(data, &vf); err != nil {
		return nil, fmt.Errorf("parsing vocabulary %s: %w", path, err)
	}
	if len(vf.Terms) == 0 {
		return nil, fmt.Errorf("vocabulary %s has no terms", path)
	}
	return &vf, nil
}

// NewFromFile builds an Extractor from a vocabulary file. A file without
// stopwords keeps the default stopword list.
func NewFromFile(path string) (*Extractor, error) {
	vf, err := LoadVocabulary(path)
	if err != nil {
		return nil, err
	}
	var stops []string
	if len(vf.Stopwords) > 0 {
		stops = vf.Stopwords
	}
	return New(vf.Terms, stops), nil
}
