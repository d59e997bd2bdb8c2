// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index builds the in-memory inverted index over a corpus snapshot.
// The index maps a lowercase token to the ascending positions of the
// publications containing it. It is non-scoring: it answers "does
// publication i contain term t" and nothing about term frequency.
package index

import (
	"regexp"
	"strings"

	"github.com/pdiddy/pubscope/pkg/types"
)

// MinTokenLength is the shortest token kept by Tokenize.
const MinTokenLength = 3

var nonWord = regexp.MustCompile(`\W+`)

// Tokenize lowercases text, splits it on runs of non-word characters, and
// drops tokens shorter than MinTokenLength. Index construction and query
// parsing both go through this function; any divergence would make lookups
// miss silently.
func Tokenize(text string) []string {
	var out []string
	for _, tok := range nonWord.Split(strings.ToLower(text), -1) {
		if len(tok) >= MinTokenLength {
			out = append(out, tok)
		}
	}
	return out
}

// Index is an immutable inverted index for one corpus snapshot.
type Index struct {
	postings map[string][]int
	docs     int
}

// Build indexes title, abstract, keywords, authors, and topics of every
// publication. A term occurring many times in one publication contributes a
// single posting for it. Postings are appended in position order, so they
// are ascending without an explicit sort.
func Build(pubs []types.Publication) *Index {
	idx := &Index{
		postings: make(map[string][]int),
		docs:     len(pubs),
	}
	for i := range pubs {
		for _, term := range documentTerms(&pubs[i]) {
			idx.postings[term] = append(idx.postings[term], i)
		}
	}
	return idx
}

// documentTerms returns the distinct tokens of p's indexed fields in
// first-seen order.
func documentTerms(p *types.Publication) []string {
	var terms []string
	seen := make(map[string]struct{})
	add := func(text string) {
		for _, tok := range Tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			terms = append(terms, tok)
		}
	}

	add(p.Title)
	add(p.Abstract)
	for _, k := range p.Keywords {
		add(k)
	}
	for _, a := range p.Authors {
		add(a)
	}
	for _, t := range p.Topics {
		add(t)
	}
	return terms
}

// Lookup returns the postings for term. The term is matched exactly; callers
// pass tokens produced by Tokenize. The returned slice must not be modified.
func (idx *Index) Lookup(term string) []int {
	if idx == nil {
		return nil
	}
	return idx.postings[term]
}

// Contains reports whether the publication at position pos contains term.
func (idx *Index) Contains(term string, pos int) bool {
	for _, p := range idx.Lookup(term) {
		if p == pos {
			return true
		}
		if p > pos {
			return false
		}
	}
	return false
}

// Size returns the number of publications the index was built over.
func (idx *Index) Size() int {
	if idx == nil {
		return 0
	}
	return idx.docs
}

// Terms returns the number of distinct indexed terms.
func (idx *Index) Terms() int {
	if idx == nil {
		return 0
	}
	return len(idx.postings)
}
