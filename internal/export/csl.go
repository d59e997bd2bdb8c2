// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"io"
	"strings"
	"time"
	"unicode"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubscope/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names and structure follow the CSL-JSON/CSL-YAML schema
// so that output is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Volume         string    `yaml:"volume,omitempty"`
	Issue          string    `yaml:"issue,omitempty"`
	Page           string    `yaml:"page,omitempty"`
	Abstract       string    `yaml:"abstract,omitempty"`
	Keyword        string    `yaml:"keyword,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	DOI            string    `yaml:"DOI,omitempty"`
	PMID           string    `yaml:"PMID,omitempty"`
	PMCID          string    `yaml:"PMCID,omitempty"`
	URL            string    `yaml:"URL,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// WriteCSL writes pubs as a CSL-YAML list to w.
func WriteCSL(pubs []types.Publication, w io.Writer) error {
	items := make([]CSLItem, len(pubs))
	for i, p := range pubs {
		items[i] = toCSLItem(p)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// toCSLItem converts a Publication to a CSLItem.
func toCSLItem(p types.Publication) CSLItem {
	item := CSLItem{
		ID:             p.ID,
		Type:           "article-journal",
		Title:          p.Title,
		ContainerTitle: p.Journal,
		Volume:         p.Volume,
		Issue:          p.Issue,
		Page:           p.Pages,
		Abstract:       p.Abstract,
		Keyword:        strings.Join(p.Keywords, ", "),
		DOI:            strings.TrimPrefix(strings.TrimPrefix(p.DOI, "https://doi.org/"), "http://doi.org/"),
		PMID:           p.PMID,
		PMCID:          p.PMCID,
		URL:            p.URL,
	}

	for _, a := range p.Authors {
		if name := parseAuthorName(a); name != (CSLName{}) {
			item.Author = append(item.Author, name)
		}
	}

	if parts := dateParts(p); len(parts) > 0 {
		item.Issued = &CSLDate{DateParts: [][]int{parts}}
	}
	return item
}

var dateLayouts = []struct {
	layout string
	parts  int
}{
	{"2006-01-02", 3},
	{"2006 Jan 2", 3},
	{"2006 Jan", 2},
	{"2006-01", 2},
}

// dateParts returns [year, month, day] from the publication date when it
// parses, else [year] when the year is known.
func dateParts(p types.Publication) []int {
	date := strings.TrimSpace(p.PublicationDate)
	for _, l := range dateLayouts {
		t, err := time.Parse(l.layout, date)
		if err != nil {
			continue
		}
		parts := []int{t.Year(), int(t.Month()), t.Day()}
		return parts[:l.parts]
	}
	if p.Year > 0 {
		return []int{p.Year}
	}
	return nil
}

// parseAuthorName splits a full name string into CSL family/given parts.
// Catalog names ("Smith JA") put the family name first and end in
// initials; other names split on the last space. Single-token names use
// the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	if last := name[idx+1:]; initials(last) {
		return CSLName{Family: name[:idx], Given: last}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}

func initials(s string) bool {
	if len(s) == 0 || len(s) > 3 {
		return false
	}
	for _, r := range s {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
