// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the pubscope dashboard:
// the canonical Publication record, search filters, and the analytics and
// AI summary shapes returned to callers.
package types

// Section is one named block of full text scraped for a publication.
type Section struct {
	// Name is the section heading (e.g. "Introduction"). Never empty.
	Name string `json:"name" yaml:"name"`

	// Content is the section body as plain text.
	Content string `json:"content" yaml:"content"`
}

// Publication is the canonical, normalized publication record. Both source
// schemas (scraped and curated) are mapped onto this one shape, and nothing
// downstream of the normalizer sees schema-specific fields.
//
// A Publication is treated as immutable once normalized.
type Publication struct {
	// ID is unique across the loaded corpus. It is the catalog identifier
	// (PMCID) or the curated id when present, else a positional "pub-N".
	ID string `json:"id" yaml:"id"`

	// Title is the publication title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Year is the publication year. Best effort: derived from a date string
	// when only a date is present, and defaulted when unparseable.
	Year int `json:"year" yaml:"year"`

	// YearDefaulted is set when the source carried no usable year and Year
	// holds the load-time default. Year orderings treat such records as
	// year 0.
	YearDefaulted bool `json:"year_defaulted,omitempty" yaml:"year_defaulted,omitempty"`

	// Abstract is the publication abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Journal is the journal or venue name.
	Journal string `json:"journal" yaml:"journal"`

	// DOI is the digital object identifier as found in the source.
	DOI string `json:"doi" yaml:"doi"`

	// PMCID is the persistent catalog identifier, if any.
	PMCID string `json:"pmcid,omitempty" yaml:"pmcid,omitempty"`

	// PMID is the secondary catalog identifier, if any.
	PMID string `json:"pmid,omitempty" yaml:"pmid,omitempty"`

	// URL links to the publication landing page.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// PublicationDate is the raw date string from the source.
	PublicationDate string `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`

	Volume string `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue  string `json:"issue,omitempty" yaml:"issue,omitempty"`
	Pages  string `json:"pages,omitempty" yaml:"pages,omitempty"`

	// Keywords lists explicit keywords from the curated schema.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// Topics is a bounded, deduplicated set of lexical topics in stable
	// first-seen order.
	Topics []string `json:"topics" yaml:"topics"`

	Organisms      []string `json:"organisms,omitempty" yaml:"organisms,omitempty"`
	ExperimentType []string `json:"experiment_type,omitempty" yaml:"experiment_type,omitempty"`

	Mission  string `json:"mission,omitempty" yaml:"mission,omitempty"`
	Platform string `json:"platform,omitempty" yaml:"platform,omitempty"`

	// Sections holds scraped full-text sections. Only the scraped schema
	// carries them.
	Sections []Section `json:"sections,omitempty" yaml:"sections,omitempty"`

	FullTextAvailable bool `json:"full_text_available" yaml:"full_text_available"`
	ScrapingSuccess   bool `json:"scraping_success" yaml:"scraping_success"`
}

// PublicationSummary is the short display form of a Publication.
type PublicationSummary struct {
	ID                string   `json:"id" yaml:"id"`
	Title             string   `json:"title" yaml:"title"`
	Authors           []string `json:"authors" yaml:"authors"`
	Year              int      `json:"year" yaml:"year"`
	Abstract          string   `json:"abstract" yaml:"abstract"`
	Topics            []string `json:"topics" yaml:"topics"`
	FullTextAvailable bool     `json:"full_text_available" yaml:"full_text_available"`
}
