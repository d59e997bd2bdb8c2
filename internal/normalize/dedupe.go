// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/pubscope/internal/source"
	"github.com/pdiddy/pubscope/pkg/types"
)

// Issue describes one row flagged during normalization.
type Issue struct {
	Position int    `json:"position"`
	ID       string `json:"id"`
	Title    string `json:"title"`
	Key      string `json:"key"`
}

// Report summarizes a normalization run.
type Report struct {
	Input int `json:"input"`
	Kept  int `json:"kept"`

	// Duplicates were dropped; the first row with the same identity was kept.
	Duplicates []Issue `json:"duplicates,omitempty"`

	// NoIdentity rows carried neither a catalog id nor a DOI. They were
	// kept under their fallback id.
	NoIdentity []Issue `json:"no_identity,omitempty"`
}

// IdentityKey returns the deduplication key of p: the catalog id, else the
// normalized DOI, else the id. The boolean is false when p carries neither
// a catalog id nor a DOI.
func IdentityKey(p types.Publication) (string, bool) {
	if p.PMCID != "" {
		return "pmcid:" + p.PMCID, true
	}
	if doi := NormalizeDOI(p.DOI); doi != "" {
		return "doi:" + doi, true
	}
	return "id:" + p.ID, false
}

// NormalizeDOI lowercases a DOI and strips resolver prefixes.
func NormalizeDOI(doi string) string {
	d := strings.ToLower(strings.TrimSpace(doi))
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi:"} {
		d = strings.TrimPrefix(d, prefix)
	}
	return strings.TrimSpace(d)
}

// Normalize converts rows and drops duplicates, keeping the first
// occurrence of each identity key and of each id. Every dropped duplicate
// and every row without an identity is logged and reported.
func (n *Normalizer) Normalize(rows []source.Record) ([]types.Publication, Report) {
	report := Report{Input: len(rows)}
	pubs := make([]types.Publication, 0, len(rows))
	seenKeys := make(map[string]struct{}, len(rows))
	seenIDs := make(map[string]struct{}, len(rows))

	for pos, rec := range rows {
		p := n.Record(rec, pos)
		key, identified := IdentityKey(p)
		issue := Issue{Position: pos, ID: p.ID, Title: p.Title, Key: key}

		_, dupKey := seenKeys[key]
		_, dupID := seenIDs[p.ID]
		if dupKey || dupID {
			report.Duplicates = append(report.Duplicates, issue)
			n.logger.Warn("dropping duplicate publication",
				zap.Int("position", pos),
				zap.String("id", p.ID),
				zap.String("key", key),
				zap.String("title", p.Title),
			)
			continue
		}
		if !identified {
			report.NoIdentity = append(report.NoIdentity, issue)
			n.logger.Warn("publication has no catalog id or doi",
				zap.Int("position", pos),
				zap.String("id", p.ID),
				zap.String("title", p.Title),
			)
		}

		seenKeys[key] = struct{}{}
		seenIDs[p.ID] = struct{}{}
		pubs = append(pubs, p)
	}

	report.Kept = len(pubs)
	return pubs, report
}
