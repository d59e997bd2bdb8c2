// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source reads raw publication rows from spreadsheets, CSV exports,
// JSON files, and HTTP endpoints. Every source yields flat string-keyed
// records; interpreting them is the normalizer's job.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/pubscope/pkg/types"
)

// ErrUnsupportedFormat is returned when no reader handles a source.
var ErrUnsupportedFormat = errors.New("unsupported source format")

// Record is one raw row keyed by column header.
type Record map[string]string

// Get returns the trimmed value of the first key present with a non-blank
// value, or "".
func (r Record) Get(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(r[k]); v != "" {
			return v
		}
	}
	return ""
}

// Has reports whether any of keys is present, blank or not.
func (r Record) Has(keys ...string) bool {
	for _, k := range keys {
		if _, ok := r[k]; ok {
			return true
		}
	}
	return false
}

// Source yields raw records. Load is the only blocking operation in the
// load cycle and honors ctx.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]Record, error)
}

// Open selects a Source for cfg. A URL is used when Path is empty. With the
// auto format the file extension decides.
func Open(cfg types.CorpusConfig, logger *zap.Logger) (Source, error) {
	if cfg.Path == "" {
		if cfg.URL == "" {
			return nil, fmt.Errorf("no corpus path or url configured")
		}
		return &HTTPJSON{
			URL:       cfg.URL,
			Client:    &http.Client{Timeout: cfg.Timeout},
			UserAgent: cfg.UserAgent,
			Logger:    logger,
		}, nil
	}

	format := cfg.Format
	if format == "" || format == types.FormatAuto {
		format = FormatOf(cfg.Path)
	}
	switch format {
	case types.FormatXLSX:
		return &XLSXFile{Path: cfg.Path, Sheet: cfg.Sheet}, nil
	case types.FormatCSV:
		return &CSVFile{Path: cfg.Path}, nil
	case types.FormatJSON:
		return &JSONFile{Path: cfg.Path}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, cfg.Path)
	}
}

// FormatOf maps a file extension to a format, or "" when unknown.
func FormatOf(path string) types.SourceFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return types.FormatXLSX
	case ".csv":
		return types.FormatCSV
	case ".json":
		return types.FormatJSON
	default:
		return ""
	}
}

// rowsToRecords zips a header row with data rows. Short rows leave missing
// columns blank; rows with every cell blank are skipped.
func rowsToRecords(header []string, rows [][]string) []Record {
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec := make(Record, len(header))
		blank := true
		for i, h := range header {
			if h == "" {
				continue
			}
			v := ""
			if i < len(row) {
				v = row[i]
			}
			if strings.TrimSpace(v) != "" {
				blank = false
			}
			rec[h] = v
		}
		if !blank {
			records = append(records, rec)
		}
	}
	return records
}
