// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

// XLSXFile reads the first (or named) sheet of a spreadsheet. The first row
// is the header.
type XLSXFile struct {
	Path  string
	Sheet string
}

// Name returns the source identifier.
func (s *XLSXFile) Name() string { return "xlsx:" + s.Path }

// Load reads all rows of the sheet.
func (s *XLSXFile) Load(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening spreadsheet %s: %w", s.Path, err)
	}
	defer f.Close()

	sheet := s.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("spreadsheet %s has no sheets", s.Path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q of %s: %w", sheet, s.Path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rowsToRecords(rows[0], rows[1:]), nil
}

// CSVFile reads a comma-separated export with a header row.
type CSVFile struct {
	Path string
}

// Name returns the source identifier.
func (s *CSVFile) Name() string { return "csv:" + s.Path }

// Load reads all rows of the file. Rows may have fewer fields than the
// header.
func (s *CSVFile) Load(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening csv %s: %w", s.Path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv %s: %w", s.Path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rowsToRecords(rows[0], rows[1:]), nil
}

// JSONFile reads a JSON document holding either a bare array of records or
// an object with a "publications" array.
type JSONFile struct {
	Path string
}

// Name returns the source identifier.
func (s *JSONFile) Name() string { return "json:" + s.Path }

// Load decodes the file.
func (s *JSONFile) Load(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening json %s: %w", s.Path, err)
	}
	defer f.Close()

	recs, err := DecodeJSON(f)
	if err != nil {
		return nil, fmt.Errorf("parsing json %s: %w", s.Path, err)
	}
	return recs, nil
}
