// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/pubscope/internal/httputil"
)

// ListDelimiter joins JSON arrays of scalars into one record value. It
// matches the curated schema's list delimiter.
const ListDelimiter = "; "

// HTTPJSON fetches records from an endpoint returning the same JSON layout
// as JSONFile.
type HTTPJSON struct {
	URL        string
	Client     *http.Client
	UserAgent  string
	MaxRetries int
	Logger     *zap.Logger
}

// Name returns the source identifier.
func (s *HTTPJSON) Name() string { return "http:" + s.URL }

// Load issues a GET and decodes the body. Non-200 responses are errors.
func (s *HTTPJSON) Load(ctx context.Context) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.Do(ctx, client, req, httputil.Policy{MaxRetries: s.MaxRetries, Logger: s.Logger})
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", s.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: HTTP %d", s.URL, resp.StatusCode)
	}

	recs, err := DecodeJSON(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing response from %s: %w", s.URL, err)
	}
	return recs, nil
}

// DecodeJSON reads a bare array of objects or {"publications": [...]}.
// Scalars become strings and arrays of scalars are joined with
// ListDelimiter. A "sections" array of {name, content} objects is expanded
// into Section_N_Name/Section_N_Content columns, the layout of the
// spreadsheet export. Other nested objects are dropped. An "error" field on
// the wrapper object is reported as a failure.
func DecodeJSON(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)

	var rows []map[string]json.RawMessage
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, err
		}
	} else {
		var wrapper struct {
			Publications []map[string]json.RawMessage `json:"publications"`
			Error        string                       `json:"error"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, err
		}
		if wrapper.Error != "" {
			return nil, fmt.Errorf("source reported: %s", wrapper.Error)
		}
		rows = wrapper.Publications
	}

	recs := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec := make(Record, len(row))
		for k, raw := range row {
			if strings.EqualFold(k, "sections") && expandSections(raw, rec) {
				continue
			}
			if v, ok := flatten(raw); ok {
				rec[k] = v
			}
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// jsonSection is one element of a scraped "sections" array.
type jsonSection struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// expandSections writes the numbered section columns for raw into rec. It
// reports false when raw is not an array of section objects.
func expandSections(raw json.RawMessage, rec Record) bool {
	var secs []jsonSection
	if err := json.Unmarshal(raw, &secs); err != nil {
		return false
	}
	n := 0
	for _, sec := range secs {
		if strings.TrimSpace(sec.Name) == "" {
			continue
		}
		n++
		rec[fmt.Sprintf("Section_%d_Name", n)] = sec.Name
		rec[fmt.Sprintf("Section_%d_Content", n)] = sec.Content
	}
	return true
}

// flatten renders a JSON value as a record string.
func flatten(raw json.RawMessage) (string, bool) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	switch x := v.(type) {
	case nil:
		return "", true
	case []any:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := scalar(item)
			if !ok {
				return "", false
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ListDelimiter), true
	default:
		return scalar(x)
	}
}

func scalar(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case bool:
		if x {
			return "Yes", true
		}
		return "No", true
	default:
		return "", false
	}
}
