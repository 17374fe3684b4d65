// Package ingest parses delimited localization source files into typed rows
// and groups them by asset. Input files come from spreadsheet exports with
// inconsistent delimiters and optional BOMs, so parsing is deliberately
// lenient about everything except the three required columns.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Required logical columns. Header matching is case-insensitive and
// whitespace-tolerant, but the canonical spellings are these.
const (
	columnAssetID = "IDS"
	columnEnglish = "EN"
	columnLocID   = "LOCID"
)

// Row is one source record: an asset, its English text, and the
// localization slot the text belongs to.
type Row struct {
	AssetID string
	English string
	LocID   string
}

// Group collects the rows of one asset in source order.
type Group struct {
	AssetID string
	Rows    []Row
}

// FormatError reports a structurally unusable input file. It is the only
// fatal error class in the pipeline; everything downstream degrades instead.
type FormatError struct {
	Missing []string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("input file must have columns %s, %s, %s (missing: %s)",
		columnAssetID, columnEnglish, columnLocID, strings.Join(e.Missing, ", "))
}

// Parse reads delimited rows from r and returns one Row per data line.
// The delimiter is auto-detected among semicolon, comma, and tab. A UTF-8
// BOM on the first line is tolerated. Rows too short to carry all required
// fields are skipped.
func Parse(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	text := strings.TrimPrefix(string(data), "\ufeff")
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("input file is empty")
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = detectDelimiter(text)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse input: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("input file is empty")
	}

	idsIdx, enIdx, locIdx, err := headerIndices(records[0])
	if err != nil {
		return nil, err
	}

	maxIdx := idsIdx
	if enIdx > maxIdx {
		maxIdx = enIdx
	}
	if locIdx > maxIdx {
		maxIdx = locIdx
	}

	var rows []Row
	for _, rec := range records[1:] {
		if len(rec) <= maxIdx {
			continue
		}
		rows = append(rows, Row{
			AssetID: strings.TrimSpace(rec[idsIdx]),
			English: rec[enIdx],
			LocID:   strings.TrimSpace(rec[locIdx]),
		})
	}

	return rows, nil
}

// headerIndices locates the required columns in the header row regardless
// of their order. Column names are compared upper-cased and trimmed.
func headerIndices(header []string) (ids, en, loc int, err error) {
	ids, en, loc = -1, -1, -1
	for i, col := range header {
		switch strings.ToUpper(strings.TrimSpace(col)) {
		case columnAssetID:
			ids = i
		case columnEnglish:
			en = i
		case columnLocID:
			loc = i
		}
	}

	var missing []string
	if ids < 0 {
		missing = append(missing, columnAssetID)
	}
	if en < 0 {
		missing = append(missing, columnEnglish)
	}
	if loc < 0 {
		missing = append(missing, columnLocID)
	}
	if len(missing) > 0 {
		return 0, 0, 0, &FormatError{Missing: missing}
	}
	return ids, en, loc, nil
}

// detectDelimiter picks the candidate delimiter occurring most often in the
// header line. Semicolon wins ties because the canonical export format uses
// it.
func detectDelimiter(text string) rune {
	line := text
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		line = text[:i]
	}

	best := ';'
	bestCount := strings.Count(line, ";")
	for _, cand := range []rune{',', '\t'} {
		if n := strings.Count(line, string(cand)); n > bestCount {
			best = cand
			bestCount = n
		}
	}
	return best
}

// GroupByAsset groups rows by asset ID, preserving the first-seen order of
// assets and the row order within each asset.
func GroupByAsset(rows []Row) []Group {
	var groups []Group
	index := make(map[string]int)

	for _, row := range rows {
		i, ok := index[row.AssetID]
		if !ok {
			i = len(groups)
			index[row.AssetID] = i
			groups = append(groups, Group{AssetID: row.AssetID})
		}
		groups[i].Rows = append(groups[i].Rows, row)
	}
	return groups
}
