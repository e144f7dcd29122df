// Package ingest turns spreadsheet exports into validated records.
//
// Source files are CSV with a header row. Values are coerced the way the
// spreadsheet front end wrote them: labels may be Japanese or English,
// blank cells may arrive as "nan", and dates and turns come in a few
// loosely typed shapes.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrNoHeader is returned when the source has no header row.
var ErrNoHeader = errors.New("source has no header row")

// table is a header plus its data rows, cells already trimmed.
type table struct {
	header []string
	rows   [][]string
	index  []int // 1-based data row number of each kept row
}

// readTable reads a whole CSV document. A UTF-8 or UTF-16 byte order mark is
// honored and stripped; without one the input is read as UTF-8.
func readTable(r io.Reader) (*table, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	reader := csv.NewReader(decoded)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	t := &table{header: make([]string, len(header))}
	for i, h := range header {
		t.header[i] = strings.TrimSpace(h)
	}

	dataRow := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		dataRow++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV data row %d: %w", dataRow, err)
		}
		for i := range row {
			row[i] = cleanCell(row[i])
		}
		if isBlankRow(row) {
			continue
		}
		t.rows = append(t.rows, row)
		t.index = append(t.index, dataRow)
	}
	return t, nil
}

// columns maps canonical field names to column indexes. aliases lists the
// accepted header spellings per field in canonical order. When no header
// matches any alias and the widths agree, columns are taken by position.
func (t *table) columns(aliases [][]string) map[int]int {
	byField := make(map[int]int, len(aliases))
	for col, h := range t.header {
		name := strings.ToLower(h)
		for field, names := range aliases {
			if _, taken := byField[field]; taken {
				continue
			}
			for _, alias := range names {
				if name == strings.ToLower(alias) {
					byField[field] = col
					break
				}
			}
		}
	}

	if len(byField) == 0 && len(t.header) == len(aliases) {
		for field := range aliases {
			byField[field] = field
		}
	}
	return byField
}

// cell returns the value of field in row, or "" when the column is missing.
func cell(row []string, cols map[int]int, field int) string {
	col, ok := cols[field]
	if !ok || col >= len(row) {
		return ""
	}
	return row[col]
}

// cleanCell trims a value and maps the "nan" placeholder to blank.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "nan") {
		return ""
	}
	return s
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
