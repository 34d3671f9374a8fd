// Package csv reads and writes the pipeline's CSV files as records.Table
// values. Reading is strict: malformed rows fail the whole read with the
// offending line number. Writing is deterministic so that identical tables
// produce byte-identical files.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"churnetl/internal/records"
)

// naTokens are the cell values read as missing, matching the default NA set
// of the pandas CSV reader the raw export is usually inspected with.
var naTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// Parser parses comma-separated input with a header row. It is stateless
// and safe to reuse across inputs.
type Parser struct{}

// NewParser constructs a Parser.
func NewParser() *Parser { return &Parser{} }

// ReadFile opens path and parses it. A missing file yields an error that
// satisfies errors.Is(err, os.ErrNotExist).
func ReadFile(path string) (*records.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	t, err := NewParser().Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Parse reads the header row and every data row from r. A leading byte order
// mark (UTF-8 or UTF-16) is honored and removed. Empty cells and NA tokens
// such as "NA", "N/A" or "null" become nil.
func (p *Parser) Parse(r io.Reader) (*records.Table, error) {
	dec := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(dec)
	cr.ReuseRecord = true

	h, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read csv header: %w", io.ErrUnexpectedEOF)
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	headers, err := parseHeaders(h)
	if err != nil {
		return nil, err
	}

	t := &records.Table{Columns: headers}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rec := make(records.Record, len(headers))
		for i, val := range row {
			rec[headers[i]] = naToNil(val)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// parseHeaders copies h (the reader reuses its slice) and trims each name.
// Duplicate or empty names are rejected because rows are keyed by name.
func parseHeaders(h []string) ([]string, error) {
	res := make([]string, len(h))
	seen := make(map[string]struct{}, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if c == "" {
			return nil, fmt.Errorf("csv header: empty column name at position %d", i+1)
		}
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("csv header: duplicate column %q", c)
		}
		seen[c] = struct{}{}
		res[i] = c
	}
	return res, nil
}

// naToNil converts missing-value tokens to nil; all other values are
// returned as-is.
func naToNil(s string) any {
	if _, ok := naTokens[s]; ok {
		return nil
	}
	return s
}
