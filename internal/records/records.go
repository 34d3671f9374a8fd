// Package records holds the in-memory tabular model shared by the pipeline
// stages. A Record is one row keyed by column name; a Table carries the
// column order alongside its rows so that CSV output and column selection
// stay deterministic.
package records

import (
	"errors"
	"fmt"
	"math"
)

// ErrColumnNotFound is returned when an operation references a column the
// table does not have.
var ErrColumnNotFound = errors.New("column not found")

// Record is a single row. A nil value means "missing".
type Record map[string]any

// Table is an ordered set of columns plus the rows that carry them.
type Table struct {
	Columns []string
	Rows    []Record
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Has reports whether col is one of the table's columns.
func (t *Table) Has(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Require returns an error wrapping ErrColumnNotFound for the first column in
// cols that the table does not have.
func (t *Table) Require(cols ...string) error {
	for _, c := range cols {
		if !t.Has(c) {
			return fmt.Errorf("%w: %q", ErrColumnNotFound, c)
		}
	}
	return nil
}

// Select returns a new table holding only cols, in that order. Row maps are
// copied so the result can be mutated independently.
func (t *Table) Select(cols []string) (*Table, error) {
	if err := t.Require(cols...); err != nil {
		return nil, err
	}
	out := &Table{
		Columns: append([]string(nil), cols...),
		Rows:    make([]Record, len(t.Rows)),
	}
	for i, r := range t.Rows {
		nr := make(Record, len(cols))
		for _, c := range cols {
			nr[c] = r[c]
		}
		out.Rows[i] = nr
	}
	return out, nil
}

// Drop removes cols from the table. Every column must exist.
func (t *Table) Drop(cols ...string) error {
	if err := t.Require(cols...); err != nil {
		return err
	}
	drop := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		drop[c] = struct{}{}
	}
	kept := t.Columns[:0]
	for _, c := range t.Columns {
		if _, ok := drop[c]; !ok {
			kept = append(kept, c)
		}
	}
	t.Columns = kept
	for _, r := range t.Rows {
		for c := range drop {
			delete(r, c)
		}
	}
	return nil
}

// Rename applies fn to every column name, rewriting row keys to match.
func (t *Table) Rename(fn func(string) string) {
	mapping := make(map[string]string, len(t.Columns))
	for i, c := range t.Columns {
		n := fn(c)
		mapping[c] = n
		t.Columns[i] = n
	}
	for i, r := range t.Rows {
		nr := make(Record, len(r))
		for k, v := range r {
			if to, ok := mapping[k]; ok {
				nr[to] = v
				continue
			}
			nr[k] = v
		}
		t.Rows[i] = nr
	}
}

// AddColumn appends name to the column list if it is not already present.
func (t *Table) AddColumn(name string) {
	if !t.Has(name) {
		t.Columns = append(t.Columns, name)
	}
}

// Values returns the value of col for every row.
func (t *Table) Values(col string) ([]any, error) {
	if err := t.Require(col); err != nil {
		return nil, err
	}
	out := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[col]
	}
	return out, nil
}

// ToRows flattens recs into positional rows aligned with columns.
func ToRows(columns []string, recs []Record) [][]any {
	out := make([][]any, len(recs))
	for i, r := range recs {
		row := make([]any, len(columns))
		for j, c := range columns {
			row[j] = r[c]
		}
		out[i] = row
	}
	return out
}

// FromRows builds key/value records from positional rows aligned with columns.
func FromRows(columns []string, rows [][]any) []Record {
	out := make([]Record, len(rows))
	for i, row := range rows {
		r := make(Record, len(columns))
		for j, c := range columns {
			if j < len(row) {
				r[c] = row[j]
			} else {
				r[c] = nil
			}
		}
		out[i] = r
	}
	return out
}

// IsMissing reports whether v counts as a missing value: nil or a float NaN.
func IsMissing(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(t)
	case float32:
		return math.IsNaN(float64(t))
	}
	return false
}
