package builtin

import (
	"sort"

	"churnetl/internal/records"
)

// FillMedian replaces missing numeric values with the median of the
// non-missing values of the same column across the whole input. Columns are
// expected to hold float64 values (run Coerce first). Medians records the
// value used per column; a column with no numeric values is left unchanged
// and has no entry.
type FillMedian struct {
	Columns []string
	Medians map[string]float64
}

func (f *FillMedian) Apply(in []records.Record) []records.Record {
	f.Medians = make(map[string]float64, len(f.Columns))
	for _, col := range f.Columns {
		vals := make([]float64, 0, len(in))
		for _, r := range in {
			if x, ok := r[col].(float64); ok && !records.IsMissing(x) {
				vals = append(vals, x)
			}
		}
		m, ok := Median(vals)
		if !ok {
			continue
		}
		f.Medians[col] = m
		for _, r := range in {
			if records.IsMissing(r[col]) {
				r[col] = m
			}
		}
	}
	return in
}

// Median returns the median of vals, averaging the two middle values for an
// even count. vals is sorted in place.
func Median(vals []float64) (float64, bool) {
	n := len(vals)
	if n == 0 {
		return 0, false
	}
	sort.Float64s(vals)
	if n%2 == 1 {
		return vals[n/2], true
	}
	return (vals[n/2-1] + vals[n/2]) / 2, true
}

// FillConstant replaces missing values in Columns with Value.
type FillConstant struct {
	Columns []string
	Value   any
}

func (f FillConstant) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for _, col := range f.Columns {
			if records.IsMissing(r[col]) {
				r[col] = f.Value
			}
		}
	}
	return in
}
