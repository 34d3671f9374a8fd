// Package builtin contains reusable record transformers.
//
// DeDup counts distinct records. Two records are duplicates when every field
// outside Exclude holds an equal value. Field values are hashed with
// XXH3-128, so records compare by value without building large composite
// strings. Numerically equal int64 and float64 values hash alike, which keeps
// rows read back from a database comparable with rows parsed from CSV.
package builtin

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/zeebo/xxh3"

	"churnetl/internal/records"
)

// DeDup identifies records by all of their fields except Exclude.
type DeDup struct {
	// Exclude lists fields ignored when comparing, e.g. a surrogate id.
	Exclude []string
}

// Count returns the number of distinct records in in.
func (d DeDup) Count(in []records.Record) int {
	seen := make(map[xxh3.Uint128]struct{}, len(in))
	for _, r := range in {
		seen[d.keyOf(r)] = struct{}{}
	}
	return len(seen)
}

func (d DeDup) keyOf(r records.Record) xxh3.Uint128 {
	fields := make([]string, 0, len(r))
	for k := range r {
		if !contains(d.Exclude, k) {
			fields = append(fields, k)
		}
	}
	sort.Strings(fields)

	buf := make([]byte, 0, 256)
	for _, f := range fields {
		buf = append(buf, f...)
		buf = append(buf, '=')
		buf = appendValue(buf, r[f])
		buf = append(buf, '\x1f')
	}
	return xxh3.Hash128(buf)
}

// appendValue renders v so that numerically equal values of different Go
// types (int64 vs float64) produce the same bytes.
func appendValue(b []byte, v any) []byte {
	switch t := v.(type) {
	case nil:
		return append(b, '\x00')
	case string:
		return append(b, t...)
	case float64:
		if math.IsNaN(t) {
			return append(b, '\x00')
		}
		return strconv.AppendFloat(b, t, 'g', -1, 64)
	case float32:
		return appendValue(b, float64(t))
	case int64:
		return strconv.AppendFloat(b, float64(t), 'g', -1, 64)
	case int:
		return strconv.AppendFloat(b, float64(t), 'g', -1, 64)
	case int32:
		return strconv.AppendFloat(b, float64(t), 'g', -1, 64)
	case bool:
		return strconv.AppendBool(b, t)
	case fmt.Stringer:
		return append(b, t.String()...)
	default:
		return fmt.Append(b, t)
	}
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
