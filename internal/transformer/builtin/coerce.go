package builtin

import (
	"math"
	"strconv"
	"strings"

	"churnetl/internal/records"
)

// Coerce converts field values to numbers. Values that cannot be converted
// become nil (missing); fields absent from a record are skipped.
type Coerce struct {
	Types map[string]string // field -> "float" or "int"
}

func (c Coerce) Apply(in []records.Record) []records.Record {
	if len(c.Types) == 0 {
		return in
	}
	for _, r := range in {
		for field, typ := range c.Types {
			v, ok := r[field]
			if !ok {
				continue
			}
			switch typ {
			case "float":
				r[field] = toFloat(v)
			case "int":
				r[field] = toInt(v)
			}
		}
	}
	return in
}

// toFloat converts v to a float64, returning nil for missing or unparseable
// values. NaN and ±Inf pass through unchanged.
func toFloat(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case int32:
		return float64(t)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return f
	}
	return nil
}

// toInt converts v to int64. Integral floats convert exactly; non-integral
// floats round half away from zero; non-finite values become nil.
func toInt(v any) any {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case int32:
		return int64(t)
	}
	f, ok := toFloat(v).(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return int64(math.Round(f))
}
