package storage

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"churnetl/internal/records"
)

// ScanRows drains rows into a Table, normalizing driver values with
// NormalizeValue. Byte slices are decoded by the column's database type so
// that numeric columns returned as text (e.g. MySQL DECIMAL) become numbers.
func ScanRows(rows *sql.Rows) (*records.Table, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("column types: %w", err)
	}

	t := &records.Table{Columns: cols}
	dest := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range dest {
		ptrs[i] = &dest[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		rec := make(records.Record, len(cols))
		for i, c := range cols {
			v := dest[i]
			if b, ok := v.([]byte); ok {
				v = decodeBytes(b, types[i].DatabaseTypeName())
			}
			rec[c] = NormalizeValue(v)
		}
		t.Rows = append(t.Rows, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return t, nil
}

// NormalizeValue maps driver-specific scalar types onto the small set used
// by records: nil, string, int64, float64, bool, time.Time.
func NormalizeValue(v any) any {
	switch t := v.(type) {
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case float32:
		return float64(t)
	case []byte:
		return string(t)
	case time.Time:
		return t
	default:
		return v
	}
}

func decodeBytes(b []byte, dbType string) any {
	s := string(b)
	switch strings.ToUpper(dbType) {
	case "INT", "INTEGER", "BIGINT", "SMALLINT", "TINYINT", "MEDIUMINT":
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case "REAL", "FLOAT", "DOUBLE", "DECIMAL", "NUMERIC":
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}
