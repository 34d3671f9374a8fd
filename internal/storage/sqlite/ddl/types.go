// Package ddl renders SQLite DDL for the generic ddl.TableDef model.
package ddl

import "strings"

// MapType maps a logical type into a SQLite column affinity. Booleans are
// stored as 0/1 integers and everything unrecognized as TEXT.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint", "bool", "boolean":
		return "INTEGER"
	case "float", "double", "real":
		return "REAL"
	case "numeric", "decimal":
		return "NUMERIC"
	default:
		return "TEXT"
	}
}
