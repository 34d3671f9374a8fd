// Package ddl renders Postgres DDL for the generic ddl.TableDef model.
package ddl

import "strings"

// MapType normalizes a logical type into a Postgres SQL type.
//
//	"int"/"integer"               -> INTEGER
//	"bigint"                      -> BIGINT
//	"float"/"double"/"real"       -> DOUBLE PRECISION
//	"numeric"/"decimal"           -> NUMERIC
//	"bool"/"boolean"              -> BOOLEAN
//	"date"                        -> DATE
//	"timestamp"/"timestamptz"     -> TIMESTAMPTZ
//	everything else               -> TEXT
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer":
		return "INTEGER"
	case "bigint":
		return "BIGINT"
	case "float", "double", "real":
		return "DOUBLE PRECISION"
	case "numeric", "decimal":
		return "NUMERIC"
	case "bool", "boolean":
		return "BOOLEAN"
	case "date":
		return "DATE"
	case "timestamp", "timestamptz":
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}
