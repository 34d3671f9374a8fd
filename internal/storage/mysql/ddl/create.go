// Package ddl renders MySQL DDL for the generic ddl.TableDef model.
package ddl

import (
	"fmt"
	"strings"

	gddl "churnetl/internal/ddl"
)

// Dialect renders backtick-quoted CREATE TABLE IF NOT EXISTS statements.
var Dialect = gddl.Dialect{
	Name:     "mysql ddl",
	Quote:    QuoteIdent,
	MapType:  MapType,
	Identity: "BIGINT AUTO_INCREMENT",
	Indent:   "  ",
	Wrap: func(fqn, body string) string {
		return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n);", fqn, body)
	},
}

// BuildCreateTableSQL returns a MySQL CREATE TABLE statement for t.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) { return Dialect.Build(t) }

// QuoteIdent wraps id in backticks, doubling embedded backticks.
func QuoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}

// MapType maps a logical type into a MySQL column type.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "BIGINT"
	case "float", "double", "real":
		return "DOUBLE"
	case "numeric", "decimal":
		return "DECIMAL(38, 10)"
	case "bool", "boolean":
		return "BOOLEAN"
	case "date":
		return "DATE"
	case "timestamp", "datetime", "timestamptz":
		return "DATETIME(6)"
	default:
		return "TEXT"
	}
}
