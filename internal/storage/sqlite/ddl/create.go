package ddl

import (
	"fmt"
	"strings"

	gddl "churnetl/internal/ddl"
)

// Dialect renders CREATE TABLE IF NOT EXISTS statements with double-quoted
// identifiers. Identity keys are rendered inline as
// INTEGER PRIMARY KEY AUTOINCREMENT, the only form SQLite accepts.
var Dialect = gddl.Dialect{
	Name:             "sqlite ddl",
	Quote:            QuoteIdent,
	MapType:          MapType,
	Identity:         "INTEGER PRIMARY KEY AUTOINCREMENT",
	InlineIdentityPK: true,
	Indent:           "  ",
	Wrap: func(fqn, body string) string {
		return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n);", fqn, body)
	},
}

// BuildCreateTableSQL returns a SQLite CREATE TABLE statement for t.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) { return Dialect.Build(t) }

// QuoteIdent double-quotes an identifier, doubling embedded quotes.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
