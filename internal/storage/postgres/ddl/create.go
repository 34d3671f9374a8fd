package ddl

import (
	"fmt"
	"strings"

	gddl "churnetl/internal/ddl"
)

// Dialect renders CREATE TABLE IF NOT EXISTS statements with double-quoted
// identifiers and BIGSERIAL identity keys.
var Dialect = gddl.Dialect{
	Name:     "postgres ddl",
	Quote:    QuoteIdent,
	MapType:  MapType,
	Identity: "BIGSERIAL",
	Indent:   "  ",
	Wrap: func(fqn, body string) string {
		return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n);", fqn, body)
	},
}

// BuildCreateTableSQL returns a Postgres CREATE TABLE IF NOT EXISTS statement
// for t.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) { return Dialect.Build(t) }

// ReloadSchemaSQL asks PostgREST to refresh its schema cache so a newly
// created table is visible to the REST interface.
const ReloadSchemaSQL = "NOTIFY pgrst, 'reload schema';"

// QuoteIdent quotes a single identifier segment:
//
//	QuoteIdent(`churn`)      => `"churn"`
//	QuoteIdent(`weird"name`) => `"weird""name"`
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
