package ddl

import (
	"fmt"
	"strings"

	gddl "churnetl/internal/ddl"
)

// Dialect renders bracket-quoted T-SQL. CREATE TABLE is wrapped in an
// IF OBJECT_ID(...) IS NULL guard since T-SQL has no CREATE TABLE IF NOT
// EXISTS; identity keys use BIGINT IDENTITY(1,1).
var Dialect = gddl.Dialect{
	Name:     "mssql ddl",
	Quote:    QuoteIdent,
	MapType:  MapType,
	Identity: "BIGINT IDENTITY(1,1)",
	Indent:   "    ",
	Wrap: func(fqn, body string) string {
		return fmt.Sprintf(
			"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n%s\n  );\nEND;",
			strings.ReplaceAll(fqn, "'", "''"), fqn, body,
		)
	},
}

// BuildCreateTableSQL returns a T-SQL script that creates t if it does not
// already exist.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) { return Dialect.Build(t) }

// QuoteIdent quotes a single identifier segment using bracket syntax,
// escaping closing brackets:
//
//	name      -> [name]
//	weird]id  -> [weird]]id]
func QuoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}
