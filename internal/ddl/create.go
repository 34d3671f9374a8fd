// Package ddl defines a small, backend-agnostic model for SQL DDL and a
// Dialect type that renders CREATE TABLE statements from that model.
//
// Backend packages (internal/storage/<kind>/ddl) declare a Dialect value with
// their quoting, type mapping and identity syntax and expose its Build method
// as BuildCreateTableSQL.
package ddl

import (
	"fmt"
	"strings"
)

// Dialect captures the differences between SQL backends that matter for a
// CREATE TABLE statement. Nil funcs fall back to the generic behavior.
type Dialect struct {
	// Name prefixes error messages, e.g. "postgres ddl".
	Name string

	// Quote quotes a single identifier segment. Nil emits names as-is.
	Quote func(string) string

	// MapType maps a logical column type to the backend SQL type. Nil keeps
	// SQLType unchanged.
	MapType func(string) string

	// Identity renders the type and modifiers of an identity column, e.g.
	// "BIGSERIAL" or "BIGINT IDENTITY(1,1)".
	Identity string

	// InlineIdentityPK renders an identity primary key as just Identity,
	// which must then carry its own PRIMARY KEY clause, and leaves it out of
	// the table-level PRIMARY KEY constraint (required by SQLite
	// AUTOINCREMENT).
	InlineIdentityPK bool

	// Wrap formats the final statement from the quoted table name and the
	// joined column definitions. Nil emits a plain CREATE TABLE.
	Wrap func(fqn, body string) string

	// Indent precedes each column definition.
	Indent string
}

// Build renders a CREATE TABLE statement for t.
//
// Each column is rendered as
//
//	<Name> <Type> [NOT NULL]
//
// where NOT NULL is added when Nullable is false or the column is part of the
// primary key. Primary-key columns are collected into a trailing
// PRIMARY KEY (...) clause unless the dialect inlines identity keys.
func (d Dialect) Build(t TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("%s: table FQN must not be empty", d.Name)
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("%s: at least one column is required", d.Name)
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, 1)

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("%s: column with empty name in table %s", d.Name, fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" && !c.Identity {
			return "", fmt.Errorf("%s: column %s missing SQLType", d.Name, name)
		}

		var sb strings.Builder
		sb.WriteString(d.quote(name))
		sb.WriteByte(' ')

		switch {
		case c.Identity && c.PrimaryKey && d.InlineIdentityPK:
			sb.WriteString(d.Identity)
			cols = append(cols, sb.String())
			continue
		case c.Identity:
			sb.WriteString(d.Identity)
		default:
			sb.WriteString(d.mapType(typ))
		}

		if !c.Nullable || c.PrimaryKey {
			sb.WriteString(" NOT NULL")
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, d.quote(name))
		}
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	body := d.Indent + strings.Join(cols, ",\n"+d.Indent)
	qfqn := d.QuoteFQN(fqn)
	if d.Wrap != nil {
		return d.Wrap(qfqn, body), nil
	}
	return fmt.Sprintf("CREATE TABLE %s (\n%s\n);", qfqn, body), nil
}

// QuoteFQN quotes each non-empty dotted segment of a table name.
func (d Dialect) QuoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, d.quote(p))
	}
	return strings.Join(out, ".")
}

func (d Dialect) quote(id string) string {
	if d.Quote == nil {
		return id
	}
	return d.Quote(id)
}

func (d Dialect) mapType(t string) string {
	if d.MapType == nil {
		return t
	}
	return d.MapType(t)
}
