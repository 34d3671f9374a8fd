package ddl

// TypeIdentity is the logical type of a server-generated surrogate key.
// Dialects render it with their own auto-increment syntax.
const TypeIdentity = "identity"

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: logical column name (unquoted; quoting happens at render time)
//   - SQLType: logical type ("int", "float", "text", "identity") or a raw
//     SQL type; dialects map logical types through their MapType
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
//   - Identity: whether the server generates the value on insert
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Identity   bool
}

// TableDef holds the table name (FQN, optionally "schema.table") and an
// ordered list of columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}
