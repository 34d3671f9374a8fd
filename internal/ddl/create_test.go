package ddl

import (
	"strings"
	"testing"
)

// TestBuild verifies the output of an unquoted dialect without a Wrap func
// and the validation errors for malformed definitions.
func TestBuild(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		def         TableDef
		wantSQL     string
		errContains string
	}{
		{
			name:        "empty FQN returns error",
			def:         TableDef{Columns: []ColumnDef{{Name: "id", SQLType: "INT"}}},
			errContains: "table FQN must not be empty",
		},
		{
			name:        "no columns returns error",
			def:         TableDef{FQN: "public.t"},
			errContains: "at least one column is required",
		},
		{
			name:        "column with empty name returns error",
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{SQLType: "INT"}}},
			errContains: "column with empty name",
		},
		{
			name:        "column with empty type returns error",
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{Name: "id"}}},
			errContains: "missing SQLType",
		},
		{
			name:    "nullable column",
			def:     TableDef{FQN: "t", Columns: []ColumnDef{{Name: "tenure", SQLType: "INT", Nullable: true}}},
			wantSQL: "CREATE TABLE t (\n  tenure INT\n);",
		},
		{
			name:    "not null column",
			def:     TableDef{FQN: "t", Columns: []ColumnDef{{Name: "churn", SQLType: "TEXT"}}},
			wantSQL: "CREATE TABLE t (\n  churn TEXT NOT NULL\n);",
		},
		{
			name: "identity primary key",
			def: TableDef{FQN: "  public.churn  ", Columns: []ColumnDef{
				{Name: "id", SQLType: TypeIdentity, PrimaryKey: true, Identity: true},
				{Name: "contract", SQLType: "TEXT", Nullable: true},
			}},
			wantSQL: "CREATE TABLE public.churn (\n  id BIGINT NOT NULL,\n  contract TEXT,\n  PRIMARY KEY (id)\n);",
		},
	}

	plain := Dialect{Name: "ddl", Identity: "BIGINT", Indent: "  "}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := plain.Build(tt.def)
			if tt.errContains != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("Build() error = %v, want substring %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("Build() unexpected error = %v", err)
			}
			if got != tt.wantSQL {
				t.Fatalf("Build() mismatch\n got: %q\nwant: %q", got, tt.wantSQL)
			}
		})
	}
}

// TestDialectBuild checks quoting, type mapping, inline identity keys and
// statement wrapping.
func TestDialectBuild(t *testing.T) {
	t.Parallel()

	d := Dialect{
		Name:             "test ddl",
		Quote:            func(s string) string { return "`" + s + "`" },
		MapType:          strings.ToUpper,
		Identity:         "INTEGER PRIMARY KEY",
		InlineIdentityPK: true,
		Indent:           " ",
		Wrap: func(fqn, body string) string {
			return "CREATE TABLE IF NOT EXISTS " + fqn + " (\n" + body + "\n);"
		},
	}
	def := TableDef{FQN: "main.churn", Columns: []ColumnDef{
		{Name: "id", SQLType: TypeIdentity, PrimaryKey: true, Identity: true},
		{Name: "tenure", SQLType: "int", Nullable: true},
	}}

	got, err := d.Build(def)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	want := "CREATE TABLE IF NOT EXISTS `main`.`churn` (\n `id` INTEGER PRIMARY KEY,\n `tenure` INT\n);"
	if got != want {
		t.Fatalf("Build() mismatch\n got: %q\nwant: %q", got, want)
	}
}
