package ddl

import (
	"strings"
	"testing"

	gddl "churnetl/internal/ddl"
)

func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	def := gddl.TableDef{
		FQN: "public.telco_customer_churn_data",
		Columns: []gddl.ColumnDef{
			{Name: "id", SQLType: gddl.TypeIdentity, PrimaryKey: true, Identity: true},
			{Name: "tenure", SQLType: "int", Nullable: true},
			{Name: "monthlycharges", SQLType: "float", Nullable: true},
			{Name: "churn", SQLType: "text", Nullable: true},
		},
	}
	got, err := BuildCreateTableSQL(def)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL() error = %v", err)
	}
	want := `CREATE TABLE IF NOT EXISTS "public"."telco_customer_churn_data" (
  "id" BIGSERIAL NOT NULL,
  "tenure" INTEGER,
  "monthlycharges" DOUBLE PRECISION,
  "churn" TEXT,
  PRIMARY KEY ("id")
);`
	if got != want {
		t.Fatalf("mismatch\n got: %s\nwant: %s", got, want)
	}
}

func TestBuildCreateTableSQLErrors(t *testing.T) {
	t.Parallel()

	_, err := BuildCreateTableSQL(gddl.TableDef{})
	if err == nil || !strings.HasPrefix(err.Error(), "postgres ddl:") {
		t.Fatalf("error = %v, want postgres ddl prefix", err)
	}
}

func TestQuoteIdent(t *testing.T) {
	t.Parallel()
	if got := QuoteIdent(`weird"name`); got != `"weird""name"` {
		t.Fatalf("QuoteIdent() = %s", got)
	}
}
