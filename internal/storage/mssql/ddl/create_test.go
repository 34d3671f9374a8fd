package ddl

import (
	"testing"

	gddl "churnetl/internal/ddl"
)

func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"name":     "[name]",
		"":         "[]",
		"order id": "[order id]",
		"[name]":   "[[name]]]",
		"weird]id": "[weird]]id]",
	}
	for in, want := range tests {
		if got := QuoteIdent(in); got != want {
			t.Errorf("QuoteIdent(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	def := gddl.TableDef{
		FQN: "dbo.churn",
		Columns: []gddl.ColumnDef{
			{Name: "id", SQLType: gddl.TypeIdentity, PrimaryKey: true, Identity: true},
			{Name: "tenure", SQLType: "int", Nullable: true},
			{Name: "churn", SQLType: "text", Nullable: true},
		},
	}
	got, err := BuildCreateTableSQL(def)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL() error = %v", err)
	}
	want := "IF OBJECT_ID(N'[dbo].[churn]', N'U') IS NULL\nBEGIN\n  CREATE TABLE [dbo].[churn] (\n" +
		"    [id] BIGINT IDENTITY(1,1) NOT NULL,\n" +
		"    [tenure] BIGINT,\n" +
		"    [churn] NVARCHAR(MAX),\n" +
		"    PRIMARY KEY ([id])\n  );\nEND;"
	if got != want {
		t.Fatalf("mismatch\n got: %q\nwant: %q", got, want)
	}

	if _, err := BuildCreateTableSQL(gddl.TableDef{FQN: "t"}); err == nil {
		t.Fatal("no columns: error = nil")
	}
}
