package ddl

import "testing"

func TestMapType(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"int":       "BIGINT",
		" InTeGeR ": "BIGINT",
		"float":     "FLOAT",
		"decimal":   "DECIMAL(38, 10)",
		"bool":      "BIT",
		"date":      "DATE",
		"timestamp": "DATETIME2",
		"text":      "NVARCHAR(MAX)",
		"":          "NVARCHAR(MAX)",
	}
	for kind, want := range tests {
		if got := MapType(kind); got != want {
			t.Errorf("MapType(%q) = %q, want %q", kind, got, want)
		}
	}
}
