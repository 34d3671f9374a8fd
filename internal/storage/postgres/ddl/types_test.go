package ddl

import "testing"

// TestMapType verifies that MapType normalizes logical type names into the
// expected Postgres SQL types and defaults to TEXT.
func TestMapType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind string
		want string
	}{
		{"int", "INTEGER"},
		{" InTeGeR ", "INTEGER"},
		{"BIGINT", "BIGINT"},
		{"float", "DOUBLE PRECISION"},
		{"double", "DOUBLE PRECISION"},
		{"numeric", "NUMERIC"},
		{"bool", "BOOLEAN"},
		{"date", "DATE"},
		{"timestamp", "TIMESTAMPTZ"},
		{"", "TEXT"},
		{"text", "TEXT"},
		{"jsonb", "TEXT"},
	}
	for _, tt := range tests {
		if got := MapType(tt.kind); got != tt.want {
			t.Errorf("MapType(%q) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
