package builtin

import (
	"reflect"
	"testing"

	"churnetl/internal/records"
)

// TestNormalizeApply verifies trimming, no-break-space replacement, NFC
// composition and blank-to-nil conversion.
func TestNormalizeApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   records.Record
		want records.Record
	}{
		{
			name: "non strings untouched",
			in:   records.Record{"a": 1, "b": true, "c": nil},
			want: records.Record{"a": 1, "b": true, "c": nil},
		},
		{
			name: "trim",
			in:   records.Record{"a": " DSL ", "b": "\tNo\n"},
			want: records.Record{"a": "DSL", "b": "No"},
		},
		{
			name: "no-break spaces",
			in:   records.Record{"a": "Fiber\u00a0optic", "b": "One\u00c2\u00a0year"},
			want: records.Record{"a": "Fiber optic", "b": "One year"},
		},
		{
			name: "blank becomes nil",
			in:   records.Record{"TotalCharges": " "},
			want: records.Record{"TotalCharges": nil},
		},
		{
			name: "nfc",
			in:   records.Record{"a": "e\u0301"},
			want: records.Record{"a": "\u00e9"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Normalize{}.Apply([]records.Record{tt.in})
			if !reflect.DeepEqual(got[0], tt.want) {
				t.Fatalf("got %#v want %#v", got[0], tt.want)
			}
		})
	}
}
