package builtin

import (
	"math"
	"testing"

	"churnetl/internal/records"
)

func TestCoerceFloat(t *testing.T) {
	t.Parallel()

	recs := []records.Record{
		{"TotalCharges": "29.85"},
		{"TotalCharges": " "},
		{"TotalCharges": "n/a"},
		{"TotalCharges": nil},
		{"TotalCharges": int64(7)},
		{"other": "x"},
	}
	out := Coerce{Types: map[string]string{"TotalCharges": "float"}}.Apply(recs)

	if out[0]["TotalCharges"] != 29.85 {
		t.Errorf("row 0 = %v, want 29.85", out[0]["TotalCharges"])
	}
	for i := 1; i <= 3; i++ {
		if out[i]["TotalCharges"] != nil {
			t.Errorf("row %d = %#v, want nil", i, out[i]["TotalCharges"])
		}
	}
	if out[4]["TotalCharges"] != 7.0 {
		t.Errorf("row 4 = %#v, want 7.0", out[4]["TotalCharges"])
	}
	if _, ok := out[5]["TotalCharges"]; ok {
		t.Errorf("absent field was added")
	}
}

func TestCoerceInt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want any
	}{
		{"12", int64(12)},
		{12.0, int64(12)},
		{29.5, int64(30)},
		{-2.5, int64(-3)},
		{math.Inf(1), nil},
		{math.NaN(), nil},
		{"abc", nil},
		{3, int64(3)},
	}
	for _, tt := range tests {
		rec := []records.Record{{"tenure": tt.in}}
		got := Coerce{Types: map[string]string{"tenure": "int"}}.Apply(rec)[0]["tenure"]
		if got != tt.want {
			t.Errorf("int(%v) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestCoerceUnknownKindLeavesValue(t *testing.T) {
	t.Parallel()

	recs := []records.Record{{"contract": "One year"}}
	out := Coerce{Types: map[string]string{"contract": "text"}}.Apply(recs)
	if out[0]["contract"] != "One year" {
		t.Fatalf("record = %v", out[0])
	}
}
