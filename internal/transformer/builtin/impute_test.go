package builtin

import (
	"math"
	"testing"

	"churnetl/internal/records"
)

func TestMedian(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   []float64
		want float64
		ok   bool
	}{
		{nil, 0, false},
		{[]float64{5}, 5, true},
		{[]float64{3, 1, 2}, 2, true},
		{[]float64{4, 1, 3, 2}, 2.5, true},
	}
	for _, tt := range tests {
		got, ok := Median(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Median(%v) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFillMedianBlankTotalCharges(t *testing.T) {
	t.Parallel()

	recs := []records.Record{
		{"TotalCharges": 10.0},
		{"TotalCharges": nil},
		{"TotalCharges": 30.0},
		{"TotalCharges": math.NaN()},
		{"TotalCharges": 20.0},
	}
	f := &FillMedian{Columns: []string{"TotalCharges", "absent"}}
	out := f.Apply(recs)

	if out[1]["TotalCharges"] != 20.0 || out[3]["TotalCharges"] != 20.0 {
		t.Fatalf("filled = %v / %v, want 20", out[1]["TotalCharges"], out[3]["TotalCharges"])
	}
	if f.Medians["TotalCharges"] != 20 {
		t.Fatalf("Medians = %v", f.Medians)
	}
	if _, ok := f.Medians["absent"]; ok {
		t.Fatalf("median recorded for a column without values")
	}
	if _, ok := out[0]["absent"]; ok {
		t.Fatalf("absent column was created")
	}
}

func TestFillConstant(t *testing.T) {
	t.Parallel()

	recs := []records.Record{{"MultipleLines": nil, "OnlineBackup": "Yes"}, {}}
	out := FillConstant{Columns: []string{"MultipleLines", "OnlineBackup"}, Value: "Unknown"}.Apply(recs)
	if out[0]["MultipleLines"] != "Unknown" || out[0]["OnlineBackup"] != "Yes" {
		t.Fatalf("record 0 = %v", out[0])
	}
	if out[1]["MultipleLines"] != "Unknown" || out[1]["OnlineBackup"] != "Unknown" {
		t.Fatalf("record 1 = %v", out[1])
	}
}
