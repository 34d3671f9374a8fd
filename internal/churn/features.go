package churn

import (
	"math"

	"churnetl/internal/records"
)

// Tenure group labels, ordered.
const (
	TenureNew      = "New"
	TenureRegular  = "Regular"
	TenureLoyal    = "Loyal"
	TenureChampion = "Champion"
)

// TenureGroups lists the labels in bucket order.
var TenureGroups = []string{TenureNew, TenureRegular, TenureLoyal, TenureChampion}

// Upper bounds (inclusive) of the tenure buckets; the last bucket is open.
var tenureBounds = []float64{12, 36, 60}

// contractCodes maps contract types to their ordinal code.
var contractCodes = map[string]int64{
	"Month-to-month": 0,
	"One year":       1,
	"Two year":       2,
}

// ValidContractCodes is the domain of contract_type_code.
var ValidContractCodes = []int64{0, 1, 2}

// internetServices are the recognized internet service types.
var internetServices = map[string]struct{}{
	"DSL":         {},
	"Fiber optic": {},
}

// Upper bounds (inclusive) of the monthly charge segments; the last is open.
var chargeBounds = []float64{35, 70}

// GroupTenure buckets months of tenure into (0,12], (12,36], (36,60], (60,∞).
// Zero, negative and NaN tenures fall outside every bucket.
func GroupTenure(months float64) (string, bool) {
	if math.IsNaN(months) || months <= 0 {
		return "", false
	}
	for i, hi := range tenureBounds {
		if months <= hi {
			return TenureGroups[i], true
		}
	}
	return TenureChampion, true
}

// HasInternetService is 1 for a recognized internet service type, else 0.
func HasInternetService(service string) int64 {
	if _, ok := internetServices[service]; ok {
		return 1
	}
	return 0
}

// IsMultiLineUser is 1 when the multiple-lines flag is exactly "Yes".
func IsMultiLineUser(flag string) int64 {
	if flag == "Yes" {
		return 1
	}
	return 0
}

// ContractTypeCode maps a contract type to 0, 1 or 2. Unknown types have no
// code.
func ContractTypeCode(contract string) (int64, bool) {
	c, ok := contractCodes[contract]
	return c, ok
}

// MonthlyChargeSegment buckets monthly charges into 0 (<=35), 1 (<=70) or 2.
func MonthlyChargeSegment(charges float64) (int64, bool) {
	if math.IsNaN(charges) {
		return 0, false
	}
	for i, hi := range chargeBounds {
		if charges <= hi {
			return int64(i), true
		}
	}
	return int64(len(chargeBounds)), true
}

// Features appends the engineered columns to raw records. Numeric inputs are
// expected to be coerced to float64 already; missing inputs yield missing
// features where the mapping is undefined.
type Features struct{}

// Columns lists the columns Features adds, in output order.
func (Features) Columns() []string {
	return []string{
		ColTenureGroup,
		ColHasInternetService,
		ColIsMultiLineUser,
		ColContractTypeCode,
		ColMonthlyChargeSegment,
	}
}

// Inputs lists the raw columns Features reads.
func (Features) Inputs() []string {
	return []string{ColTenure, ColInternetService, ColMultipleLines, ColContract, ColMonthlyCharges}
}

// Apply implements transformer.Transformer.
func (Features) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		r[ColTenureGroup] = nil
		if m, ok := asFloat(r[ColTenure]); ok {
			if g, ok := GroupTenure(m); ok {
				r[ColTenureGroup] = g
			}
		}

		r[ColHasInternetService] = HasInternetService(asString(r[ColInternetService]))
		r[ColIsMultiLineUser] = IsMultiLineUser(asString(r[ColMultipleLines]))

		r[ColContractTypeCode] = nil
		if c, ok := ContractTypeCode(asString(r[ColContract])); ok {
			r[ColContractTypeCode] = c
		}

		r[ColMonthlyChargeSegment] = nil
		if v, ok := asFloat(r[ColMonthlyCharges]); ok {
			if s, ok := MonthlyChargeSegment(v); ok {
				r[ColMonthlyChargeSegment] = s
			}
		}
	}
	return in
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t)
	case int64:
		return float64(t), true
	case int:
		return float64(t), true
	}
	return 0, false
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
