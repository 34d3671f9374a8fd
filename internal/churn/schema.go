// Package churn describes the telecom customer-churn dataset: the raw
// columns produced by the extractor, the engineered features added during
// transformation, and the destination schema of the hosted table.
package churn

import (
	"strings"

	"churnetl/internal/ddl"
)

// Raw column names, as produced by the extractor (mixed case).
const (
	ColCustomerID      = "customerID"
	ColGender          = "gender"
	ColTenure          = "tenure"
	ColMultipleLines   = "MultipleLines"
	ColInternetService = "InternetService"
	ColOnlineSecurity  = "OnlineSecurity"
	ColOnlineBackup    = "OnlineBackup"
	ColContract        = "Contract"
	ColPaymentMethod   = "PaymentMethod"
	ColMonthlyCharges  = "MonthlyCharges"
	ColTotalCharges    = "TotalCharges"
	ColChurn           = "Churn"
)

// Engineered column names.
const (
	ColTenureGroup          = "tenure_group"
	ColHasInternetService   = "has_internet_service"
	ColIsMultiLineUser      = "is_multi_line_user"
	ColContractTypeCode     = "contract_type_code"
	ColMonthlyChargeSegment = "monthly_charge_segment"
)

// IDColumn is the server-assigned surrogate key of the destination table.
const IDColumn = "id"

// DefaultTable is the destination table used when none is configured.
const DefaultTable = "telco_customer_churn_data"

// UnknownCategory fills missing categorical service fields.
const UnknownCategory = "Unknown"

var (
	// RawNumericColumns are imputed with their dataset median.
	RawNumericColumns = []string{ColTenure, ColMonthlyCharges, ColTotalCharges}

	// RawServiceColumns are imputed with UnknownCategory.
	RawServiceColumns = []string{ColMultipleLines, ColOnlineSecurity, ColOnlineBackup}

	// DroppedColumns identify or describe the customer and never leave the
	// transform stage.
	DroppedColumns = []string{ColCustomerID, ColGender}
)

// Kind is the logical type of a destination column.
type Kind string

const (
	KindInteger Kind = "int"
	KindFloat   Kind = "float"
	KindText    Kind = "text"
)

// Column is one destination-schema column.
type Column struct {
	Name string
	Kind Kind
}

// DestinationSchema is the ordered set of columns the hosted table accepts,
// excluding the server-generated id.
var DestinationSchema = []Column{
	{Name: StagedName(ColTenure), Kind: KindInteger},
	{Name: StagedName(ColMonthlyCharges), Kind: KindFloat},
	{Name: StagedName(ColTotalCharges), Kind: KindFloat},
	{Name: StagedName(ColChurn), Kind: KindText},
	{Name: StagedName(ColInternetService), Kind: KindText},
	{Name: StagedName(ColContract), Kind: KindText},
	{Name: StagedName(ColPaymentMethod), Kind: KindText},
	{Name: ColTenureGroup, Kind: KindText},
	{Name: ColMonthlyChargeSegment, Kind: KindInteger},
	{Name: ColHasInternetService, Kind: KindInteger},
	{Name: ColIsMultiLineUser, Kind: KindInteger},
	{Name: ColContractTypeCode, Kind: KindInteger},
}

// DestinationColumns returns the destination column names in order.
func DestinationColumns() []string {
	out := make([]string, len(DestinationSchema))
	for i, c := range DestinationSchema {
		out[i] = c.Name
	}
	return out
}

// NumericColumns returns the destination columns re-coerced to numbers by the
// loader.
func NumericColumns() []string {
	var out []string
	for _, c := range DestinationSchema {
		if c.Kind != KindText {
			out = append(out, c.Name)
		}
	}
	return out
}

// KindOf returns the destination kind of col and whether col belongs to the
// destination schema.
func KindOf(col string) (Kind, bool) {
	for _, c := range DestinationSchema {
		if c.Name == col {
			return c.Kind, true
		}
	}
	return "", false
}

// StagedName maps a raw column name to its staged (lowercase) form.
func StagedName(raw string) string { return strings.ToLower(raw) }

// TableDef returns the dialect-neutral definition of the destination table,
// including the identity primary key.
func TableDef(table string) ddl.TableDef {
	cols := make([]ddl.ColumnDef, 0, len(DestinationSchema)+1)
	cols = append(cols, ddl.ColumnDef{
		Name:       IDColumn,
		SQLType:    ddl.TypeIdentity,
		PrimaryKey: true,
		Identity:   true,
	})
	for _, c := range DestinationSchema {
		cols = append(cols, ddl.ColumnDef{
			Name:     c.Name,
			SQLType:  string(c.Kind),
			Nullable: true,
		})
	}
	return ddl.TableDef{FQN: table, Columns: cols}
}
