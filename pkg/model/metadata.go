// pkg/model/metadata.go
package model

import "strings"

// Input column names of the raw transaction table
const (
	ColUserID        = "user_id"
	ColSignupTime    = "signup_time"
	ColPurchaseTime  = "purchase_time"
	ColPurchaseValue = "purchase_value"
	ColDeviceID      = "device_id"
	ColSource        = "source"
	ColBrowser       = "browser"
	ColSex           = "sex"
	ColAge           = "age"
	ColIPAddress     = "ip_address"
	ColClass         = "class"
	ColCountry       = "country"
	ColIPInt         = "ip_int"
)

// TableMetadata contains the structure information for a transaction table
type TableMetadata struct {
	Schema  string       // Schema name, empty for file sources
	Table   string       // Table name or file name
	Columns []ColumnSpec // Column definitions
}

// ColumnSpec describes one declared column
type ColumnSpec struct {
	Name     string
	Kind     Kind
	Nullable bool
}

// TransactionSchema returns the declared columns of the raw transaction table
func TransactionSchema() *TableMetadata {
	return &TableMetadata{
		Table: "transactions",
		Columns: []ColumnSpec{
			{Name: ColUserID, Kind: KindInt},
			{Name: ColSignupTime, Kind: KindTime},
			{Name: ColPurchaseTime, Kind: KindTime},
			{Name: ColPurchaseValue, Kind: KindFloat},
			{Name: ColDeviceID, Kind: KindString},
			{Name: ColSource, Kind: KindString},
			{Name: ColBrowser, Kind: KindString},
			{Name: ColSex, Kind: KindString},
			{Name: ColAge, Kind: KindFloat},
			{Name: ColIPAddress, Kind: KindFloat, Nullable: true},
			{Name: ColClass, Kind: KindInt},
			{Name: ColCountry, Kind: KindString},
			{Name: ColIPInt, Kind: KindInt, Nullable: true},
		},
	}
}

// ColumnNames returns the declared column names in order
func (tm *TableMetadata) ColumnNames() []string {
	names := make([]string, len(tm.Columns))
	for i, col := range tm.Columns {
		names[i] = col.Name
	}
	return names
}

// GetColumnByName returns a column by name (case-insensitive)
// Returns nil if column not found
func (tm *TableMetadata) GetColumnByName(name string) *ColumnSpec {
	normalized := normalizeColumnName(name)
	for i, col := range tm.Columns {
		if normalizeColumnName(col.Name) == normalized {
			return &tm.Columns[i]
		}
	}
	return nil
}

// FullName returns the qualified table name
func (tm *TableMetadata) FullName() string {
	if tm.Schema == "" {
		return tm.Table
	}
	return tm.Schema + "." + tm.Table
}

func normalizeColumnName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
