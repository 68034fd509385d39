package importer

import (
	"strings"
)

// Canonical field names used by the reconciler
const (
	FieldClientName = "client_name"
	FieldVchNo      = "vch_no"
	FieldVchType    = "vch_type"
	FieldDate       = "date"
	FieldDebit      = "debit"
	FieldCredit     = "credit"
)

// columnAliases maps each canonical field to the header names accepted for
// it, in priority order. Exported statements vary between accounting
// packages, so several spellings are recognized per field.
var columnAliases = map[string][]string{
	FieldClientName: {"client name", "particulars", "account", "client_name", "client"},
	FieldVchNo:      {"vch no.", "vch no", "voucher no", "voucher number", "vch_no"},
	FieldVchType:    {"vch type", "voucher type", "vch_type", "type"},
	FieldDate:       {"date", "transaction date", "transaction_date"},
	FieldDebit:      {"debit", "debit amount", "dr"},
	FieldCredit:     {"credit", "credit amount", "cr"},
}

// ColumnMap resolves canonical fields to column indexes in a header row.
// Resolution happens once per import, not per row.
type ColumnMap map[string]int

// ResolveColumns matches a header row against the accepted aliases.
// Matching is case-insensitive and ignores surrounding whitespace. Fields
// without a matching column are simply absent from the map; only the
// client name column is mandatory.
func ResolveColumns(header []string) ColumnMap {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}

	cm := make(ColumnMap)
	for field, aliases := range columnAliases {
		for _, alias := range aliases {
			if idx := indexOf(normalized, alias); idx >= 0 {
				cm[field] = idx
				break
			}
		}
	}
	return cm
}

// Get returns the trimmed cell for a canonical field, or "" when the
// column is absent or the row is short
func (cm ColumnMap) Get(row []string, field string) string {
	idx, ok := cm[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// HasClientName reports whether the mandatory column resolved
func (cm ColumnMap) HasClientName() bool {
	_, ok := cm[FieldClientName]
	return ok
}

func indexOf(haystack []string, needle string) int {
	for i, s := range haystack {
		if s == needle {
			return i
		}
	}
	return -1
}
