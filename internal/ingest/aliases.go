package ingest

import "strings"

// Canonical field names probed by the normalizer.
const (
	FieldDate    = "date"
	FieldService = "service"
	FieldTeam    = "team"
	FieldEnv     = "env"
	FieldCost    = "cost_usd"
)

// AliasTable maps a canonical field name to the ordered list of source
// column names that may carry it. The first alias with a non-empty value
// wins, so onboarding a provider with new headers is a data change, not a
// code change.
type AliasTable map[string][]string

// DefaultAliases covers the column naming of the known AWS and GCP exports.
func DefaultAliases() AliasTable {
	return AliasTable{
		FieldDate:    {"date", "usage_date", "UsageDate", "billing_period", "Usage Date"},
		FieldService: {"service", "Service", "product", "LineItemType"},
		FieldTeam:    {"team", "Team", "department"},
		FieldEnv:     {"env", "Environment", "environment"},
		FieldCost:    {"cost_usd", "cost", "amount"},
	}
}

// Merge overlays per-field overrides onto a copy of the table, leaving
// fields without an override untouched.
func (t AliasTable) Merge(overrides map[string][]string) AliasTable {
	out := make(AliasTable, len(t))
	for field, keys := range t {
		out[field] = append([]string(nil), keys...)
	}
	for field, keys := range overrides {
		if len(keys) > 0 {
			out[field] = append([]string(nil), keys...)
		}
	}
	return out
}

// Lookup probes the row for the first alias carrying a non-empty value.
func (t AliasTable) Lookup(row RawRow, field string) (string, bool) {
	for _, key := range t[field] {
		if v, ok := row[key]; ok {
			if v = strings.TrimSpace(v); v != "" {
				return v, true
			}
		}
	}
	return "", false
}
