package core

import "strconv"

// Provider tags as supplied by the ingestion caller.
const (
	ProviderAWS = "AWS"
	ProviderGCP = "GCP"
)

// UnknownLabel is the sentinel used for fields absent from a source row.
const UnknownLabel = "Unknown"

// SpendRecord is the canonical representation of one billing line item,
// independent of which vendor export it came from. Records are built once by
// the normalizer and never mutated afterwards; a new ingestion run replaces
// the whole sequence.
//
// Date is an ISO YYYY-MM-DD string except for the documented pass-through
// cases, so consumers must tolerate a non-ISO or empty value.
type SpendRecord struct {
	Date          string  `json:"date"`
	CloudProvider string  `json:"cloud_provider"`
	Service       string  `json:"service"`
	Team          string  `json:"team"`
	Env           string  `json:"env"`
	CostUSD       float64 `json:"cost_usd"`
}

// FormatUSD renders a dollar amount with exactly two decimal places.
// Monetary output never leaves the system as a raw float.
func FormatUSD(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
