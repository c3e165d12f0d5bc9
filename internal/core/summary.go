package core

import (
	"sort"
	"strings"
)

// Summary holds the rolled-up totals for a (possibly filtered) dataset.
// Values are fixed two-decimal strings, never raw floats.
type Summary struct {
	Total string `json:"total"`
	AWS   string `json:"aws"`
	GCP   string `json:"gcp"`
}

// Summarize computes the grand total plus the per-provider subtotals over
// the given records. An empty input yields "0.00" everywhere.
func Summarize(records []SpendRecord) Summary {
	var total, aws, gcp float64
	for _, r := range records {
		total += r.CostUSD
		switch r.CloudProvider {
		case ProviderAWS:
			aws += r.CostUSD
		case ProviderGCP:
			gcp += r.CostUSD
		}
	}
	return Summary{
		Total: FormatUSD(total),
		AWS:   FormatUSD(aws),
		GCP:   FormatUSD(gcp),
	}
}

// DimensionTotal is one slice of a rollup: a dimension value and the summed
// cost attributed to it.
type DimensionTotal struct {
	Key     string `json:"key"`
	CostUSD string `json:"cost_usd"`
}

func rollup(records []SpendRecord, key func(SpendRecord) string) map[string]float64 {
	sums := make(map[string]float64)
	for _, r := range records {
		sums[key(r)] += r.CostUSD
	}
	return sums
}

func formatTotals(sums map[string]float64, keys []string) []DimensionTotal {
	out := make([]DimensionTotal, 0, len(keys))
	for _, k := range keys {
		out = append(out, DimensionTotal{Key: k, CostUSD: FormatUSD(sums[k])})
	}
	return out
}

// TotalByDay sums cost per calendar day, ascending chronologically.
// Only the date portion of the field is used, so a stray time component
// does not split a day. Lexicographic order equals chronological order
// for zero-padded ISO dates.
func TotalByDay(records []SpendRecord) []DimensionTotal {
	sums := rollup(records, func(r SpendRecord) string {
		day, _, _ := strings.Cut(r.Date, "T")
		return day
	})
	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return formatTotals(sums, keys)
}

// TotalByCloud sums cost per provider tag, sorted by tag name.
func TotalByCloud(records []SpendRecord) []DimensionTotal {
	sums := rollup(records, func(r SpendRecord) string {
		return r.CloudProvider
	})
	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return formatTotals(sums, keys)
}

// TotalByTeam sums cost per team, sorted descending by cost with the team
// name as tiebreaker.
func TotalByTeam(records []SpendRecord) []DimensionTotal {
	sums := rollup(records, func(r SpendRecord) string {
		return r.Team
	})
	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if sums[keys[i]] != sums[keys[j]] {
			return sums[keys[i]] > sums[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return formatTotals(sums, keys)
}
