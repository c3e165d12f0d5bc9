package core

import "strings"

// FilterAll is the filter value meaning "no constraint on this dimension".
const FilterAll = "All"

// Filter holds the optional predicates applied to a spend dataset.
// Cloud, Team and Env are exact string matches; Month is a prefix match
// against the ISO date, so "2025-03" selects a whole month and "2025" a
// whole year. All active predicates are combined with AND.
type Filter struct {
	Cloud string
	Team  string
	Env   string
	Month string
}

func active(v string) bool {
	return v != "" && v != FilterAll
}

// IsZero reports whether no predicate is active.
func (f Filter) IsZero() bool {
	return !active(f.Cloud) && !active(f.Team) && !active(f.Env) && !active(f.Month)
}

// Match reports whether a record satisfies every active predicate.
// Unknown filter values simply match nothing; they are never an error.
func (f Filter) Match(r SpendRecord) bool {
	if active(f.Cloud) && r.CloudProvider != f.Cloud {
		return false
	}
	if active(f.Team) && r.Team != f.Team {
		return false
	}
	if active(f.Env) && r.Env != f.Env {
		return false
	}
	if active(f.Month) && !strings.HasPrefix(r.Date, f.Month) {
		return false
	}
	return true
}

// Apply returns the subsequence of records matching the filter, preserving
// input order. The result is never nil so it serializes as a JSON array.
func (f Filter) Apply(records []SpendRecord) []SpendRecord {
	out := make([]SpendRecord, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Key returns a stable identifier for the filter, suitable as a cache key.
// Inactive predicates collapse to the empty string so that "All" and an
// absent parameter share one cache entry.
func (f Filter) Key() string {
	norm := func(v string) string {
		if !active(v) {
			return ""
		}
		return v
	}
	return norm(f.Cloud) + "|" + norm(f.Team) + "|" + norm(f.Env) + "|" + norm(f.Month)
}
