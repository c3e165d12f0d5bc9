package ingest

import "testing"

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		// Rule 1: day-first with hyphens.
		{"01-01-2025", "2025-01-01"},
		{"31-12-2024", "2024-12-31"},
		// Rule 2: month-first with slashes, zero-padded, no range checks.
		{"3/4/2025", "2025-03-04"},
		{"12/31/2025", "2025-12-31"},
		{"13/40/2025", "2025-13-40"}, // deliberately unvalidated
		// Rule 3: short ISO, zero-padded.
		{"2025-2-5", "2025-02-05"},
		{"2025-12-5", "2025-12-05"},
		{"2025-2-15", "2025-02-15"},
		// Rule 4: generically parseable values pass through unchanged.
		{"2025-02-05T10:30:00Z", "2025-02-05T10:30:00Z"},
		{"Jan 5, 2025", "Jan 5, 2025"},
		// Rule 5: everything else comes back as-is.
		{"not-a-date", "not-a-date"},
		{"", ""},
		{"  2025-2-5  ", "2025-02-05"}, // surrounding whitespace trimmed first
		{"3/2025", "3/2025"},           // malformed slash date, unchanged
	}
	for _, tc := range cases {
		if got := NormalizeDate(tc.in); got != tc.want {
			t.Fatalf("NormalizeDate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeDateRulePriority(t *testing.T) {
	// An ambiguous day/month value must take the day-first branch.
	if got := NormalizeDate("01-02-2025"); got != "2025-02-01" {
		t.Fatalf("got %q, want day-first interpretation 2025-02-01", got)
	}
}
