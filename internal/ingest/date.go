package ingest

import (
	"regexp"
	"strings"
	"time"
)

var (
	dayFirstRe = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
	shortISORe = regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}$`)
)

// genericLayouts approximates "any date the platform can parse" for the
// pass-through rule. A matching value is returned unchanged, not reformatted.
var genericLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	time.RFC1123,
}

// NormalizeDate resolves the date formats seen across vendor exports into
// ISO YYYY-MM-DD. Rules run in priority order and the first match wins:
//
//  1. DD-MM-YYYY is reinterpreted day-first and re-emitted as YYYY-MM-DD.
//  2. Anything containing "/" is read as MM/DD/YYYY with zero padding and no
//     range validation, so a day-first slash source would misparse silently.
//     Known tradeoff inherited from the source data contract.
//  3. YYYY-M-D is zero-padded to YYYY-MM-DD.
//  4. Values parseable as some other calendar date pass through unchanged.
//  5. Everything else, including the empty string, comes back as-is.
func NormalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}

	if dayFirstRe.MatchString(raw) {
		day, rest, _ := strings.Cut(raw, "-")
		month, year, _ := strings.Cut(rest, "-")
		return year + "-" + month + "-" + day
	}

	if strings.Contains(raw, "/") {
		// Slash dates with the wrong part count fall through unchanged.
		if parts := strings.Split(raw, "/"); len(parts) == 3 {
			return parts[2] + "-" + padTwo(parts[0]) + "-" + padTwo(parts[1])
		}
	}

	if shortISORe.MatchString(raw) {
		parts := strings.SplitN(raw, "-", 3)
		return parts[0] + "-" + padTwo(parts[1]) + "-" + padTwo(parts[2])
	}

	for _, layout := range genericLayouts {
		if _, err := time.Parse(layout, raw); err == nil {
			return raw
		}
	}

	return raw
}

func padTwo(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
