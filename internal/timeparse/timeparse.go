// Package timeparse normalizes heterogeneous feed timestamp strings into
// canonical time.Time instants.
//
// The three logistics feeds (trailer activity, appointment view, order view)
// are exported by different upstream systems and disagree on timestamp
// formatting. This package accepts all formats observed in production and
// degrades any unparsable value to "unknown" rather than failing: a bad
// timestamp changes which branch of the compliance rules fires downstream,
// it never aborts a pipeline run.
//
// Unknown instants are represented as the zero time.Time. Callers must use
// Known (or time.Time.IsZero) rather than comparing against a sentinel.
package timeparse

import (
	"strings"
	"time"
)

// layouts holds the accepted timestamp layouts, tried in order.
// Day-month-year with time-of-day is the primary format emitted by the yard
// management export; RFC 3339 covers API clients that submit feeds as JSON.
var layouts = []string{
	"02-01-2006 15:04:05",
	"02-01-2006 15:04",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// nullSpellings are raw values the feeds use for an absent timestamp.
var nullSpellings = map[string]bool{
	"":     true,
	"null": true,
	"nan":  true,
	"n/a":  true,
	"-":    true,
}

// Parse converts a raw feed timestamp string into a canonical instant.
//
// Returns (instant, true) when the value matches one of the accepted layouts,
// and (zero, false) for empty, null-spelled, or unparsable values. Parse never
// returns an error: unknown timestamps propagate as absent values through all
// downstream compliance logic.
//
// Timestamps without an explicit zone are interpreted as UTC so that repeated
// runs over the same batch are bit-identical regardless of host timezone.
func Parse(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if nullSpellings[strings.ToLower(trimmed)] {
		return time.Time{}, false
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}

// Known reports whether t carries a parsed instant (i.e. is not the
// "unknown" zero value).
func Known(t time.Time) bool {
	return !t.IsZero()
}
