// Package timeutil parses the timestamp and date strings accepted by the scraper.
package timeutil

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// LegacyLayout is the fixed textual format used by the timeline endpoint,
// e.g. "Wed Mar 06 10:00:39 +0000 2024".
const LegacyLayout = time.RubyDate

// zonedLayouts carry their own offset.
var zonedLayouts = []string{
	LegacyLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
}

// naiveLayouts have no zone and are read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses a legacy-format or ISO-8601 timestamp.
// Values without a zone are taken as UTC. The boolean is false when the value cannot be parsed.
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, true
		}
	}

	// Anything else the fixed layouts missed (RFC 1123, slashed dates, ...).
	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseSinceDate parses a user supplied since-date such as "2024-03-05" or
// "2024-03-05T00:00:00". It accepts everything ParseTimestamp accepts.
func ParseSinceDate(value string) (time.Time, bool) {
	return ParseTimestamp(value)
}

// DefaultSince returns the start of the previous UTC day relative to now.
func DefaultSince(now time.Time) time.Time {
	yesterday := now.UTC().AddDate(0, 0, -1)
	return time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 0, 0, 0, 0, time.UTC)
}
