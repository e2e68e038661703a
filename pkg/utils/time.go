package utils

import (
	"time"

	"github.com/dustin/go-humanize"
)

// ParseTimestamp accepts the timestamp shapes the graph backend emits
// (RFC3339 with or without fractional seconds, or a bare date).
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// RelativeTime renders t relative to now, e.g. "3 days ago"
func RelativeTime(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}
