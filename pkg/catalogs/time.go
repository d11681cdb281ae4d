package catalogs

import (
	"strings"
	"time"

	"github.com/agentstation/utc"
)

// TimestampLayout is the ISO-8601 layout written for createdAt and updatedAt.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

var timestampLayouts = []string{
	time.RFC3339Nano,
	TimestampLayout,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01",
}

var epoch = time.Unix(0, 0).UTC()

// ParseTimestamp parses an ISO-8601 timestamp or date. Anything it cannot
// parse, including the empty string, yields the Unix epoch.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return epoch
	}
	for _, layout := range timestampLayouts {
		if t, err := utc.Parse(layout, s); err == nil {
			return t.Time
		}
	}
	return epoch
}

// FormatTimestamp renders t in the layout stored on records.
func FormatTimestamp(t utc.Time) string {
	return t.Time.UTC().Format(TimestampLayout)
}
