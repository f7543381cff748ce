package normalizer

import (
	"regexp"
	"strings"
	"time"
)

var spaceSeparated = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d`)

// Layouts with an explicit offset or zone.
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05 -0700",
	"2006-01-02T15:04:05 -07:00",
	"2006-01-02T15:04:05.999999999 -0700",
	"2006-01-02T15:04:05 MST",
	time.RFC1123Z,
	time.RFC1123,
}

// Layouts without zone information, read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp reads "YYYY-MM-DD HH:mm:ss" (UTC), ISO-8601 strings and the
// RFC 1123 dates feeds use. Relative strings such as "3 days ago" are not
// understood and report false.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if spaceSeparated.MatchString(s) {
		s = strings.Replace(s, " ", "T", 1)
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
