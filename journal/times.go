package journal

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// timestampLayouts are the encodings accepted for entryTime and exitTime.
// Values without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	dateLayout,
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Period is a time bucket size for TimePeriods.
type Period string

const (
	Day   Period = "day"
	Week  Period = "week"
	Month Period = "month"
)

// ParsePeriod validates a period name.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case Day, Week, Month:
		return p, nil
	}
	return "", validationErrorf("period must be day, week or month, got %q", s)
}

// key truncates t to the bucket label: YYYY-MM-DD, YYYY-Www (ISO 8601 week
// and week-year) or YYYY-MM.
func (p Period) key(t time.Time) string {
	switch p {
	case Week:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case Month:
		return t.Format("2006-01")
	default:
		return t.Format(dateLayout)
	}
}
