package schedule

import (
	"strings"
	"time"
)

const (
	LabelLayout = "03:04 PM"

	FirstDeparture = 6 * time.Hour
	Stagger        = 2 * time.Hour
	// Synthetic flights assume a fixed block time regardless of route distance.
	BlockTime = 3*time.Hour + 30*time.Minute
)

var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// ParseTimestamp accepts the upstream's scheduled times, with or without an
// offset.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &time.ParseError{
		Value:   s,
		Message: "unable to parse time string",
	}
}

// Label renders a scheduled upstream time as a spoken clock label. The clock
// time is kept as reported (airport local time), not converted.
func Label(raw, fallback string) string {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}
	t, err := ParseTimestamp(raw)
	if err != nil {
		return fallback
	}
	return t.Format(LabelLayout)
}

// Slot returns the synthetic departure and arrival offsets from midnight for
// the i-th flight of the day.
func Slot(i int) (departure, arrival time.Duration) {
	departure = FirstDeparture + time.Duration(i)*Stagger
	return departure, departure + BlockTime
}

// ClockLabel formats an offset from midnight, wrapping past 24h.
func ClockLabel(offset time.Duration) string {
	day := 24 * time.Hour
	offset %= day
	if offset < 0 {
		offset += day
	}
	return time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).Add(offset).Format(LabelLayout)
}
