package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the calendar-date form the backend accepts in request bodies.
const DateLayout = "2006-01-02"

// FlexDate is a date field the backend sends in one of two shapes: a
// [year, month, day] tuple with a 1-based month, or a preformatted string.
// Tuples become a calendar date; strings are kept verbatim.
type FlexDate struct {
	Time time.Time
	Raw  string
}

// DateFromTuple builds a calendar date from a [Y, M, D] tuple whose month
// is 1-based. The month is shifted to a 0-based index (the offset the
// backend documents for calendar construction) and mapped onto time.Month.
func DateFromTuple(year, month, day int) time.Time {
	monthIndex := month - 1
	return time.Date(year, time.January+time.Month(monthIndex), day, 0, 0, 0, 0, time.UTC)
}

// NewFlexDate wraps a calendar date.
func NewFlexDate(t time.Time) FlexDate {
	return FlexDate{Time: t}
}

// IsZero reports whether neither shape was present.
func (d FlexDate) IsZero() bool {
	return d.Time.IsZero() && d.Raw == ""
}

// IsCalendar reports whether the value was decoded into a calendar date.
func (d FlexDate) IsCalendar() bool {
	return !d.Time.IsZero()
}

// String renders calendar dates as YYYY-MM-DD and raw strings unchanged.
func (d FlexDate) String() string {
	if d.IsCalendar() {
		return d.Time.Format(DateLayout)
	}
	return d.Raw
}

// Parse returns the value as a time, parsing raw strings when possible.
func (d FlexDate) Parse() (time.Time, error) {
	if d.IsCalendar() {
		return d.Time, nil
	}
	return ParseDate(d.Raw)
}

// UnmarshalJSON accepts a numeric tuple, a string, or null.
func (d *FlexDate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*d = FlexDate{}
		return nil
	case data[0] == '[':
		var parts []json.Number
		if err := json.Unmarshal(data, &parts); err != nil {
			return fmt.Errorf("date tuple: %w", err)
		}
		if len(parts) < 3 {
			return fmt.Errorf("date tuple: want [year, month, day], got %d elements", len(parts))
		}
		ymd := make([]int, 3)
		for i := range ymd {
			n, err := parts[i].Int64()
			if err != nil {
				return fmt.Errorf("date tuple element %d: %w", i, err)
			}
			ymd[i] = int(n)
		}
		*d = FlexDate{Time: DateFromTuple(ymd[0], ymd[1], ymd[2])}
		return nil
	default:
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("date: expected tuple or string: %w", err)
		}
		*d = FlexDate{Raw: s}
		return nil
	}
}

// MarshalJSON writes calendar dates as YYYY-MM-DD and raw strings as-is.
func (d FlexDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// ParseDate parses the date strings the backend emits: YYYY-MM-DD,
// RFC3339 and RFC3339 without zone.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range []string{DateLayout, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04:05.000"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
