package reconcile

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// EventTime is the start or end of an event. It is either an Instant or an AllDay date;
// the set of implementations is closed.
type EventTime interface {
	// String returns the ledger serialization: RFC 3339 for instants, YYYY-MM-DD for dates.
	String() string

	// Time returns the moment the value begins at. Dates resolve to midnight UTC.
	Time() time.Time

	canonical() eventTimeJSON
}

// Instant is a precise point in time with an optional IANA time zone.
type Instant struct {
	At       time.Time
	TimeZone string
}

// AllDay is a whole-day date without a time component.
type AllDay struct {
	Year  int
	Month time.Month
	Day   int
}

// eventTimeJSON is the canonical shape used for signatures.
type eventTimeJSON struct {
	DateTime string `json:"dateTime,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
	Date     string `json:"date,omitempty"`
}

// At returns an Instant for t in the given zone.
func At(t time.Time, timeZone string) Instant {
	return Instant{At: t, TimeZone: timeZone}
}

// OnDate returns the AllDay value for the calendar date of t.
func OnDate(t time.Time) AllDay {
	y, m, d := t.Date()
	return AllDay{Year: y, Month: m, Day: d}
}

func (i Instant) String() string {
	return i.At.UTC().Format(time.RFC3339)
}

func (i Instant) Time() time.Time {
	return i.At
}

func (i Instant) canonical() eventTimeJSON {
	return eventTimeJSON{DateTime: i.String(), TimeZone: i.TimeZone}
}

func (d AllDay) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d AllDay) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d AllDay) canonical() eventTimeJSON {
	return eventTimeJSON{Date: d.String()}
}

// ParseEventTime parses the ledger serialization produced by EventTime.String.
// An empty string yields a nil EventTime.
func ParseEventTime(s string) (EventTime, error) {
	if s == "" {
		return nil, nil
	}
	if len(s) == len(dateLayout) {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", s, err)
		}
		return OnDate(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date-time %q: %w", s, err)
	}
	return Instant{At: t}, nil
}

func formatEventTime(t EventTime) string {
	if t == nil {
		return ""
	}
	return t.String()
}

func canonicalEventTime(t EventTime) eventTimeJSON {
	if t == nil {
		return eventTimeJSON{}
	}
	return t.canonical()
}
