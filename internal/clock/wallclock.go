package clock

import (
	"fmt"
	"time"
)

// InvalidTimeError reports a malformed wall-clock date or time supplied by a
// caller. It is always a client-input problem, never retryable.
type InvalidTimeError struct {
	Field string
	Value string
}

func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// ParseLocalDate validates a YYYY-MM-DD wall-clock date.
func ParseLocalDate(localDate string) (time.Time, error) {
	d, err := time.Parse(dateLayout, localDate)
	if err != nil {
		return time.Time{}, &InvalidTimeError{Field: "date", Value: localDate}
	}
	return d, nil
}

// ToAbsolute converts a wall-clock date and HH:MM time to an absolute instant
// under a fixed UTC offset given in minutes east of UTC. Callers supplying a
// fixed offset accept DST drift; use ToAbsoluteZone for DST-correct results.
func ToAbsolute(localDate, localTime string, offsetMinutes int) (time.Time, error) {
	loc := time.FixedZone("", offsetMinutes*60)
	return toInstant(localDate, localTime, loc)
}

// ToAbsoluteZone converts a wall-clock date and HH:MM time to an absolute
// instant in a named IANA zone, applying that zone's DST rules.
func ToAbsoluteZone(localDate, localTime, zone string) (time.Time, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("load zone %q: %w", zone, err)
	}
	return toInstant(localDate, localTime, loc)
}

func toInstant(localDate, localTime string, loc *time.Location) (time.Time, error) {
	d, err := ParseLocalDate(localDate)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(timeLayout, localTime)
	if err != nil {
		return time.Time{}, &InvalidTimeError{Field: "time", Value: localTime}
	}
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}
