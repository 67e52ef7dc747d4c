// Package timeutil converts between host wall-clock times and UTC instants.
// Windows and sessions store a timezone snapshot taken at creation; all
// resolution against calendar dates goes through that snapshot so DST shifts
// land on the correct UTC instant.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ZoneOrUTC loads the named IANA zone, defaulting to UTC for an empty name.
func ZoneOrUTC(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

// ParseClock parses a wall-clock "HH:MM" string.
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid clock time %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid clock time %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid clock time %q", s)
	}
	return hour, minute, nil
}

// ClockMinutes returns minutes since midnight for an "HH:MM" string.
func ClockMinutes(s string) (int, error) {
	h, m, err := ParseClock(s)
	if err != nil {
		return 0, err
	}
	return h*60 + m, nil
}

// ResolveWall places a wall-clock time on the given calendar day in the named
// zone and returns the UTC instant. day carries the date; its own clock and
// zone are ignored.
func ResolveWall(day time.Time, clock, tzName string) (time.Time, error) {
	loc, err := ZoneOrUTC(tzName)
	if err != nil {
		return time.Time{}, err
	}
	h, m, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	y, mo, d := day.Date()
	return time.Date(y, mo, d, h, m, 0, 0, loc).UTC(), nil
}

// WeekdayIndex maps time.Weekday onto the 0=Monday .. 6=Sunday convention
// the calendar stores.
func WeekdayIndex(d time.Weekday) int {
	if d == time.Sunday {
		return 6
	}
	return int(d) - 1
}

// DayStartUTC truncates an instant to UTC midnight.
func DayStartUTC(t time.Time) time.Time {
	y, mo, d := t.UTC().Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}
