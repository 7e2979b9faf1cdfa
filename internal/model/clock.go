package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock is a wall-clock time of day in minutes since midnight.
type Clock int

const (
	Midnight Clock = 0
	EndOfDay Clock = 24 * 60
)

// NewClock builds a Clock from hours and minutes.
func NewClock(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

// ClockOf returns the wall-clock part of t.
func ClockOf(t time.Time) Clock {
	return NewClock(t.Hour(), t.Minute())
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

// Add shifts the clock by the given number of minutes.
func (c Clock) Add(minutes int) Clock { return c + Clock(minutes) }

// On places the clock on the calendar date of day, in day's location.
func (c Clock) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), 0, 0, day.Location())
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// Valid reports whether c lies within a single day, 24:00 included.
func (c Clock) Valid() bool {
	return c >= Midnight && c <= EndOfDay
}

func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Clock) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseClock accepts "14:00", "9:30", "2pm", "2:30 pm", "1430" and "14".
func ParseClock(s string) (Clock, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	raw = strings.ReplaceAll(raw, ".", "")
	if raw == "" {
		return 0, &ValidationError{Field: "time", Reason: "empty time"}
	}
	switch raw {
	case "noon":
		return NewClock(12, 0), nil
	case "midnight":
		return Midnight, nil
	}

	meridiem := ""
	for _, suffix := range []string{"am", "pm"} {
		if strings.HasSuffix(raw, suffix) {
			meridiem = suffix
			raw = strings.TrimSpace(strings.TrimSuffix(raw, suffix))
			break
		}
	}

	var hour, minute int
	var err error
	switch {
	case strings.Contains(raw, ":"):
		parts := strings.SplitN(raw, ":", 2)
		if hour, err = strconv.Atoi(parts[0]); err != nil {
			return 0, &ValidationError{Field: "time", Reason: fmt.Sprintf("invalid hour in %q", s)}
		}
		if minute, err = strconv.Atoi(parts[1]); err != nil {
			return 0, &ValidationError{Field: "time", Reason: fmt.Sprintf("invalid minute in %q", s)}
		}
	case len(raw) == 3 || len(raw) == 4:
		n, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return 0, &ValidationError{Field: "time", Reason: fmt.Sprintf("invalid time %q", s)}
		}
		hour, minute = n/100, n%100
	default:
		if hour, err = strconv.Atoi(raw); err != nil {
			return 0, &ValidationError{Field: "time", Reason: fmt.Sprintf("invalid time %q", s)}
		}
	}

	switch meridiem {
	case "am":
		if hour < 1 || hour > 12 {
			return 0, &ValidationError{Field: "time", Reason: fmt.Sprintf("invalid 12-hour time %q", s)}
		}
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour < 1 || hour > 12 {
			return 0, &ValidationError{Field: "time", Reason: fmt.Sprintf("invalid 12-hour time %q", s)}
		}
		if hour != 12 {
			hour += 12
		}
	}

	if minute < 0 || minute > 59 || hour < 0 || hour > 24 || (hour == 24 && minute != 0) {
		return 0, &ValidationError{Field: "time", Reason: fmt.Sprintf("time out of range %q", s)}
	}
	return NewClock(hour, minute), nil
}
