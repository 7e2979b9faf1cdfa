package model

import (
	"fmt"
	"strings"
	"time"
)

// Weekday names one of the seven day slots of a week.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays lists the days in week order, Monday first.
var Weekdays = [7]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Index returns the position of d in Weekdays, or -1.
func (d Weekday) Index() int {
	for i, w := range Weekdays {
		if w == d {
			return i
		}
	}
	return -1
}

func (d Weekday) Valid() bool { return d.Index() >= 0 }

// Title returns the display name, e.g. "Monday".
func (d Weekday) Title() string {
	if d == "" {
		return ""
	}
	return strings.ToUpper(string(d[:1])) + string(d[1:])
}

// WeekdayOf maps a time to its day slot.
func WeekdayOf(t time.Time) Weekday {
	return Weekdays[(int(t.Weekday())+6)%7]
}

// ParseWeekday accepts full and three-letter names in any case.
func ParseWeekday(s string) (Weekday, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, d := range Weekdays {
		if v == string(d) || (len(v) >= 3 && strings.HasPrefix(string(d), v)) {
			return d, nil
		}
	}
	return "", &ValidationError{Field: "day", Reason: fmt.Sprintf("unknown day %q", s)}
}

// WeekStartOf returns midnight of the Monday on or before t, in t's location.
func WeekStartOf(t time.Time) time.Time {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return midnight.AddDate(0, 0, -WeekdayOf(t).Index())
}

// DateOf returns the calendar date of day d in the week anchored at weekStart.
func DateOf(weekStart time.Time, d Weekday) time.Time {
	return weekStart.AddDate(0, 0, d.Index())
}
