// Package datemath resolves day expressions such as "tomorrow" or "next friday"
// against a reference time supplied by the client.
package datemath

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrUnknownExpression is returned for input that names no day.
var ErrUnknownExpression = errors.New("unknown day expression")

var inDurationRe = regexp.MustCompile(`^in (\d+) (day|days|week|weeks)$`)

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"mon":       time.Monday,
	"tuesday":   time.Tuesday,
	"tue":       time.Tuesday,
	"tues":      time.Tuesday,
	"wednesday": time.Wednesday,
	"wed":       time.Wednesday,
	"thursday":  time.Thursday,
	"thu":       time.Thursday,
	"thurs":     time.Thursday,
	"friday":    time.Friday,
	"fri":       time.Friday,
	"saturday":  time.Saturday,
	"sat":       time.Saturday,
	"sunday":    time.Sunday,
	"sun":       time.Sunday,
}

// Parser converts day expressions to calendar dates in one location.
type Parser struct {
	location *time.Location
}

// NewParser creates a parser for the given IANA timezone, e.g. "Europe/Berlin".
func NewParser(timezone string) (*Parser, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return &Parser{location: loc}, nil
}

func (p *Parser) Location() *time.Location { return p.location }

// Parse returns midnight of the day named by expr, relative to base.
//
// A bare weekday ("friday", "this friday") means that day of base's
// Monday-anchored week. "next friday" is the first Friday strictly after base.
func (p *Parser) Parse(expr string, base time.Time) (time.Time, error) {
	expr = strings.Join(strings.Fields(strings.ToLower(expr)), " ")
	base = base.In(p.location)

	switch expr {
	case "today", "tonight":
		return p.StartOfDay(base), nil
	case "tomorrow":
		return p.StartOfDay(base.AddDate(0, 0, 1)), nil
	case "yesterday":
		return p.StartOfDay(base.AddDate(0, 0, -1)), nil
	}

	if strings.HasPrefix(expr, "in ") {
		return p.parseInDuration(expr, base)
	}
	if strings.HasPrefix(expr, "next ") {
		return p.parseNextWeekday(strings.TrimPrefix(expr, "next "), base)
	}

	name := strings.TrimPrefix(expr, "this ")
	if wd, ok := weekdays[name]; ok {
		offset := (int(wd) + 6) % 7
		return p.StartOfWeek(base).AddDate(0, 0, offset), nil
	}

	return base, fmt.Errorf("%w: %q", ErrUnknownExpression, expr)
}

// parseInDuration handles "in 3 days" and "in 1 week".
func (p *Parser) parseInDuration(expr string, base time.Time) (time.Time, error) {
	m := inDurationRe.FindStringSubmatch(expr)
	if len(m) != 3 {
		return base, fmt.Errorf("%w: %q", ErrUnknownExpression, expr)
	}
	n, _ := strconv.Atoi(m[1])
	if strings.HasPrefix(m[2], "week") {
		n *= 7
	}
	return p.StartOfDay(base.AddDate(0, 0, n)), nil
}

func (p *Parser) parseNextWeekday(name string, base time.Time) (time.Time, error) {
	target, ok := weekdays[name]
	if !ok {
		return base, fmt.Errorf("%w: unknown weekday %q", ErrUnknownExpression, name)
	}
	until := int(target - base.Weekday())
	if until <= 0 {
		until += 7
	}
	return p.StartOfDay(base.AddDate(0, 0, until)), nil
}

// StartOfDay returns midnight of t's date in the parser's location.
func (p *Parser) StartOfDay(t time.Time) time.Time {
	t = t.In(p.location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, p.location)
}

// StartOfWeek returns midnight of the Monday on or before t.
func (p *Parser) StartOfWeek(t time.Time) time.Time {
	d := p.StartOfDay(t)
	return d.AddDate(0, 0, -((int(d.Weekday()) + 6) % 7))
}

// EndOfDay returns 23:59:59 of the given start-of-day time.
func (p *Parser) EndOfDay(startOfDay time.Time) time.Time {
	return startOfDay.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
}
