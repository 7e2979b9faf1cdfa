package dispatch

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"weekly-scheduler/internal/model"
	"weekly-scheduler/pkg/datemath"
)

// DefaultEventMinutes is the length of an event given only a start time.
const DefaultEventMinutes = 60

// Resolver turns the raw fields of an Input into positions in the week.
type Resolver struct {
	dates          *datemath.Parser
	defaultMinutes int
}

func NewResolver(dates *datemath.Parser, defaultMinutes int) *Resolver {
	if defaultMinutes <= 0 {
		defaultMinutes = DefaultEventMinutes
	}
	return &Resolver{dates: dates, defaultMinutes: defaultMinutes}
}

// Location is the timezone day expressions are resolved in.
func (r *Resolver) Location() *time.Location { return r.dates.Location() }

// Day resolves expr against anchor. Days outside the week of anchor are rejected.
func (r *Resolver) Day(expr string, anchor time.Time) (model.Weekday, error) {
	date, err := r.dates.Parse(expr, anchor)
	if err != nil {
		if errors.Is(err, datemath.ErrUnknownExpression) {
			return "", &model.ValidationError{Field: FieldDay, Reason: fmt.Sprintf("I don't know which day %q is", expr)}
		}
		return "", err
	}
	start := r.dates.StartOfWeek(anchor)
	if date.Before(start) || !date.Before(start.AddDate(0, 0, 7)) {
		return "", &model.ValidationError{Field: FieldDay, Reason: "only the current week can be scheduled"}
	}
	return model.WeekdayOf(date), nil
}

// When is a requested time. End is set only when the command named one.
type When struct {
	Start  model.Clock
	End    model.Clock
	HasEnd bool
}

// Range returns the requested range, lasting minutes when no end was named.
func (w When) Range(minutes int) (model.TimeRange, error) {
	r := model.TimeRange{Start: w.Start, End: w.End}
	if !w.HasEnd {
		r.End = w.Start.Add(minutes)
	}
	return r, r.Validate()
}

// When parses "2pm", "14:30" or a range such as "14:00-15:00".
func (r *Resolver) When(expr string) (When, error) {
	if isRange(expr) {
		tr, err := model.ParseTimeRange(expr)
		if err != nil {
			return When{}, err
		}
		return When{Start: tr.Start, End: tr.End, HasEnd: true}, nil
	}
	c, err := model.ParseClock(expr)
	if err != nil {
		return When{}, err
	}
	return When{Start: c}, nil
}

// DefaultMinutes is the length used when neither an end nor a duration is known.
func (r *Resolver) DefaultMinutes() int { return r.defaultMinutes }

func isRange(expr string) bool {
	for _, sep := range []string{"-", "–", " to "} {
		if strings.Contains(expr, sep) {
			return true
		}
	}
	return false
}
