package usecase

import (
	"errors"
	"fmt"
	"strings"

	"weekly-scheduler/internal/compose"
	"weekly-scheduler/internal/dispatch"
	"weekly-scheduler/internal/model"
)

var errNoMatch = errors.New("no matching event")

type match struct {
	day model.Weekday
	ev  model.Event
}

// findEvents matches name against the events of day, or of the whole week
// when day is empty. Exact matches, ignoring case and leading articles, win
// over partial ones.
func findEvents(w *model.WeekSchedule, day model.Weekday, name string, at *model.Clock) []match {
	target := normalizeName(name)
	if target == "" {
		return nil
	}
	var exact, partial []match
	for _, d := range w.Days {
		if day != "" && d.Name != day {
			continue
		}
		for _, e := range d.Events {
			if at != nil && e.Start != *at {
				continue
			}
			n := normalizeName(e.Name)
			switch {
			case n == target:
				exact = append(exact, match{day: d.Name, ev: e})
			case n != "" && (strings.Contains(n, target) || strings.Contains(target, n)):
				partial = append(partial, match{day: d.Name, ev: e})
			}
		}
	}
	if len(exact) > 0 {
		return exact
	}
	return partial
}

// findOne returns the single event named by the command. Several matches are
// ambiguous unless both day and time were given.
func findOne(w *model.WeekSchedule, day model.Weekday, name string, at *model.Clock) (match, error) {
	matches := findEvents(w, day, name, at)
	switch {
	case len(matches) == 0:
		return match{}, errNoMatch
	case len(matches) == 1, day != "" && at != nil:
		return matches[0], nil
	}
	amb := &dispatch.AmbiguousInputError{Target: name}
	for _, m := range matches {
		amb.Candidates = append(amb.Candidates, compose.Candidate{Day: m.day, Event: compose.NewEventView(m.ev)})
	}
	return match{}, amb
}

// ambiguity asks the user to pick one of the candidates by the given field.
func ambiguity(amb *dispatch.AmbiguousInputError, field string) compose.Outcome {
	opts := make([]string, len(amb.Candidates))
	for i, c := range amb.Candidates {
		start, _ := model.ParseClock(c.Event.Start)
		opts[i] = fmt.Sprintf("%s at %s", c.Day.Title(), compose.Spoken(start))
	}
	q := fmt.Sprintf("I found %d events called '%s': %s. Which one did you mean?",
		len(amb.Candidates), amb.Target, strings.Join(opts, ", "))
	return compose.Outcome{
		Kind:          compose.KindClarification,
		Question:      q,
		MissingFields: []string{field},
		Candidates:    amb.Candidates,
	}
}

var articles = []string{"the ", "my ", "a ", "an "}

func normalizeName(s string) string {
	s = strings.Join(strings.Fields(strings.ToLower(s)), " ")
	for _, a := range articles {
		if strings.HasPrefix(s, a) {
			return strings.TrimPrefix(s, a)
		}
	}
	return s
}
