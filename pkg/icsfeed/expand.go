package icsfeed

import (
	"time"

	"github.com/teambition/rrule-go"
)

const maxOccurrencesPerEvent = 500

// Expand returns the occurrences intersecting [from, to), converted to loc.
// Series are expanded only inside the window. Overrides replace the instance
// they name. Events with an unreadable RRULE keep only their first instance.
func Expand(events []Event, from, to time.Time, loc *time.Location) []Occurrence {
	if loc == nil {
		loc = time.UTC
	}

	overrides := map[string][]Event{}
	var bases []Event
	for _, ev := range events {
		if ev.RecurrenceID != nil {
			overrides[ev.UID] = append(overrides[ev.UID], ev)
			continue
		}
		bases = append(bases, ev)
	}

	var out []Occurrence
	for _, ev := range bases {
		if ev.RRule == "" {
			if overlaps(ev.Start, ev.End, from, to) {
				out = append(out, occurrence(ev, ev.Start, ev.End, ev.UID, loc))
			}
			continue
		}
		out = append(out, expandSeries(ev, overrides[ev.UID], from, to, loc)...)
	}
	return out
}

func expandSeries(ev Event, overrides []Event, from, to time.Time, loc *time.Location) []Occurrence {
	dur := ev.End.Sub(ev.Start)

	r, err := rrule.StrToRRule(ev.RRule)
	if err != nil {
		if overlaps(ev.Start, ev.End, from, to) {
			return []Occurrence{occurrence(ev, ev.Start, ev.End, ev.UID, loc)}
		}
		return nil
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Widen by the duration so instances starting before the window but
	// running into it are kept.
	starts := set.Between(from.Add(-dur).In(ev.Start.Location()), to.In(ev.Start.Location()), true)
	if len(starts) > maxOccurrencesPerEvent {
		starts = starts[:maxOccurrencesPerEvent]
	}

	var out []Occurrence
	for _, s := range starts {
		key := ev.UID + "@" + s.UTC().Format("20060102T150405Z")
		start, end := s, s.Add(dur)
		inst := ev
		for _, o := range overrides {
			if o.RecurrenceID.Equal(s) {
				inst, start, end = o, o.Start, o.End
				break
			}
		}
		if overlaps(start, end, from, to) {
			out = append(out, occurrence(inst, start, end, key, loc))
		}
	}
	return out
}

func occurrence(ev Event, start, end time.Time, key string, loc *time.Location) Occurrence {
	return Occurrence{
		Key:     key,
		UID:     ev.UID,
		Summary: ev.Summary,
		Start:   start.In(loc),
		End:     end.In(loc),
		AllDay:  ev.AllDay,
	}
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
