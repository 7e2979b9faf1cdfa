package model

import (
	"sort"
	"time"
)

// Day holds the events of one weekday ordered by start.
type Day struct {
	Name         Weekday   `json:"name" yaml:"name"`
	Events       []Event   `json:"events" yaml:"events"`
	LastModified time.Time `json:"last_modified" yaml:"last_modified"`
}

// Fixed returns the fixed events of the day.
func (d Day) Fixed() []Event {
	out := make([]Event, 0, len(d.Events))
	for _, e := range d.Events {
		if e.IsFixed() {
			out = append(out, e)
		}
	}
	return out
}

// Busy returns the ranges of the day's events. When fixedOnly is set soft events are skipped.
// Events whose ID is in skip are left out.
func (d Day) Busy(fixedOnly bool, skip ...string) []TimeRange {
	out := make([]TimeRange, 0, len(d.Events))
	for _, e := range d.Events {
		if fixedOnly && !e.IsFixed() {
			continue
		}
		if containsString(skip, e.ID) {
			continue
		}
		out = append(out, e.Range())
	}
	return out
}

// Index returns the position of the event with id, or -1.
func (d Day) Index(id string) int {
	for i, e := range d.Events {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (d Day) Clone() Day {
	c := d
	c.Events = append([]Event(nil), d.Events...)
	return c
}

// Sort orders events by start, then end, then name.
func (d *Day) Sort() {
	sort.SliceStable(d.Events, func(i, j int) bool {
		a, b := d.Events[i], d.Events[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End < b.End
		}
		return a.Name < b.Name
	})
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
