// Package conflict reports overlaps between a candidate event and the fixed events of a day.
package conflict

import "weekly-scheduler/internal/model"

// Detect returns the first fixed event of day, in start order, whose interval
// intersects candidate. Soft events never block. An event with the candidate's
// own ID is skipped so that moves can be checked in place.
func Detect(day model.Day, candidate model.Event) (model.Event, bool) {
	r := candidate.Range()
	for _, e := range day.Events {
		if !e.IsFixed() || (candidate.ID != "" && e.ID == candidate.ID) {
			continue
		}
		if e.Range().Overlaps(r) {
			return e, true
		}
	}
	return model.Event{}, false
}

// DetectAll returns every fixed event of day overlapping candidate.
func DetectAll(day model.Day, candidate model.Event) []model.Event {
	var out []model.Event
	r := candidate.Range()
	for _, e := range day.Events {
		if !e.IsFixed() || (candidate.ID != "" && e.ID == candidate.ID) {
			continue
		}
		if e.Range().Overlaps(r) {
			out = append(out, e)
		}
	}
	return out
}

// OverlappingSoft returns the soft events of day overlapping r.
func OverlappingSoft(day model.Day, r model.TimeRange) []model.Event {
	var out []model.Event
	for _, e := range day.Events {
		if e.Kind == model.KindSoft && e.Range().Overlaps(r) {
			out = append(out, e)
		}
	}
	return out
}
