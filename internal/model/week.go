package model

import (
	"time"
)

// BaseEntry is the remote state of a synchronized event as of the last agreed sync.
type BaseEntry struct {
	Day   Weekday   `json:"day" yaml:"day"`
	Name  string    `json:"name" yaml:"name"`
	Start Clock     `json:"start" yaml:"start"`
	End   Clock     `json:"end" yaml:"end"`
	Kind  EventKind `json:"kind" yaml:"kind"`
}

// WeekSchedule is the canonical schedule of one week.
type WeekSchedule struct {
	WeekStart    time.Time `json:"week_start" yaml:"week_start"`
	LastModified time.Time `json:"last_modified" yaml:"last_modified"`
	Days         []Day     `json:"days" yaml:"days"`
	Tasks        []Task    `json:"tasks,omitempty" yaml:"tasks,omitempty"`

	// Tombstones hold external refs whose remote copies must be deleted.
	Tombstones []string `json:"tombstones,omitempty" yaml:"tombstones,omitempty"`
	// SyncBase maps external refs to their last agreed remote state.
	SyncBase map[string]BaseEntry `json:"sync_base,omitempty" yaml:"sync_base,omitempty"`
	// Cursors hold the sync watermark per remote source.
	Cursors map[string]string `json:"cursors,omitempty" yaml:"cursors,omitempty"`
}

// NewWeek returns an empty schedule anchored at the Monday of weekStart.
func NewWeek(weekStart, now time.Time) *WeekSchedule {
	w := &WeekSchedule{
		WeekStart:    WeekStartOf(weekStart),
		LastModified: now,
		SyncBase:     map[string]BaseEntry{},
		Cursors:      map[string]string{},
	}
	w.Days = make([]Day, len(Weekdays))
	for i, d := range Weekdays {
		w.Days[i] = Day{Name: d, Events: []Event{}, LastModified: now}
	}
	return w
}

// Day returns the slot for d. d must be valid.
func (w *WeekSchedule) Day(d Weekday) *Day {
	return &w.Days[d.Index()]
}

// TotalEvents counts events across all days.
func (w WeekSchedule) TotalEvents() int {
	n := 0
	for _, d := range w.Days {
		n += len(d.Events)
	}
	return n
}

// FindEvent locates an event by ID.
func (w WeekSchedule) FindEvent(id string) (Weekday, Event, bool) {
	for _, d := range w.Days {
		if i := d.Index(id); i >= 0 {
			return d.Name, d.Events[i], true
		}
	}
	return "", Event{}, false
}

// FindByRef locates an event by external reference.
func (w WeekSchedule) FindByRef(ref string) (Weekday, Event, bool) {
	if ref == "" {
		return "", Event{}, false
	}
	for _, d := range w.Days {
		for _, e := range d.Events {
			if e.ExternalRef == ref {
				return d.Name, e, true
			}
		}
	}
	return "", Event{}, false
}

// Task returns the task with id.
func (w WeekSchedule) Task(id string) (Task, bool) {
	for _, t := range w.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// AllocatedMinutes sums the study blocks of a task.
func (w WeekSchedule) AllocatedMinutes(taskID string) int {
	total := 0
	for _, d := range w.Days {
		for _, e := range d.Events {
			if e.TaskID == taskID && e.Kind == KindSoft {
				total += e.Minutes()
			}
		}
	}
	return total
}

// RemainingMinutes is the task duration not yet covered by study blocks.
func (w WeekSchedule) RemainingMinutes(t Task) int {
	rem := t.EstimatedDurationMinutes - w.AllocatedMinutes(t.ID)
	if rem < 0 {
		return 0
	}
	return rem
}

// Clone returns a deep copy.
func (w WeekSchedule) Clone() *WeekSchedule {
	c := w
	c.Days = make([]Day, len(w.Days))
	for i, d := range w.Days {
		c.Days[i] = d.Clone()
	}
	c.Tasks = append([]Task(nil), w.Tasks...)
	c.Tombstones = append([]string(nil), w.Tombstones...)
	c.SyncBase = make(map[string]BaseEntry, len(w.SyncBase))
	for k, v := range w.SyncBase {
		c.SyncBase[k] = v
	}
	c.Cursors = make(map[string]string, len(w.Cursors))
	for k, v := range w.Cursors {
		c.Cursors[k] = v
	}
	return &c
}
