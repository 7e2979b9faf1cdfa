package week

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"weekly-scheduler/internal/conflict"
	"weekly-scheduler/internal/model"
)

// Tx is a mutation in progress on a private copy of the week. It is committed
// by Handle.Update only if the callback returns nil.
type Tx struct {
	w       *model.WeekSchedule
	now     time.Time
	changes model.ChangeSet
	dirty   bool
}

func newTx(w *model.WeekSchedule, now time.Time) *Tx {
	if w.SyncBase == nil {
		w.SyncBase = map[string]model.BaseEntry{}
	}
	if w.Cursors == nil {
		w.Cursors = map[string]string{}
	}
	return &Tx{w: w, now: now}
}

// Schedule exposes the working copy for reads. Callers must mutate it only
// through Tx methods.
func (tx *Tx) Schedule() *model.WeekSchedule { return tx.w }

// Now is the commit time of the transaction.
func (tx *Tx) Now() time.Time { return tx.now }

// Changes returns the events touched so far.
func (tx *Tx) Changes() model.ChangeSet { return tx.changes }

func (tx *Tx) GetDay(d model.Weekday) model.Day { return tx.w.Day(d).Clone() }

// AddEvent validates ev and inserts it in start order. A fixed event that
// overlaps another fixed event fails with *ConflictError and changes nothing.
// Soft events overlapping a newly added fixed event are evicted.
func (tx *Tx) AddEvent(d model.Weekday, ev model.Event) (model.Event, error) {
	if !d.Valid() {
		return model.Event{}, &model.ValidationError{Field: "day", Reason: "unknown day"}
	}
	if err := ev.Validate(); err != nil {
		return model.Event{}, err
	}
	day := tx.w.Day(d)
	if hit, ok := conflict.Detect(*day, ev); ok {
		return model.Event{}, &ConflictError{Day: d, Attempted: ev, Conflicting: hit}
	}

	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Origin == "" {
		ev.Origin = model.OriginLocal
	}
	if ev.Origin == model.OriginLocal {
		ev.Dirty = true
	}

	if ev.IsFixed() {
		tx.evictSoft(d, ev.Range())
	}
	day.Events = append(day.Events, ev)
	day.Sort()
	tx.changes.Added = append(tx.changes.Added, model.Change{Day: d, Event: ev})
	tx.touch(d)
	return ev, nil
}

// DeleteEvent removes the first event on d whose name matches, ignoring case.
func (tx *Tx) DeleteEvent(d model.Weekday, name string) (model.Event, error) {
	for _, e := range tx.w.Day(d).Events {
		if strings.EqualFold(strings.TrimSpace(e.Name), strings.TrimSpace(name)) {
			_, removed, _ := tx.remove(e.ID, true)
			return removed, nil
		}
	}
	return model.Event{}, ErrNotFound
}

// DeleteEventByID removes an event wherever it is.
func (tx *Tx) DeleteEventByID(id string) (model.Weekday, model.Event, error) {
	d, ev, ok := tx.remove(id, true)
	if !ok {
		return "", model.Event{}, ErrNotFound
	}
	return d, ev, nil
}

// MoveEvent gives an event a new day, range and optionally name. Remote-owned
// events cannot be moved. The new slot is checked against fixed events other
// than the event itself.
func (tx *Tx) MoveEvent(id string, d model.Weekday, r model.TimeRange, name string) (model.Event, error) {
	fromDay, prev, ok := tx.w.FindEvent(id)
	if !ok {
		return model.Event{}, ErrNotFound
	}
	if !prev.OwnedLocally() {
		return model.Event{}, ErrRemoteOwned
	}
	if !d.Valid() {
		return model.Event{}, &model.ValidationError{Field: "day", Reason: "unknown day"}
	}

	next := prev
	next.Start, next.End = r.Start, r.End
	if strings.TrimSpace(name) != "" {
		next.Name = name
	}
	next.Dirty = true
	if err := next.Validate(); err != nil {
		return model.Event{}, err
	}
	if hit, found := conflict.Detect(*tx.w.Day(d), next); found {
		return model.Event{}, &ConflictError{Day: d, Attempted: next, Conflicting: hit}
	}

	tx.detach(fromDay, id)
	if next.IsFixed() {
		tx.evictSoft(d, next.Range())
	}
	day := tx.w.Day(d)
	day.Events = append(day.Events, next)
	day.Sort()

	p := prev
	tx.changes.Modified = append(tx.changes.Modified, model.Change{Day: d, Event: next, Previous: &p, PreviousDay: fromDay})
	tx.touch(fromDay)
	tx.touch(d)
	return next, nil
}

// ClearDay removes every event of d and cancels the tasks scheduled on it.
func (tx *Tx) ClearDay(d model.Weekday) []model.Event {
	day := tx.w.Day(d)
	removed := append([]model.Event(nil), day.Events...)
	for _, e := range removed {
		tx.remove(e.ID, true)
	}
	for i := range tx.w.Tasks {
		if tx.w.Tasks[i].Day == d && tx.w.Tasks[i].Open() {
			tx.w.Tasks[i].Status = model.TaskCancelled
		}
	}
	tx.touch(d)
	return removed
}

// ClearWeek empties all seven days and drops every task. Sync metadata is kept
// so that removed remote copies are deleted on the next cycle.
func (tx *Tx) ClearWeek() []model.Event {
	var removed []model.Event
	for _, d := range model.Weekdays {
		removed = append(removed, tx.ClearDay(d)...)
	}
	tx.w.Tasks = nil
	tx.dirty = true
	tx.w.LastModified = tx.now
	return removed
}

// AddTask registers a task. Its study blocks are added separately.
func (tx *Tx) AddTask(t model.Task) model.Task {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = model.TaskPending
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = tx.now
	}
	tx.w.Tasks = append(tx.w.Tasks, t)
	tx.dirty = true
	tx.w.LastModified = tx.now
	return t
}

// SetTaskStatus updates a task. Completing or cancelling it removes its study blocks.
func (tx *Tx) SetTaskStatus(id string, status model.TaskStatus) ([]model.Event, error) {
	idx := -1
	for i, t := range tx.w.Tasks {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrTaskNotFound
	}
	tx.w.Tasks[idx].Status = status
	tx.dirty = true
	tx.w.LastModified = tx.now

	if tx.w.Tasks[idx].Open() {
		return nil, nil
	}
	var removed []model.Event
	for _, d := range tx.w.Days {
		for _, e := range d.Events {
			if e.TaskID == id && e.Kind == model.KindSoft {
				removed = append(removed, e)
			}
		}
	}
	for _, e := range removed {
		tx.remove(e.ID, true)
	}
	return removed, nil
}

// PutEvent inserts ev or replaces the event with the same ID, possibly on
// another day, without conflict checks. It is used to mirror remote state.
func (tx *Tx) PutEvent(d model.Weekday, ev model.Event) model.Event {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	fromDay, prev, exists := tx.w.FindEvent(ev.ID)
	if exists {
		tx.detach(fromDay, ev.ID)
		tx.touch(fromDay)
	}
	day := tx.w.Day(d)
	day.Events = append(day.Events, ev)
	day.Sort()
	tx.touch(d)

	if exists {
		p := prev
		tx.changes.Modified = append(tx.changes.Modified, model.Change{Day: d, Event: ev, Previous: &p, PreviousDay: fromDay})
	} else {
		tx.changes.Added = append(tx.changes.Added, model.Change{Day: d, Event: ev})
	}
	return ev
}

// RemoveEvent deletes an event. With tombstone set, a locally owned remote
// copy is queued for deletion.
func (tx *Tx) RemoveEvent(id string, tombstone bool) (model.Weekday, model.Event, bool) {
	return tx.remove(id, tombstone)
}

// EvictSoft removes soft events of d overlapping r.
func (tx *Tx) EvictSoft(d model.Weekday, r model.TimeRange) []model.Event {
	return tx.evictSoft(d, r)
}

// MarkSynced records the external reference of a pushed event. The base is
// the pushed state. Dirty stays set if the event changed while it was pushed.
func (tx *Tx) MarkSynced(id, ref string, pushedDay model.Weekday, pushed model.Event) bool {
	d, _, ok := tx.w.FindEvent(id)
	if !ok {
		return false
	}
	day := tx.w.Day(d)
	i := day.Index(id)
	day.Events[i].ExternalRef = ref
	if d == pushedDay && day.Events[i].SameSlot(pushed) {
		day.Events[i].Dirty = false
	}
	tx.w.SyncBase[ref] = BaseOf(pushedDay, pushed)
	tx.dirty = true
	return true
}

// Tombstone queues a remote deletion.
func (tx *Tx) Tombstone(ref string) {
	if ref == "" {
		return
	}
	for _, t := range tx.w.Tombstones {
		if t == ref {
			return
		}
	}
	tx.w.Tombstones = append(tx.w.Tombstones, ref)
	tx.dirty = true
}

// DropTombstone forgets a remote deletion once it was carried out.
func (tx *Tx) DropTombstone(ref string) {
	out := tx.w.Tombstones[:0]
	for _, t := range tx.w.Tombstones {
		if t != ref {
			out = append(out, t)
		}
	}
	tx.w.Tombstones = out
	delete(tx.w.SyncBase, ref)
	tx.dirty = true
}

func (tx *Tx) SetBase(ref string, entry model.BaseEntry) {
	tx.w.SyncBase[ref] = entry
	tx.dirty = true
}

func (tx *Tx) DropBase(ref string) {
	if _, ok := tx.w.SyncBase[ref]; ok {
		delete(tx.w.SyncBase, ref)
		tx.dirty = true
	}
}

func (tx *Tx) SetCursor(source, cursor string) {
	if tx.w.Cursors[source] == cursor {
		return
	}
	tx.w.Cursors[source] = cursor
	tx.dirty = true
}

// BaseOf captures the synchronized state of ev.
func BaseOf(d model.Weekday, ev model.Event) model.BaseEntry {
	return model.BaseEntry{Day: d, Name: ev.Name, Start: ev.Start, End: ev.End, Kind: ev.Kind}
}

func (tx *Tx) evictSoft(d model.Weekday, r model.TimeRange) []model.Event {
	evicted := conflict.OverlappingSoft(*tx.w.Day(d), r)
	for _, e := range evicted {
		tx.remove(e.ID, true)
	}
	return evicted
}

func (tx *Tx) remove(id string, tombstone bool) (model.Weekday, model.Event, bool) {
	d, ev, ok := tx.w.FindEvent(id)
	if !ok {
		return "", model.Event{}, false
	}
	tx.detach(d, id)
	if tombstone && ev.ExternalRef != "" && ev.OwnedLocally() {
		tx.Tombstone(ev.ExternalRef)
	}
	tx.changes.Deleted = append(tx.changes.Deleted, model.Change{Day: d, Event: ev})
	tx.touch(d)
	return d, ev, true
}

func (tx *Tx) detach(d model.Weekday, id string) {
	day := tx.w.Day(d)
	if i := day.Index(id); i >= 0 {
		day.Events = append(day.Events[:i], day.Events[i+1:]...)
	}
}

func (tx *Tx) touch(d model.Weekday) {
	tx.w.Day(d).LastModified = tx.now
	tx.w.LastModified = tx.now
	tx.dirty = true
}
