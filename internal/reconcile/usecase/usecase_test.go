package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekly-scheduler/internal/model"
	"weekly-scheduler/internal/reconcile"
	"weekly-scheduler/internal/slot"
	"weekly-scheduler/internal/week"
	"weekly-scheduler/internal/week/repository/memory"
	"weekly-scheduler/pkg/log"
)

// Monday 07:00 of the week starting 2024-05-06.
var monday = time.Date(2024, 5, 6, 7, 0, 0, 0, time.UTC)

// fakeCalendar is an in-memory primary calendar. Every pull is a full listing.
type fakeCalendar struct {
	mu        sync.Mutex
	events    map[string]reconcile.RemoteEvent
	seq       int
	version   int
	pullErr   error
	pushErr   error
	expireAll bool
	cursors   []string
}

func newFakeCalendar() *fakeCalendar {
	return &fakeCalendar{events: map[string]reconcile.RemoteEvent{}}
}

func (c *fakeCalendar) Name() string { return "gcal" }

func (c *fakeCalendar) PullChangedSince(_ context.Context, _ reconcile.Window, cursor string) (reconcile.Batch, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cursors = append(c.cursors, cursor)
	if c.pullErr != nil {
		return reconcile.Batch{}, c.pullErr
	}
	if c.expireAll && cursor != "" {
		return reconcile.Batch{}, reconcile.ErrCursorExpired
	}
	b := reconcile.Batch{Full: true, Cursor: fmt.Sprintf("v%d", c.version)}
	for _, ev := range c.events {
		b.Events = append(b.Events, ev)
	}
	sort.Slice(b.Events, func(i, j int) bool { return b.Events[i].Ref < b.Events[j].Ref })
	return b, nil
}

func (c *fakeCalendar) CreateEvent(_ context.Context, _ reconcile.Window, d model.Weekday, ev model.Event) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pushErr != nil {
		return "", c.pushErr
	}
	c.seq++
	c.version++
	ref := fmt.Sprintf("r%d", c.seq)
	c.events[ref] = remoteOf(ref, d, ev)
	return ref, nil
}

func (c *fakeCalendar) UpdateEvent(_ context.Context, ref string, _ reconcile.Window, d model.Weekday, ev model.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pushErr != nil {
		return c.pushErr
	}
	if _, ok := c.events[ref]; !ok {
		return reconcile.ErrRemoteNotFound
	}
	c.version++
	c.events[ref] = remoteOf(ref, d, ev)
	return nil
}

func (c *fakeCalendar) DeleteEvent(_ context.Context, ref string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pushErr != nil {
		return c.pushErr
	}
	if _, ok := c.events[ref]; !ok {
		return reconcile.ErrRemoteNotFound
	}
	c.version++
	delete(c.events, ref)
	return nil
}

// put changes the calendar as a user of the remote side would.
func (c *fakeCalendar) put(ev reconcile.RemoteEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
	c.events[ev.Ref] = ev
}

func (c *fakeCalendar) remove(ref string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
	delete(c.events, ref)
}

func (c *fakeCalendar) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func (c *fakeCalendar) get(ref string) reconcile.RemoteEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events[ref]
}

func remoteOf(ref string, d model.Weekday, ev model.Event) reconcile.RemoteEvent {
	return reconcile.RemoteEvent{
		Ref: ref, Name: ev.Name, Day: d, Start: ev.Start, End: ev.End,
		Kind: ev.Kind, LocalID: ev.ID, TaskID: ev.TaskID,
	}
}

type fakeFeed struct {
	name   string
	events []reconcile.RemoteEvent
	err    error
}

func (f *fakeFeed) Name() string { return f.name }

func (f *fakeFeed) Pull(_ context.Context, _ reconcile.Window, cursor string) (reconcile.Batch, error) {
	if f.err != nil {
		return reconcile.Batch{}, f.err
	}
	if cursor == "h1" {
		return reconcile.Batch{Cursor: cursor, Unchanged: true}, nil
	}
	return reconcile.Batch{Events: f.events, Full: true, Cursor: "h1"}, nil
}

type fixture struct {
	uc    reconcile.UseCase
	store *week.Manager
	cal   *fakeCalendar
}

func newFixture(t *testing.T, feeds ...reconcile.Feed) *fixture {
	t.Helper()
	now := func() time.Time { return monday }
	store := week.NewManager(memory.New(), week.Options{LockTimeout: 20 * time.Millisecond}, now, log.NewNop())
	greedy := slot.NewGreedy(slot.Options{
		WorkdayStart:    model.NewClock(8, 0),
		WorkdayEnd:      model.NewClock(21, 0),
		MinBlockMinutes: 30,
	})
	cal := newFakeCalendar()
	uc := New(log.NewNop(), Config{
		Store:     store,
		Remote:    cal,
		Feeds:     feeds,
		Allocator: slot.NewAllocator(greedy, 15),
		Now:       now,
	})
	return &fixture{uc: uc, store: store, cal: cal}
}

func (f *fixture) handle(t *testing.T) *week.Handle {
	t.Helper()
	h, err := f.store.Current(context.Background())
	require.NoError(t, err)
	return h
}

func (f *fixture) run(t *testing.T) reconcile.Report {
	t.Helper()
	rep, err := f.uc.Run(context.Background())
	require.NoError(t, err)
	return rep
}

func (f *fixture) update(t *testing.T, fn func(tx *week.Tx) error) {
	t.Helper()
	_, err := f.handle(t).Update(context.Background(), fn)
	require.NoError(t, err)
}

func at(h, m int) model.Clock { return model.NewClock(h, m) }

func TestPullIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.cal.put(reconcile.RemoteEvent{Ref: "g1", Name: "standup", Day: model.Monday, Start: at(9, 0), End: at(9, 30), Kind: model.KindFixed})

	rep := f.run(t)
	assert.Equal(t, 1, rep.Inserted)
	assert.True(t, rep.CursorAdvanced)

	first := f.handle(t).Snapshot()
	require.Len(t, first.Day(model.Monday).Events, 1)
	ev := first.Day(model.Monday).Events[0]
	assert.Equal(t, model.OriginRemote, ev.Origin)
	assert.Equal(t, model.KindFixed, ev.Kind)
	assert.Equal(t, "g1", ev.ExternalRef)

	rep = f.run(t)
	assert.Zero(t, rep.Inserted+rep.Updated+rep.Removed+rep.Pushed)
	second := f.handle(t).Snapshot()
	if diff := cmp.Diff(first.Days, second.Days); diff != "" {
		t.Errorf("second pull changed the week (-first +second):\n%s", diff)
	}
}

func TestPushRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.update(t, func(tx *week.Tx) error {
		_, err := tx.AddEvent(model.Tuesday, model.Event{Name: "study", Start: at(10, 0), End: at(11, 0), Kind: model.KindSoft})
		return err
	})

	rep := f.run(t)
	assert.Equal(t, 1, rep.Pushed)
	require.Equal(t, 1, f.cal.len())

	ev := f.handle(t).Day(model.Tuesday).Events[0]
	assert.Equal(t, "r1", ev.ExternalRef)
	assert.False(t, ev.Dirty)

	rep = f.run(t)
	assert.Zero(t, rep.Pushed+rep.Inserted)
	assert.Equal(t, 1, f.cal.len())
	day := f.handle(t).Day(model.Tuesday)
	require.Len(t, day.Events, 1)
	assert.True(t, day.Events[0].SameSlot(ev))
	assert.Equal(t, ev.ID, day.Events[0].ID)
}

func TestUnacknowledgedPushIsLinked(t *testing.T) {
	f := newFixture(t)
	var local model.Event
	f.update(t, func(tx *week.Tx) error {
		var err error
		local, err = tx.AddEvent(model.Tuesday, model.Event{Name: "study", Start: at(10, 0), End: at(11, 0), Kind: model.KindSoft})
		return err
	})
	// The create went through but its reference was never stored.
	f.cal.put(reconcile.RemoteEvent{Ref: "g9", Name: "study", Day: model.Tuesday, Start: at(10, 0), End: at(11, 0), Kind: model.KindSoft, LocalID: local.ID})

	rep := f.run(t)
	assert.Zero(t, rep.Pushed)
	assert.Equal(t, 1, f.cal.len())
	day := f.handle(t).Day(model.Tuesday)
	require.Len(t, day.Events, 1)
	assert.Equal(t, "g9", day.Events[0].ExternalRef)
	assert.False(t, day.Events[0].Dirty)
}

func TestRemoteMoveAndDeleteOfSoftEvent(t *testing.T) {
	f := newFixture(t)
	f.update(t, func(tx *week.Tx) error {
		_, err := tx.AddEvent(model.Tuesday, model.Event{Name: "reading", Start: at(10, 0), End: at(11, 0), Kind: model.KindSoft})
		return err
	})
	f.run(t)

	moved := f.cal.get("r1")
	moved.Day, moved.Start, moved.End = model.Wednesday, at(13, 0), at(14, 0)
	f.cal.put(moved)

	rep := f.run(t)
	assert.Equal(t, 1, rep.Updated)
	assert.Zero(t, rep.Pushed)
	w := f.handle(t).Snapshot()
	assert.Empty(t, w.Day(model.Tuesday).Events)
	require.Len(t, w.Day(model.Wednesday).Events, 1)
	assert.Equal(t, at(13, 0), w.Day(model.Wednesday).Events[0].Start)

	f.cal.remove("r1")
	rep = f.run(t)
	assert.Equal(t, 1, rep.Removed)
	assert.Zero(t, f.handle(t).Snapshot().TotalEvents())
	assert.Zero(t, f.cal.len())
}

func TestRemoteDeleteFreesTaskMinutes(t *testing.T) {
	f := newFixture(t)
	var task model.Task
	f.update(t, func(tx *week.Tx) error {
		task = tx.AddTask(model.Task{Title: "essay", Day: model.Thursday, DueTime: at(21, 0), EstimatedDurationMinutes: 60})
		_, err := tx.AddEvent(model.Thursday, model.Event{Name: "essay", Start: at(9, 0), End: at(10, 0), Kind: model.KindSoft, TaskID: task.ID})
		return err
	})
	f.run(t)
	require.Equal(t, 1, f.cal.len())

	// The user deletes the block remotely. The minutes go back to the task and
	// are placed again.
	f.cal.remove("r1")
	rep := f.run(t)
	assert.Equal(t, 1, rep.Removed)
	assert.Equal(t, 60, rep.Allocated)
	assert.Equal(t, 1, rep.Pushed)

	w := f.handle(t).Snapshot()
	assert.Zero(t, w.RemainingMinutes(task))
	require.Len(t, w.Day(model.Thursday).Events, 1)
	assert.Equal(t, "r2", w.Day(model.Thursday).Events[0].ExternalRef)
}

func TestRemoteStretchOfStudyBlockIsClamped(t *testing.T) {
	f := newFixture(t)
	var task model.Task
	f.update(t, func(tx *week.Tx) error {
		task = tx.AddTask(model.Task{Title: "essay", Day: model.Thursday, DueTime: at(21, 0), EstimatedDurationMinutes: 60})
		_, err := tx.AddEvent(model.Thursday, model.Event{Name: "essay", Start: at(9, 0), End: at(10, 0), Kind: model.KindSoft, TaskID: task.ID})
		return err
	})
	f.run(t)

	stretched := f.cal.get("r1")
	stretched.Start, stretched.End = at(13, 0), at(15, 0)
	f.cal.put(stretched)

	rep := f.run(t)
	assert.Equal(t, 1, rep.Updated)
	assert.Equal(t, 1, rep.Pushed)

	w := f.handle(t).Snapshot()
	assert.Equal(t, 60, w.AllocatedMinutes(task.ID))
	require.Len(t, w.Day(model.Thursday).Events, 1)
	assert.Equal(t, model.TimeRange{Start: at(13, 0), End: at(14, 0)}, w.Day(model.Thursday).Events[0].Range())
	assert.Equal(t, at(14, 0), f.cal.get("r1").End)

	rep = f.run(t)
	assert.Zero(t, rep.Updated)
	assert.Zero(t, rep.Pushed)
}

func TestRemoteFixedEvictsSoftBlock(t *testing.T) {
	f := newFixture(t)
	var task model.Task
	f.update(t, func(tx *week.Tx) error {
		task = tx.AddTask(model.Task{Title: "essay", Day: model.Monday, DueTime: at(21, 0), EstimatedDurationMinutes: 60})
		_, err := tx.AddEvent(model.Monday, model.Event{Name: "essay", Start: at(10, 0), End: at(11, 0), Kind: model.KindSoft, TaskID: task.ID})
		return err
	})
	f.cal.put(reconcile.RemoteEvent{Ref: "g1", Name: "lecture", Day: model.Monday, Start: at(10, 0), End: at(11, 0), Kind: model.KindFixed})

	rep := f.run(t)
	assert.Equal(t, 1, rep.Inserted)
	assert.Equal(t, 60, rep.Allocated)

	day := f.handle(t).Day(model.Monday)
	require.Len(t, day.Events, 2)
	assert.Equal(t, "essay", day.Events[0].Name)
	assert.Equal(t, at(8, 0), day.Events[0].Start)
	assert.Equal(t, "lecture", day.Events[1].Name)
}

func TestLocalDeletePushesRemoteDelete(t *testing.T) {
	f := newFixture(t)
	f.update(t, func(tx *week.Tx) error {
		_, err := tx.AddEvent(model.Friday, model.Event{Name: "gym", Start: at(18, 0), End: at(19, 0), Kind: model.KindFixed})
		return err
	})
	f.run(t)
	require.Equal(t, 1, f.cal.len())

	f.update(t, func(tx *week.Tx) error {
		_, err := tx.DeleteEvent(model.Friday, "gym")
		return err
	})
	rep := f.run(t)
	assert.Equal(t, 1, rep.Deleted)
	assert.Zero(t, f.cal.len())
	w := f.handle(t).Snapshot()
	assert.Empty(t, w.Tombstones)
	assert.Empty(t, w.SyncBase)
}

func TestPushFailureKeepsCursor(t *testing.T) {
	f := newFixture(t)
	f.update(t, func(tx *week.Tx) error {
		_, err := tx.AddEvent(model.Tuesday, model.Event{Name: "study", Start: at(10, 0), End: at(11, 0), Kind: model.KindSoft})
		return err
	})
	f.cal.pushErr = errors.New("calendar unavailable")

	rep, err := f.uc.Run(context.Background())
	var se *reconcile.SyncError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, reconcile.PhasePush, se.Phase)
	assert.False(t, rep.CursorAdvanced)
	w := f.handle(t).Snapshot()
	assert.Empty(t, w.Cursors["gcal"])
	assert.True(t, w.Day(model.Tuesday).Events[0].Dirty)

	f.cal.pushErr = nil
	rep = f.run(t)
	assert.True(t, rep.CursorAdvanced)
	assert.Equal(t, 1, rep.Pushed)
	assert.Equal(t, "v0", f.handle(t).Snapshot().Cursors["gcal"])
}

func TestPullFailure(t *testing.T) {
	f := newFixture(t)
	f.cal.pullErr = errors.New("connection refused")

	_, err := f.uc.Run(context.Background())
	var se *reconcile.SyncError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, reconcile.PhasePull, se.Phase)
	assert.Equal(t, "gcal", se.Source)
	assert.Empty(t, f.handle(t).Snapshot().Cursors)
}

func TestExpiredCursorFallsBackToFullPull(t *testing.T) {
	f := newFixture(t)
	f.cal.put(reconcile.RemoteEvent{Ref: "g1", Name: "standup", Day: model.Monday, Start: at(9, 0), End: at(9, 30), Kind: model.KindFixed})
	f.run(t)

	f.cal.expireAll = true
	rep := f.run(t)
	assert.True(t, rep.CursorAdvanced)
	assert.Equal(t, []string{"", "v1", ""}, f.cal.cursors)
	assert.Len(t, f.handle(t).Day(model.Monday).Events, 1)
}

func TestFeeds(t *testing.T) {
	holidays := &fakeFeed{name: "holidays", events: []reconcile.RemoteEvent{
		{Ref: "uid-1", Name: "Team offsite", Day: model.Thursday, Start: at(9, 0), End: at(17, 0)},
	}}
	broken := &fakeFeed{name: "broken", err: errors.New("404 Not Found")}
	f := newFixture(t, holidays, broken)

	rep := f.run(t)
	assert.Equal(t, []string{"broken"}, rep.SkippedSources)
	assert.Equal(t, 1, rep.Inserted)
	assert.Zero(t, rep.Pushed)

	w := f.handle(t).Snapshot()
	require.Len(t, w.Day(model.Thursday).Events, 1)
	ev := w.Day(model.Thursday).Events[0]
	assert.Equal(t, reconcile.FeedRef("holidays", "uid-1"), ev.ExternalRef)
	assert.False(t, ev.OwnedLocally())
	assert.Equal(t, "h1", w.Cursors["holidays"])
	assert.Zero(t, f.cal.len())

	// An unchanged feed is not merged again. A changed one replaces its entries.
	rep = f.run(t)
	assert.Zero(t, rep.Inserted+rep.Removed)

	f.update(t, func(tx *week.Tx) error {
		tx.SetCursor("holidays", "")
		return nil
	})
	holidays.events = nil
	rep = f.run(t)
	assert.Equal(t, 1, rep.Removed)
	assert.Empty(t, f.handle(t).Day(model.Thursday).Events)
}

func TestRunRejectsConcurrentCycle(t *testing.T) {
	f := newFixture(t)
	impl := f.uc.(*implUseCase)
	impl.running.Lock()
	defer impl.running.Unlock()

	_, err := f.uc.Run(context.Background())
	assert.ErrorIs(t, err, reconcile.ErrInProgress)
}
