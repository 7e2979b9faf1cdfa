package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"weekly-scheduler/internal/model"
)

func TestDecide(t *testing.T) {
	remote := RemoteEvent{Ref: "r1", Name: "study", Day: model.Monday, Start: model.NewClock(10, 0), End: model.NewClock(11, 0), Kind: model.KindSoft}
	base := remote.Slot()
	moved := remote
	moved.Start, moved.End = model.NewClock(13, 0), model.NewClock(14, 0)
	gone := RemoteEvent{Ref: "r1", Deleted: true}

	synced := &Local{Day: model.Monday, Event: model.Event{ID: "e1", Name: "study", Start: remote.Start, End: remote.End, ExternalRef: "r1"}}
	edited := &Local{Day: model.Tuesday, Event: synced.Event}
	unlinked := &Local{Day: model.Monday, Event: model.Event{ID: "e1", Name: "study", Start: remote.Start, End: remote.End}}

	tcs := map[string]struct {
		base       *model.BaseEntry
		local      *Local
		remote     RemoteEvent
		tombstoned bool
		want       Action
	}{
		"new remote event":             {remote: remote, want: ActionInsert},
		"unchanged":                    {base: &base, local: synced, remote: remote, want: ActionSkip},
		"local edit waits for push":    {base: &base, local: edited, remote: remote, want: ActionSkip},
		"remote move wins":             {base: &base, local: synced, remote: moved, want: ActionAcceptRemote},
		"remote move wins over edit":   {base: &base, local: edited, remote: moved, want: ActionAcceptRemote},
		"both sides agree":             {base: &base, local: &Local{Day: model.Monday, Event: model.Event{Name: "study", Start: moved.Start, End: moved.End}}, remote: moved, want: ActionRebase},
		"unacknowledged push":          {local: unlinked, remote: remote, want: ActionRebase},
		"remote deleted":               {base: &base, local: synced, remote: gone, want: ActionRemove},
		"deleted on both sides":        {base: &base, remote: gone, want: ActionForget},
		"deleted and never seen":       {remote: gone, want: ActionSkip},
		"queued for remote deletion":   {base: &base, remote: remote, tombstoned: true, want: ActionSkip},
		"locally removed remote event": {base: &base, remote: remote, want: ActionSkip},
		"locally removed, then moved":  {base: &base, remote: moved, want: ActionInsert},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, Decide(tc.base, tc.local, tc.remote, tc.tombstoned))
		})
	}
}

func TestWindowLocate(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata not available")
	}
	w := NewWindow(time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), berlin)

	tcs := map[string]struct {
		start, end time.Time
		day        model.Weekday
		from, to   model.Clock
		ok         bool
	}{
		"converted to the week zone": {
			start: time.Date(2024, 5, 8, 12, 0, 0, 0, time.UTC),
			end:   time.Date(2024, 5, 8, 13, 30, 0, 0, time.UTC),
			day:   model.Wednesday, from: model.NewClock(14, 0), to: model.NewClock(15, 30), ok: true,
		},
		"ends at midnight": {
			start: time.Date(2024, 5, 12, 22, 0, 0, 0, berlin),
			end:   time.Date(2024, 5, 13, 0, 0, 0, 0, berlin),
			day:   model.Sunday, from: model.NewClock(22, 0), to: model.EndOfDay, ok: true,
		},
		"spans two days": {
			start: time.Date(2024, 5, 7, 23, 0, 0, 0, berlin),
			end:   time.Date(2024, 5, 8, 1, 0, 0, 0, berlin),
		},
		"next week": {
			start: time.Date(2024, 5, 13, 9, 0, 0, 0, berlin),
			end:   time.Date(2024, 5, 13, 10, 0, 0, 0, berlin),
		},
		"empty": {
			start: time.Date(2024, 5, 7, 9, 0, 0, 0, berlin),
			end:   time.Date(2024, 5, 7, 9, 0, 0, 0, berlin),
		},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			d, from, to, ok := w.Locate(tc.start, tc.end)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.day, d)
				assert.Equal(t, tc.from, from)
				assert.Equal(t, tc.to, to)
			}
		})
	}
	assert.True(t, w.Time(model.Wednesday, model.NewClock(14, 0)).Equal(time.Date(2024, 5, 8, 12, 0, 0, 0, time.UTC)))
}

func TestOwnedBy(t *testing.T) {
	feed := FeedRef("holidays", "uid-1")
	assert.True(t, OwnedBy("gcal", true, "abc123"))
	assert.False(t, OwnedBy("gcal", true, feed))
	assert.True(t, OwnedBy("holidays", false, feed))
	assert.False(t, OwnedBy("holiday", false, feed))
	assert.False(t, OwnedBy("holidays", false, "abc123"))
}
