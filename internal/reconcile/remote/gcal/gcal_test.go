package gcal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekly-scheduler/internal/model"
	"weekly-scheduler/internal/reconcile"
	"weekly-scheduler/pkg/gcalendar"
	"weekly-scheduler/pkg/log"
)

type fakeCalendar struct {
	list    *gcalendar.ListEventsResult
	listErr error
	err     error

	gotList   gcalendar.ListEventsRequest
	gotInput  gcalendar.EventInput
	gotID     string
	callCount int
}

func (f *fakeCalendar) ListEvents(_ context.Context, req gcalendar.ListEventsRequest) (*gcalendar.ListEventsResult, error) {
	f.callCount++
	f.gotList = req
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list, nil
}

func (f *fakeCalendar) CreateEvent(_ context.Context, in gcalendar.EventInput) (*gcalendar.Event, error) {
	f.callCount++
	f.gotInput = in
	if f.err != nil {
		return nil, f.err
	}
	return &gcalendar.Event{ID: "new-id", Summary: in.Summary}, nil
}

func (f *fakeCalendar) UpdateEvent(_ context.Context, id string, in gcalendar.EventInput) (*gcalendar.Event, error) {
	f.callCount++
	f.gotID, f.gotInput = id, in
	if f.err != nil {
		return nil, f.err
	}
	return &gcalendar.Event{ID: id}, nil
}

func (f *fakeCalendar) DeleteEvent(_ context.Context, _, id string) error {
	f.callCount++
	f.gotID = id
	return f.err
}

var window = reconcile.NewWindow(time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), time.UTC)

func TestPullChangedSince(t *testing.T) {
	cal := &fakeCalendar{list: &gcalendar.ListEventsResult{
		NextSyncToken: "tok-2",
		Events: []gcalendar.Event{
			{ID: "a", Summary: "standup", StartTime: time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC), EndTime: time.Date(2024, 5, 6, 9, 30, 0, 0, time.UTC)},
			{ID: "b", Summary: "study", StartTime: time.Date(2024, 5, 7, 10, 0, 0, 0, time.UTC), EndTime: time.Date(2024, 5, 7, 11, 0, 0, 0, time.UTC),
				Private: map[string]string{reconcile.PropLocalID: "e1", reconcile.PropKind: "soft", reconcile.PropTaskID: "t1"}},
			{ID: "c", Status: gcalendar.StatusCancelled},
			{ID: "d", Summary: "holiday", AllDay: true, StartTime: time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC), EndTime: time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC)},
			{ID: "e", Summary: "next week", StartTime: time.Date(2024, 5, 14, 9, 0, 0, 0, time.UTC), EndTime: time.Date(2024, 5, 14, 10, 0, 0, 0, time.UTC)},
		},
	}}
	r := New(cal, Options{CalendarID: "work"}, log.NewNop())

	b, err := r.PullChangedSince(context.Background(), window, "")
	require.NoError(t, err)
	assert.True(t, b.Full)
	assert.Equal(t, "tok-2", b.Cursor)
	assert.Equal(t, "work", cal.gotList.CalendarID)
	assert.True(t, cal.gotList.TimeMin.Equal(window.Start))
	assert.True(t, cal.gotList.TimeMax.Equal(window.End()))

	require.Len(t, b.Events, 5)
	assert.Equal(t, reconcile.RemoteEvent{Ref: "a", Name: "standup", Day: model.Monday, Start: model.NewClock(9, 0), End: model.NewClock(9, 30), Kind: model.KindFixed}, b.Events[0])
	assert.Equal(t, model.KindSoft, b.Events[1].Kind)
	assert.Equal(t, "e1", b.Events[1].LocalID)
	assert.Equal(t, "t1", b.Events[1].TaskID)
	for _, ev := range b.Events[2:] {
		assert.True(t, ev.Deleted, ev.Ref)
	}

	b, err = r.PullChangedSince(context.Background(), window, "tok-1")
	require.NoError(t, err)
	assert.False(t, b.Full)
	assert.Equal(t, "tok-1", cal.gotList.SyncToken)
	assert.True(t, cal.gotList.TimeMin.IsZero())
}

func TestPullExpiredToken(t *testing.T) {
	cal := &fakeCalendar{listErr: gcalendar.ErrSyncTokenExpired}
	r := New(cal, Options{}, log.NewNop())

	_, err := r.PullChangedSince(context.Background(), window, "old")
	assert.ErrorIs(t, err, reconcile.ErrCursorExpired)
}

func TestWrites(t *testing.T) {
	cal := &fakeCalendar{}
	r := New(cal, Options{CalendarID: "work"}, log.NewNop())
	ev := model.Event{ID: "e1", Name: "essay", Start: model.NewClock(14, 0), End: model.NewClock(15, 0), Kind: model.KindSoft, TaskID: "t1"}

	ref, err := r.CreateEvent(context.Background(), window, model.Wednesday, ev)
	require.NoError(t, err)
	assert.Equal(t, "new-id", ref)
	assert.True(t, cal.gotInput.StartTime.Equal(time.Date(2024, 5, 8, 14, 0, 0, 0, time.UTC)))
	assert.Equal(t, "UTC", cal.gotInput.Timezone)
	assert.Equal(t, map[string]string{
		reconcile.PropLocalID: "e1",
		reconcile.PropKind:    "soft",
		reconcile.PropTaskID:  "t1",
	}, cal.gotInput.Private)

	cal.err = gcalendar.ErrNotFound
	assert.ErrorIs(t, r.UpdateEvent(context.Background(), "x", window, model.Wednesday, ev), reconcile.ErrRemoteNotFound)
	assert.ErrorIs(t, r.DeleteEvent(context.Background(), "x"), reconcile.ErrRemoteNotFound)
	assert.Equal(t, "x", cal.gotID)
}

func TestBreakerOpens(t *testing.T) {
	cal := &fakeCalendar{err: errors.New("503 backend error")}
	r := New(cal, Options{Breaker: BreakerConfig{MinRequests: 3, FailureRatio: 1, Timeout: time.Hour}}, log.NewNop())

	for i := 0; i < 3; i++ {
		assert.Error(t, r.DeleteEvent(context.Background(), "x"))
	}
	calls := cal.callCount
	err := r.DeleteEvent(context.Background(), "x")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, calls, cal.callCount)
}

func TestNotFoundDoesNotTrip(t *testing.T) {
	cal := &fakeCalendar{err: gcalendar.ErrNotFound}
	r := New(cal, Options{Breaker: BreakerConfig{MinRequests: 2, FailureRatio: 0.5}}, log.NewNop())

	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, r.DeleteEvent(context.Background(), "x"), reconcile.ErrRemoteNotFound)
	}
	assert.Equal(t, 5, cal.callCount)
}
