package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekly-scheduler/internal/compose"
	"weekly-scheduler/internal/dispatch"
	"weekly-scheduler/internal/model"
	"weekly-scheduler/internal/slot"
	"weekly-scheduler/internal/week"
	"weekly-scheduler/internal/week/repository/memory"
	"weekly-scheduler/pkg/datemath"
	"weekly-scheduler/pkg/log"
)

// Wednesday of the week starting 2024-05-06.
var wednesday = time.Date(2024, 5, 8, 10, 0, 0, 0, time.UTC)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	uc    dispatch.UseCase
	store *week.Manager
	clock *clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c := &clock{t: wednesday}
	store := week.NewManager(memory.New(), week.Options{LockTimeout: 20 * time.Millisecond}, c.Now, log.NewNop())
	dates, err := datemath.NewParser("UTC")
	require.NoError(t, err)
	greedy := slot.NewGreedy(slot.Options{
		WorkdayStart:    model.NewClock(8, 0),
		WorkdayEnd:      model.NewClock(21, 0),
		MinBlockMinutes: 30,
	})
	uc := New(log.NewNop(), Config{
		Store:     store,
		Resolver:  dispatch.NewResolver(dates, 60),
		Sessions:  dispatch.NewSessionStore(10, 5*time.Minute, c.Now),
		Finder:    greedy,
		Allocator: slot.NewAllocator(greedy, 15),
		TaskDue:   model.NewClock(21, 0),
		Now:       c.Now,
	})
	return &fixture{uc: uc, store: store, clock: c}
}

func (f *fixture) dispatch(t *testing.T, in dispatch.Input) compose.Result {
	t.Helper()
	if in.ConversationID == "" {
		in.ConversationID = "conv"
	}
	in.ClientDatetime = f.clock.Now()
	r, err := f.uc.Dispatch(context.Background(), in)
	require.NoError(t, err)
	return r
}

func (f *fixture) day(t *testing.T, d model.Weekday) model.Day {
	t.Helper()
	h, err := f.store.Current(context.Background())
	require.NoError(t, err)
	return h.Day(d)
}

func addInput(day, at, name string) dispatch.Input {
	return dispatch.Input{Intent: dispatch.IntentAdd, Day: day, Time: at, Name: name}
}

func TestAddAndRecommend(t *testing.T) {
	f := newFixture(t)

	r := f.dispatch(t, addInput("monday", "14:00-15:00", "meeting"))
	require.True(t, r.Success)
	require.Len(t, r.ChangesMade.Added, 1)
	assert.Equal(t, []model.Weekday{model.Monday}, r.AffectedDays)
	assert.Len(t, f.day(t, model.Monday).Events, 1)

	before, err := f.store.Current(context.Background())
	require.NoError(t, err)
	snapshot := before.Snapshot()

	r = f.dispatch(t, addInput("monday", "14:00-15:00", "dentist"))
	require.NotNil(t, r.Conflict)
	require.NotNil(t, r.Conflict.ProposedSlot)
	assert.Equal(t, model.TimeRange{Start: model.NewClock(15, 0), End: model.NewClock(16, 0)}, *r.Conflict.ProposedSlot)
	assert.Equal(t, "meeting", r.Conflict.ConflictingEvent.Name)
	assert.Empty(t, r.ChangesMade.Added)
	assert.Equal(t, snapshot, before.Snapshot())

	r = f.dispatch(t, dispatch.Input{Intent: dispatch.IntentConfirm})
	require.True(t, r.Success)
	require.Len(t, r.ChangesMade.Added, 1)
	assert.Equal(t, "15:00", r.ChangesMade.Added[0].Event.Start)
	assert.Len(t, f.day(t, model.Monday).Events, 2)

	// Nothing left to confirm.
	r = f.dispatch(t, dispatch.Input{Intent: dispatch.IntentConfirm})
	assert.False(t, r.Success)
	assert.Len(t, f.day(t, model.Monday).Events, 2)
}

func TestDeclineRecommendation(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, addInput("monday", "14:00-15:00", "meeting"))
	f.dispatch(t, addInput("monday", "14:30", "dentist"))

	r := f.dispatch(t, dispatch.Input{Intent: dispatch.IntentDecline})
	assert.True(t, r.Success)
	assert.Empty(t, r.ChangesMade.Added)
	assert.Len(t, f.day(t, model.Monday).Events, 1)
}

func TestOtherIntentDropsRecommendation(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, addInput("monday", "14:00-15:00", "meeting"))
	f.dispatch(t, addInput("monday", "14:00", "dentist"))

	f.dispatch(t, dispatch.Input{Intent: dispatch.IntentQueryWeek})
	r := f.dispatch(t, dispatch.Input{Intent: dispatch.IntentConfirm})
	assert.False(t, r.Success)
	assert.Len(t, f.day(t, model.Monday).Events, 1)
}

func TestDeleteMissingIsNoop(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, addInput("monday", "14:00-15:00", "meeting"))

	r := f.dispatch(t, dispatch.Input{Intent: dispatch.IntentDelete, Day: "monday", Name: "dentist"})
	assert.True(t, r.Success)
	assert.NotNil(t, r.ChangesMade.Deleted)
	assert.Empty(t, r.ChangesMade.Deleted)
	assert.Len(t, f.day(t, model.Monday).Events, 1)
}

func TestClarificationFlow(t *testing.T) {
	f := newFixture(t)

	r := f.dispatch(t, dispatch.Input{Intent: dispatch.IntentAdd, Time: "2pm", Name: "meeting"})
	assert.False(t, r.Success)
	require.NotNil(t, r.ClarificationNeeded)
	assert.Equal(t, []string{"day"}, r.ClarificationNeeded.MissingFields)
	assert.Equal(t, "Which day would you like to schedule that?", r.ClarificationNeeded.Question)
	for _, d := range model.Weekdays {
		assert.Empty(t, f.day(t, d).Events)
	}

	r = f.dispatch(t, dispatch.Input{Day: "tomorrow"})
	require.True(t, r.Success)
	require.Len(t, r.ChangesMade.Added, 1)
	assert.Equal(t, model.Thursday, r.ChangesMade.Added[0].Day)
	assert.Equal(t, "meeting", r.ChangesMade.Added[0].Event.Name)
	assert.Equal(t, "15:00", r.ChangesMade.Added[0].Event.End)
}

func TestClarificationExpires(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, dispatch.Input{Intent: dispatch.IntentAdd, Time: "2pm", Name: "meeting"})

	f.clock.Advance(6 * time.Minute)
	r := f.dispatch(t, dispatch.Input{Day: "tomorrow"})
	assert.False(t, r.Success)
	assert.Nil(t, r.ClarificationNeeded)
	assert.Empty(t, f.day(t, model.Thursday).Events)
}

func TestClarificationIsPerConversation(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, dispatch.Input{ConversationID: "a", Intent: dispatch.IntentAdd, Time: "2pm", Name: "meeting"})

	r := f.dispatch(t, dispatch.Input{ConversationID: "b", Day: "friday"})
	assert.False(t, r.Success)

	r = f.dispatch(t, dispatch.Input{ConversationID: "a", Day: "friday"})
	assert.True(t, r.Success)
	assert.Len(t, f.day(t, model.Friday).Events, 1)
}

func TestAmbiguousDelete(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, addInput("monday", "7am", "gym"))
	f.dispatch(t, addInput("wednesday", "6pm", "gym"))

	r := f.dispatch(t, dispatch.Input{Intent: dispatch.IntentDelete, Name: "the gym"})
	require.NotNil(t, r.ClarificationNeeded)
	assert.Equal(t, []string{"day"}, r.ClarificationNeeded.MissingFields)
	assert.Len(t, r.ClarificationNeeded.Candidates, 2)
	assert.Contains(t, r.ResponseText, "Monday at 7 AM")

	r = f.dispatch(t, dispatch.Input{Day: "wednesday"})
	require.True(t, r.Success)
	require.Len(t, r.ChangesMade.Deleted, 1)
	assert.Equal(t, model.Wednesday, r.ChangesMade.Deleted[0].Day)
	assert.Len(t, f.day(t, model.Monday).Events, 1)
	assert.Empty(t, f.day(t, model.Wednesday).Events)
}

func TestFuzzyDelete(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, addInput("friday", "10am", "Dentist appointment"))

	r := f.dispatch(t, dispatch.Input{Intent: dispatch.IntentDelete, Name: "dentist"})
	require.True(t, r.Success)
	assert.Len(t, r.ChangesMade.Deleted, 1)
	assert.Empty(t, f.day(t, model.Friday).Events)
}

func TestModify(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, addInput("monday", "14:00-15:00", "meeting"))
	f.dispatch(t, addInput("tuesday", "10:00-11:00", "standup"))

	r := f.dispatch(t, dispatch.Input{Intent: dispatch.IntentModify, Name: "meeting", Day: "tuesday", Time: "9am"})
	require.True(t, r.Success)
	require.Len(t, r.ChangesMade.Modified, 1)
	assert.Equal(t, "09:00", r.ChangesMade.Modified[0].Event.Start)
	assert.Equal(t, "10:00", r.ChangesMade.Modified[0].Event.End)
	assert.ElementsMatch(t, []model.Weekday{model.Monday, model.Tuesday}, r.AffectedDays)
	assert.Empty(t, f.day(t, model.Monday).Events)
	assert.Len(t, f.day(t, model.Tuesday).Events, 2)

	// Moving onto the standup is a conflict. Confirming moves it to the proposal.
	r = f.dispatch(t, dispatch.Input{Intent: dispatch.IntentModify, Name: "meeting", Time: "10:30"})
	require.NotNil(t, r.Conflict)
	require.NotNil(t, r.Conflict.ProposedSlot)
	assert.Equal(t, model.NewClock(11, 0), r.Conflict.ProposedSlot.Start)

	r = f.dispatch(t, dispatch.Input{Intent: dispatch.IntentConfirm})
	require.True(t, r.Success)
	require.Len(t, r.ChangesMade.Modified, 1)
	assert.Equal(t, "11:00", r.ChangesMade.Modified[0].Event.Start)
	assert.Len(t, f.day(t, model.Tuesday).Events, 2)
}

func TestFlexibleAddAndComplete(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, addInput("thursday", "08:00-12:00", "lectures"))

	r := f.dispatch(t, dispatch.Input{Intent: dispatch.IntentAdd, Day: "thursday", DurationMinutes: 120, Name: "essay"})
	require.True(t, r.Success)
	require.Len(t, r.ChangesMade.Added, 1)
	block := r.ChangesMade.Added[0].Event
	assert.Equal(t, model.KindSoft, block.Kind)
	assert.NotEmpty(t, block.TaskID)
	assert.Equal(t, "12:15", block.Start)
	assert.Equal(t, "14:15", block.End)

	r = f.dispatch(t, dispatch.Input{Intent: dispatch.IntentComplete, Name: "essay"})
	require.True(t, r.Success)
	assert.Len(t, r.ChangesMade.Deleted, 1)
	assert.Len(t, f.day(t, model.Thursday).Events, 1)

	r = f.dispatch(t, dispatch.Input{Intent: dispatch.IntentComplete, Name: "essay"})
	assert.True(t, r.Success)
	assert.Empty(t, r.ChangesMade.Deleted)
}

func TestFixedAddReplacesDisplacedStudy(t *testing.T) {
	f := newFixture(t)
	r := f.dispatch(t, dispatch.Input{Intent: dispatch.IntentAdd, Day: "thursday", DurationMinutes: 60, Name: "study"})
	require.True(t, r.Success)
	require.Len(t, r.ChangesMade.Added, 1)
	assert.Equal(t, "08:00", r.ChangesMade.Added[0].Event.Start)
	taskID := r.ChangesMade.Added[0].Event.TaskID

	allocated := func() int {
		h, err := f.store.Current(context.Background())
		require.NoError(t, err)
		return h.Snapshot().AllocatedMinutes(taskID)
	}
	require.Equal(t, 60, allocated())

	r = f.dispatch(t, addInput("thursday", "08:00-09:00", "standup"))
	require.True(t, r.Success)
	assert.Contains(t, r.ResponseText, "Added study on Thursday at 9:15 AM")
	assert.Equal(t, 60, allocated())

	events := f.day(t, model.Thursday).Events
	require.Len(t, events, 2)
	assert.Equal(t, "standup", events[0].Name)
	assert.Equal(t, model.TimeRange{Start: model.NewClock(9, 15), End: model.NewClock(10, 15)}, events[1].Range())
	assert.Equal(t, taskID, events[1].TaskID)
}

func TestFlexibleAddInfeasible(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, addInput("friday", "08:00-21:00", "conference"))

	r := f.dispatch(t, dispatch.Input{Intent: dispatch.IntentAdd, Day: "friday", DurationMinutes: 60, Name: "essay"})
	assert.False(t, r.Success)
	assert.Contains(t, r.ResponseText, "no room left on Friday")

	w, err := f.store.Current(context.Background())
	require.NoError(t, err)
	assert.Empty(t, w.Snapshot().Tasks)
}

func TestQueriesAndClear(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, addInput("wednesday", "9am", "standup"))
	f.dispatch(t, addInput("friday", "9am", "review"))

	r := f.dispatch(t, dispatch.Input{Intent: dispatch.IntentQueryDay})
	assert.Equal(t, "Today you have 1 event: standup at 9 AM.", r.ResponseText)

	r = f.dispatch(t, dispatch.Input{Intent: dispatch.IntentQueryWeek})
	summary, ok := r.Data.(compose.WeekSummary)
	require.True(t, ok)
	assert.Equal(t, 2, summary.TotalEvents)

	r = f.dispatch(t, dispatch.Input{Intent: dispatch.IntentClearDay})
	require.NotNil(t, r.ClarificationNeeded)
	r = f.dispatch(t, dispatch.Input{Day: "friday"})
	assert.Equal(t, "Cleared Friday. 1 event removed.", r.ResponseText)

	r = f.dispatch(t, dispatch.Input{Intent: dispatch.IntentClearDay, Day: "friday"})
	assert.Equal(t, "Friday was already clear.", r.ResponseText)

	h, err := f.store.Current(context.Background())
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	r = f.dispatch(t, dispatch.Input{Intent: dispatch.IntentClearWeek})
	assert.True(t, r.Success)
	w := h.Snapshot()
	assert.Equal(t, 0, w.TotalEvents())
	assert.True(t, w.WeekStart.Equal(time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, f.clock.Now(), w.LastModified)
}

func TestRejectedInput(t *testing.T) {
	f := newFixture(t)

	r := f.dispatch(t, addInput("monday", "15:00-14:00", "backwards"))
	assert.False(t, r.Success)
	assert.Contains(t, r.ResponseText, "must be after start")

	r = f.dispatch(t, dispatch.Input{Intent: "dance"})
	assert.False(t, r.Success)
}

func TestSkewedClientClockKeepsCurrentWeek(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, addInput("monday", "14:00-15:00", "meeting"))

	for _, intent := range []dispatch.Intent{dispatch.IntentQueryWeek, dispatch.IntentClearWeek} {
		r, err := f.uc.Dispatch(context.Background(), dispatch.Input{
			ConversationID: "skewed",
			Intent:         intent,
			ClientDatetime: wednesday.AddDate(0, 0, 7),
		})
		require.NoError(t, err)
		assert.False(t, r.Success, intent)
		assert.Contains(t, r.ResponseText, "outside the current week")
	}

	h, err := f.store.Current(context.Background())
	require.NoError(t, err)
	assert.True(t, h.WeekStart().Equal(time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)))
	assert.Len(t, f.day(t, model.Monday).Events, 1)

	r := f.dispatch(t, dispatch.Input{Intent: dispatch.IntentQueryDay, Day: "monday"})
	assert.True(t, r.Success)
	assert.Contains(t, r.ResponseText, "meeting")
}

func TestDispatchBusy(t *testing.T) {
	f := newFixture(t)
	h, err := f.store.Current(context.Background())
	require.NoError(t, err)

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = h.Update(context.Background(), func(*week.Tx) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	_, err = f.uc.Dispatch(context.Background(), dispatch.Input{
		ConversationID: "conv", Intent: dispatch.IntentAdd, Day: "monday", Time: "9am", Name: "x", ClientDatetime: wednesday,
	})
	assert.ErrorIs(t, err, week.ErrBusy)

	close(release)
	<-done
}
