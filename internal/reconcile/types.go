package reconcile

import (
	"strings"
	"time"

	"weekly-scheduler/internal/model"
)

// Phase names a step of a reconciliation cycle.
type Phase string

const (
	PhasePull     Phase = "pull"
	PhaseDiff     Phase = "diff"
	PhaseOptimize Phase = "optimize"
	PhasePush     Phase = "push"
	PhaseAdvance  Phase = "advance"
)

// Private properties attached to pushed events so that a later pull can
// recognize them.
const (
	PropLocalID = "ws_local_id"
	PropKind    = "ws_kind"
	PropTaskID  = "ws_task_id"
)

const feedRefPrefix = "ics:"

// RemoteEvent is one entry reported by a remote source, already placed in the week.
type RemoteEvent struct {
	Ref   string
	Name  string
	Day   model.Weekday
	Start model.Clock
	End   model.Clock
	Kind  model.EventKind
	// LocalID is set on events this scheduler created remotely.
	LocalID string
	TaskID  string
	// Deleted marks cancelled events and events that left the week.
	Deleted bool
}

// Slot returns the comparable part of the event.
func (e RemoteEvent) Slot() model.BaseEntry {
	return model.BaseEntry{Day: e.Day, Name: e.Name, Start: e.Start, End: e.End, Kind: e.Kind}
}

// Batch is the answer of one pull.
type Batch struct {
	Source string
	Events []RemoteEvent
	// Cursor is the watermark to record once the cycle succeeds.
	Cursor string
	// Full means Events is the complete state of the source inside the week.
	// Known refs missing from a full batch were deleted remotely.
	Full bool
	// Unchanged means the source has nothing new since the cursor.
	Unchanged bool
}

// Window maps between absolute times and week slots.
type Window struct {
	Start    time.Time
	Location *time.Location
}

// NewWindow anchors the window on the Monday of weekStart, in loc.
func NewWindow(weekStart time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := weekStart.Date()
	return Window{Start: time.Date(y, m, d, 0, 0, 0, 0, loc), Location: loc}
}

// End is the Monday after the week.
func (w Window) End() time.Time { return w.Start.AddDate(0, 0, 7) }

// Time returns the absolute time of c on day d.
func (w Window) Time(d model.Weekday, c model.Clock) time.Time {
	return c.On(model.DateOf(w.Start, d))
}

// Locate places [start, end) in the week. Events outside the week or spanning
// more than one day do not fit.
func (w Window) Locate(start, end time.Time) (model.Weekday, model.Clock, model.Clock, bool) {
	start, end = start.In(w.Location), end.In(w.Location)
	if start.Before(w.Start) || !start.Before(w.End()) || !end.After(start) {
		return "", 0, 0, false
	}
	d := model.WeekdayOf(start)
	midnight := model.DateOf(w.Start, d).AddDate(0, 0, 1)
	if end.After(midnight) {
		return "", 0, 0, false
	}
	endClock := model.ClockOf(end)
	if end.Equal(midnight) {
		endClock = model.EndOfDay
	}
	return d, model.ClockOf(start), endClock, true
}

// FeedRef namespaces the key of a read-only feed entry.
func FeedRef(feed, key string) string {
	return feedRefPrefix + feed + ":" + key
}

// IsFeedRef reports whether ref was produced by FeedRef for any feed.
func IsFeedRef(ref string) bool { return strings.HasPrefix(ref, feedRefPrefix) }

// OwnedBy reports whether ref belongs to source. The primary calendar owns
// every ref that is not a feed ref.
func OwnedBy(source string, primary bool, ref string) bool {
	if primary {
		return !IsFeedRef(ref)
	}
	return strings.HasPrefix(ref, feedRefPrefix+source+":")
}

// Report summarizes one cycle.
type Report struct {
	WeekStart time.Time `json:"weekStart"`
	StartedAt time.Time `json:"startedAt"`
	Duration  string    `json:"duration"`

	Pulled    int `json:"pulled"`
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Removed   int `json:"removed"`
	Allocated int `json:"allocated"`
	Pushed    int `json:"pushed"`
	Deleted   int `json:"deleted"`
	// Overlaps counts remote fixed events that overlap a local fixed event.
	Overlaps int `json:"overlaps"`

	CursorAdvanced bool     `json:"cursorAdvanced"`
	SkippedSources []string `json:"skippedSources,omitempty"`
	Errors         []string `json:"errors,omitempty"`
}
