package dispatch

import (
	"time"

	"weekly-scheduler/internal/compose"
	"weekly-scheduler/internal/model"
)

// Intent is the classified purpose of a command.
type Intent string

const (
	IntentAdd       Intent = "add"
	IntentDelete    Intent = "delete"
	IntentModify    Intent = "modify"
	IntentQueryDay  Intent = "query_day"
	IntentQueryWeek Intent = "query_week"
	IntentClearDay  Intent = "clear_day"
	IntentClearWeek Intent = "clear_week"
	IntentComplete  Intent = "complete"
	IntentHelp      Intent = "help"
	IntentConfirm   Intent = "confirm"
	IntentDecline   Intent = "decline"
)

// Intents lists every intent the dispatcher accepts.
var Intents = []Intent{
	IntentAdd, IntentDelete, IntentModify, IntentQueryDay, IntentQueryWeek,
	IntentClearDay, IntentClearWeek, IntentComplete, IntentHelp, IntentConfirm, IntentDecline,
}

func (i Intent) Valid() bool {
	for _, v := range Intents {
		if v == i {
			return true
		}
	}
	return false
}

// State is where a conversation stands between two commands. Resolving and
// executing happen inside one call and are never stored.
type State string

const (
	StateIdle                  State = "IDLE"
	StateAwaitingClarification State = "AWAITING_CLARIFICATION"
	StateAwaitingConfirmation  State = "AWAITING_CONFIRMATION"
)

// Field names reported in missingFields.
const (
	FieldDay     = "day"
	FieldTime    = "time"
	FieldName    = "name"
	FieldFromDay = "fromDay"
)

// Input is one structured command from the command layer. Empty fields are unknown.
type Input struct {
	ConversationID string
	Intent         Intent
	// Day is a day expression: "monday", "tomorrow", "next friday".
	Day string
	// Time is a start time ("2pm") or a range ("14:00-15:00").
	Time            string
	Name            string
	DurationMinutes int
	Kind            model.EventKind

	// FromDay narrows the event to move. NewName renames it.
	FromDay string
	NewName string
	// Cancel completes a task as cancelled instead of done.
	Cancel bool

	// ClientDatetime anchors relative day expressions. Zero means the server clock.
	ClientDatetime time.Time
}

// Merge fills the unknown fields of in from known.
func (in Input) Merge(known Input) Input {
	if in.Day == "" {
		in.Day = known.Day
	}
	if in.Time == "" {
		in.Time = known.Time
	}
	if in.Name == "" {
		in.Name = known.Name
	}
	if in.DurationMinutes == 0 {
		in.DurationMinutes = known.DurationMinutes
	}
	if in.Kind == "" {
		in.Kind = known.Kind
	}
	if in.FromDay == "" {
		in.FromDay = known.FromDay
	}
	if in.NewName == "" {
		in.NewName = known.NewName
	}
	in.Cancel = in.Cancel || known.Cancel
	return in
}

// Session is the per-conversation context carried between commands.
type Session struct {
	ConversationID string
	State          State
	PendingIntent  Intent
	Known          Input
	MissingFields  []string
	Candidates     []compose.Candidate

	// Recommendation waits for confirm or decline. TargetID is set when the
	// recommendation moves an existing event.
	Recommendation *model.ConflictRecommendation
	TargetID       string

	CreatedAt       time.Time
	LastInteraction time.Time
}

// Expired reports whether the session saw no activity for ttl.
func (s Session) Expired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(s.LastInteraction) >= ttl
}
