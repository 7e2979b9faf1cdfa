package compose

import (
	"time"

	"weekly-scheduler/internal/model"
)

// Kind names what a dispatch did.
type Kind string

const (
	KindAdded         Kind = "added"
	KindDeleted       Kind = "deleted"
	KindNotFound      Kind = "not_found"
	KindModified      Kind = "modified"
	KindClearedDay    Kind = "cleared_day"
	KindClearedWeek   Kind = "cleared_week"
	KindRecommended   Kind = "recommended"
	KindClarification Kind = "clarification"
	KindDayQuery      Kind = "day_query"
	KindWeekQuery     Kind = "week_query"
	KindTaskScheduled Kind = "task_scheduled"
	KindTaskCompleted Kind = "task_completed"
	KindInfeasible    Kind = "infeasible"
	KindRejected      Kind = "rejected"
	KindDeclined      Kind = "declined"
	KindHelp          Kind = "help"
	KindFailed        Kind = "failed"
)

// Outcome is the raw result of one dispatch. Only the fields relevant to Kind are set.
type Outcome struct {
	Kind    Kind
	Day     model.Weekday
	Target  string
	Changes model.ChangeSet

	Recommendation *model.ConflictRecommendation

	Question      string
	MissingFields []string
	Candidates    []Candidate

	DayView   *model.Day
	IsToday   bool
	WeekStart time.Time
	Week      *model.WeekSchedule

	Task *model.Task
	// ShortfallMinutes is the part of a task that found no room.
	ShortfallMinutes int

	Err error
}

// Candidate is one of several events matching an ambiguous target.
type Candidate struct {
	Day   model.Weekday `json:"day"`
	Event EventView     `json:"event"`
}

// Result is the structured dispatch output handed to the caller for narration.
type Result struct {
	Success             bool                          `json:"success"`
	ResponseText        string                        `json:"responseText"`
	ChangesMade         ChangesMade                   `json:"changesMade"`
	AffectedDays        []model.Weekday               `json:"affectedDays"`
	Conflict            *model.ConflictRecommendation `json:"conflict,omitempty"`
	ClarificationNeeded *Clarification                `json:"clarificationNeeded,omitempty"`
	Data                any                           `json:"data,omitempty"`
}

// ChangesMade lists the touched events. Lists are never nil.
type ChangesMade struct {
	Added    []EventChange `json:"added"`
	Deleted  []EventChange `json:"deleted"`
	Modified []EventChange `json:"modified"`
}

type EventChange struct {
	Day   model.Weekday   `json:"day"`
	Event EventView       `json:"event"`
	From  *EventChangeRef `json:"from,omitempty"`
}

// EventChangeRef is the position of a modified event before the change.
type EventChangeRef struct {
	Day   model.Weekday `json:"day"`
	Start string        `json:"start"`
	End   string        `json:"end"`
	Name  string        `json:"name"`
}

type Clarification struct {
	Question      string      `json:"question"`
	MissingFields []string    `json:"missingFields"`
	Candidates    []Candidate `json:"candidates,omitempty"`
}

// EventView is the wire shape of an event.
type EventView struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Start       string          `json:"start"`
	End         string          `json:"end"`
	Kind        model.EventKind `json:"kind"`
	Origin      model.Origin    `json:"origin"`
	ExternalRef string          `json:"externalRef,omitempty"`
	TaskID      string          `json:"taskId,omitempty"`
}

// WeekSummary is the week query output.
type WeekSummary struct {
	WeekStart    string                       `json:"weekStart"`
	LastModified time.Time                    `json:"lastModified"`
	TotalEvents  int                          `json:"totalEvents"`
	Days         map[model.Weekday]DaySummary `json:"days"`
	Tasks        []TaskView                   `json:"tasks,omitempty"`
}

type DaySummary struct {
	EventCount  int         `json:"eventCount"`
	Events      []EventView `json:"events"`
	LastUpdated time.Time   `json:"lastUpdated"`
}

// DayDetail is the day query output.
type DayDetail struct {
	Day         model.Weekday `json:"day"`
	Date        string        `json:"date"`
	Events      []EventView   `json:"events"`
	LastUpdated time.Time     `json:"lastUpdated"`
}

type TaskView struct {
	ID                       string           `json:"id"`
	Title                    string           `json:"title"`
	Day                      model.Weekday    `json:"day"`
	DueTime                  string           `json:"dueTime"`
	EstimatedDurationMinutes int              `json:"estimatedDurationMinutes"`
	AllocatedMinutes         int              `json:"allocatedMinutes"`
	Status                   model.TaskStatus `json:"status"`
}
