package model

import "strings"

// EventKind tells the scheduler whether it may relocate an event.
type EventKind string

const (
	KindFixed EventKind = "fixed"
	KindSoft  EventKind = "soft"
)

func (k EventKind) Valid() bool { return k == KindFixed || k == KindSoft }

// Origin records which side created an event.
type Origin string

const (
	OriginLocal  Origin = "local"
	OriginRemote Origin = "remote"
)

// Event is one entry of a Day.
type Event struct {
	ID    string    `json:"id" yaml:"id"`
	Name  string    `json:"name" yaml:"name"`
	Start Clock     `json:"start" yaml:"start"`
	End   Clock     `json:"end" yaml:"end"`
	Kind  EventKind `json:"kind" yaml:"kind"`

	// ExternalRef correlates the event with the external calendar. Empty until synchronized.
	ExternalRef string `json:"external_ref,omitempty" yaml:"external_ref,omitempty"`
	TaskID      string `json:"task_id,omitempty" yaml:"task_id,omitempty"`
	Origin      Origin `json:"origin" yaml:"origin"`
	// Dirty marks local changes not yet pushed.
	Dirty bool `json:"dirty,omitempty" yaml:"dirty,omitempty"`
}

func (e Event) Range() TimeRange { return TimeRange{Start: e.Start, End: e.End} }

func (e Event) Minutes() int { return e.Range().Minutes() }

func (e Event) IsFixed() bool { return e.Kind == KindFixed }

// IsStudyBlock reports whether e is a soft allocation owned by a task.
func (e Event) IsStudyBlock() bool { return e.Kind == KindSoft && e.TaskID != "" }

// OwnedLocally reports whether the scheduler may edit or delete the remote copy.
func (e Event) OwnedLocally() bool { return e.Origin != OriginRemote }

// Validate checks the event can be stored.
func (e Event) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return &ValidationError{Field: "name", Reason: "name is required"}
	}
	if !e.Kind.Valid() {
		return &ValidationError{Field: "kind", Reason: "kind must be fixed or soft"}
	}
	return e.Range().Validate()
}

// SameSlot compares name and interval only.
func (e Event) SameSlot(o Event) bool {
	return e.Name == o.Name && e.Start == o.Start && e.End == o.End
}
