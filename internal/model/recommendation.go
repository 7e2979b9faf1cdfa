package model

// ConflictRecommendation proposes another slot for an event that hit a fixed one.
// It is a value only; producing it never changes a schedule.
type ConflictRecommendation struct {
	Day              Weekday    `json:"day"`
	AttemptedEvent   Event      `json:"attempted_event"`
	ConflictingEvent Event      `json:"conflicting_event"`
	ProposedSlot     *TimeRange `json:"proposed_slot,omitempty"`
}
