package slot

import "weekly-scheduler/internal/model"

// Options are the day bounds shared by every search.
type Options struct {
	WorkdayStart    model.Clock
	WorkdayEnd      model.Clock
	MinBlockMinutes int
}

// Request describes one search. Zero After/Before mean the workday bounds.
type Request struct {
	Busy            []model.TimeRange
	DurationMinutes int
	After           model.Clock
	Before          model.Clock
	BufferMinutes   int
}
