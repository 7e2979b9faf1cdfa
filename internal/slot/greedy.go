package slot

import (
	"context"
	"sort"

	"weekly-scheduler/internal/model"
)

// GreedyFinder returns the earliest gap that fits. Identical inputs always yield the same slot.
type GreedyFinder struct {
	opts Options
}

// NewGreedy creates the default deterministic finder.
func NewGreedy(opts Options) *GreedyFinder {
	if opts.WorkdayEnd <= opts.WorkdayStart {
		opts.WorkdayStart, opts.WorkdayEnd = model.NewClock(8, 0), model.NewClock(21, 0)
	}
	return &GreedyFinder{opts: opts}
}

func (f *GreedyFinder) Options() Options { return f.opts }

// FindSlot returns [gap.Start, gap.Start+duration) of the earliest gap at least
// max(duration, min block) long.
func (f *GreedyFinder) FindSlot(_ context.Context, req Request) (model.TimeRange, error) {
	if req.DurationMinutes <= 0 {
		return model.TimeRange{}, ErrInvalidDuration
	}
	need := req.DurationMinutes
	if f.opts.MinBlockMinutes > need {
		need = f.opts.MinBlockMinutes
	}
	for _, g := range f.Gaps(req) {
		if g.Minutes() >= need {
			return model.TimeRange{Start: g.Start, End: g.Start.Add(req.DurationMinutes)}, nil
		}
	}
	return model.TimeRange{}, ErrInfeasible
}

// Gaps lists the free ranges inside the request bounds in start order.
func (f *GreedyFinder) Gaps(req Request) []model.TimeRange {
	lo, hi := f.bounds(req)
	if hi <= lo {
		return nil
	}

	blocked := make([]model.TimeRange, 0, len(req.Busy))
	for _, b := range req.Busy {
		if b.Empty() {
			continue
		}
		blocked = append(blocked, model.TimeRange{
			Start: b.Start.Add(-req.BufferMinutes),
			End:   b.End.Add(req.BufferMinutes),
		})
	}
	sort.Slice(blocked, func(i, j int) bool {
		if blocked[i].Start != blocked[j].Start {
			return blocked[i].Start < blocked[j].Start
		}
		return blocked[i].End < blocked[j].End
	})

	var gaps []model.TimeRange
	cursor := lo
	for _, b := range blocked {
		if b.End <= cursor {
			continue
		}
		if b.Start >= hi {
			break
		}
		if b.Start > cursor {
			gaps = append(gaps, model.TimeRange{Start: cursor, End: b.Start})
		}
		cursor = b.End
	}
	if cursor < hi {
		gaps = append(gaps, model.TimeRange{Start: cursor, End: hi})
	}
	return gaps
}

func (f *GreedyFinder) bounds(req Request) (model.Clock, model.Clock) {
	lo, hi := f.opts.WorkdayStart, f.opts.WorkdayEnd
	if req.After > lo {
		lo = req.After
	}
	if req.Before > 0 && req.Before < hi {
		hi = req.Before
	}
	return lo, hi
}
