package slot

import (
	"context"

	"weekly-scheduler/internal/model"
)

// Allocator places study blocks for a task on one day.
type Allocator struct {
	finder *GreedyFinder
	buffer int
}

func NewAllocator(finder *GreedyFinder, bufferMinutes int) *Allocator {
	return &Allocator{finder: finder, buffer: bufferMinutes}
}

// Allocate returns ranges covering at most remaining minutes before due, avoiding
// every event already on day. It takes the whole remainder in one block when it
// fits, otherwise the largest gap of at least the minimum block length, and repeats.
func (a *Allocator) Allocate(ctx context.Context, day model.Day, remaining int, due model.Clock) []model.TimeRange {
	busy := day.Busy(false)
	minBlock := a.finder.opts.MinBlockMinutes
	if minBlock <= 0 {
		minBlock = 1
	}

	var out []model.TimeRange
	for remaining > 0 {
		req := Request{Busy: busy, DurationMinutes: remaining, Before: due, BufferMinutes: a.buffer}
		if r, err := a.finder.FindSlot(ctx, req); err == nil {
			out = append(out, r)
			break
		}

		var best model.TimeRange
		for _, g := range a.finder.Gaps(req) {
			if g.Minutes() >= minBlock && g.Minutes() > best.Minutes() {
				best = g
			}
		}
		if best.Empty() {
			break
		}
		take := best.Minutes()
		if take > remaining {
			take = remaining
		}
		r := model.TimeRange{Start: best.Start, End: best.Start.Add(take)}
		out = append(out, r)
		busy = append(busy, r)
		remaining -= take
	}
	return out
}
