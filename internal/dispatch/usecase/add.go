package usecase

import (
	"context"
	"errors"

	"weekly-scheduler/internal/compose"
	"weekly-scheduler/internal/dispatch"
	"weekly-scheduler/internal/model"
	"weekly-scheduler/internal/slot"
	"weekly-scheduler/internal/week"
)

func (uc *implUseCase) add(ctx context.Context, h *week.Handle, cmd dispatch.AddCommand) (compose.Outcome, error) {
	if cmd.When == nil {
		return uc.addTask(ctx, h, cmd)
	}
	minutes := cmd.DurationMinutes
	if minutes <= 0 {
		minutes = uc.resolver.DefaultMinutes()
	}
	r, err := cmd.When.Range(minutes)
	if err != nil {
		return uc.fail(ctx, err, cmd.Day)
	}
	return uc.addEvent(ctx, h, cmd.Day, model.Event{Name: cmd.Name, Start: r.Start, End: r.End, Kind: cmd.Kind})
}

// addEvent inserts ev or, on a conflict, proposes another slot without touching the week.
// Study blocks pushed out by a fixed event are placed again in the same update.
func (uc *implUseCase) addEvent(ctx context.Context, h *week.Handle, day model.Weekday, ev model.Event) (compose.Outcome, error) {
	changes, err := h.Update(ctx, func(tx *week.Tx) error {
		if _, err := tx.AddEvent(day, ev); err != nil {
			return err
		}
		uc.replaceEvicted(ctx, tx)
		return nil
	})
	var ce *week.ConflictError
	if errors.As(err, &ce) {
		return uc.recommend(ctx, h, ce), nil
	}
	if err != nil {
		return uc.fail(ctx, err, day)
	}
	return compose.Outcome{Kind: compose.KindAdded, Day: day, Changes: changes}, nil
}

// recommend searches from the attempted start onwards, then from the start
// of the workday. The earliest fitting slot wins.
func (uc *implUseCase) recommend(ctx context.Context, h *week.Handle, ce *week.ConflictError) compose.Outcome {
	rec := &model.ConflictRecommendation{
		Day:              ce.Day,
		AttemptedEvent:   ce.Attempted,
		ConflictingEvent: ce.Conflicting,
	}

	day := h.Day(ce.Day)
	var skip []string
	if ce.Attempted.ID != "" {
		skip = append(skip, ce.Attempted.ID)
	}
	req := slot.Request{
		Busy:            day.Busy(true, skip...),
		DurationMinutes: ce.Attempted.Minutes(),
		After:           ce.Attempted.Start,
		BufferMinutes:   uc.recBuffer,
	}
	r, err := uc.finder.FindSlot(ctx, req)
	if errors.Is(err, slot.ErrInfeasible) {
		req.After = 0
		r, err = uc.finder.FindSlot(ctx, req)
	}
	if err != nil {
		uc.l.Infof(ctx, "dispatch.usecase.recommend: no alternative for %s on %s: %v", ce.Attempted.Name, ce.Day, err)
	} else {
		rec.ProposedSlot = &r
	}
	return compose.Outcome{Kind: compose.KindRecommended, Day: ce.Day, Recommendation: rec}
}

// addTask registers flexible work and places its study blocks on the day. A
// day without any room fails and leaves the week unchanged. Minutes that do
// not fit stay on the task for later cycles.
func (uc *implUseCase) addTask(ctx context.Context, h *week.Handle, cmd dispatch.AddCommand) (compose.Outcome, error) {
	var (
		task      model.Task
		allocated int
	)
	changes, err := h.Update(ctx, func(tx *week.Tx) error {
		task = tx.AddTask(model.Task{
			Title:                    cmd.Name,
			Day:                      cmd.Day,
			DueTime:                  uc.taskDue,
			EstimatedDurationMinutes: cmd.DurationMinutes,
		})
		ranges := uc.allocator.Allocate(ctx, tx.GetDay(cmd.Day), cmd.DurationMinutes, uc.taskDue)
		if len(ranges) == 0 {
			return slot.ErrInfeasible
		}
		for _, r := range ranges {
			block := model.Event{Name: cmd.Name, Start: r.Start, End: r.End, Kind: model.KindSoft, TaskID: task.ID}
			if _, err := tx.AddEvent(cmd.Day, block); err != nil {
				return err
			}
			allocated += r.Minutes()
		}
		return nil
	})
	if err != nil {
		return uc.fail(ctx, err, cmd.Day)
	}
	return compose.Outcome{
		Kind:             compose.KindTaskScheduled,
		Day:              cmd.Day,
		Changes:          changes,
		Task:             &task,
		ShortfallMinutes: cmd.DurationMinutes - allocated,
	}, nil
}
