package usecase

import (
	"context"

	"weekly-scheduler/internal/model"
	"weekly-scheduler/internal/reconcile"
	"weekly-scheduler/internal/week"
)

// optimize places study blocks for open tasks that lost or never got their
// full duration. Days already over are left alone, and today only gets
// blocks after the current time.
func (uc *implUseCase) optimize(ctx context.Context, h *week.Handle, rep *reconcile.Report) error {
	if uc.allocator == nil {
		return nil
	}
	now := uc.now().In(uc.loc)
	today := model.WeekdayOf(now)
	if h.WeekStart().After(now) {
		today = model.Monday
	}

	_, err := h.Update(ctx, func(tx *week.Tx) error {
		w := tx.Schedule()
		tasks := append([]model.Task(nil), w.Tasks...)
		for _, t := range tasks {
			if !t.Open() || t.Day.Index() < today.Index() {
				continue
			}
			remaining := w.RemainingMinutes(t)
			if remaining <= 0 {
				continue
			}

			day := tx.GetDay(t.Day)
			if t.Day == today {
				day.Events = append(day.Events, model.Event{Start: model.Midnight, End: model.ClockOf(now), Kind: model.KindFixed})
			}
			for _, r := range uc.allocator.Allocate(ctx, day, remaining, t.DueTime) {
				block := model.Event{Name: t.Title, Start: r.Start, End: r.End, Kind: model.KindSoft, TaskID: t.ID}
				if _, err := tx.AddEvent(t.Day, block); err != nil {
					uc.l.Warnf(ctx, "reconcile.usecase.optimize: place block for %s: %v", t.Title, err)
					continue
				}
				rep.Allocated += r.Minutes()
			}
		}
		return nil
	})
	if err != nil {
		return &reconcile.SyncError{Phase: reconcile.PhaseOptimize, Err: err}
	}
	return nil
}
