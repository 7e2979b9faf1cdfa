package usecase

import (
	"context"
	"errors"
	"strings"

	"weekly-scheduler/internal/compose"
	"weekly-scheduler/internal/dispatch"
	"weekly-scheduler/internal/model"
	"weekly-scheduler/internal/week"
)

// complete closes the open task named by cmd and frees its study blocks.
func (uc *implUseCase) complete(ctx context.Context, h *week.Handle, cmd dispatch.CompleteCommand) (compose.Outcome, error) {
	status := model.TaskCompleted
	if cmd.Cancel {
		status = model.TaskCancelled
	}

	var task model.Task
	changes, err := h.Update(ctx, func(tx *week.Tx) error {
		t, ok := findTask(tx.Schedule().Tasks, cmd.Name)
		if !ok {
			return dispatch.ErrTaskNotFound
		}
		if _, err := tx.SetTaskStatus(t.ID, status); err != nil {
			return err
		}
		task = t
		task.Status = status
		return nil
	})
	switch {
	case errors.Is(err, dispatch.ErrTaskNotFound), errors.Is(err, week.ErrTaskNotFound):
		return compose.Outcome{Kind: compose.KindNotFound, Target: cmd.Name}, nil
	case err != nil:
		return uc.fail(ctx, err, "")
	}
	return compose.Outcome{Kind: compose.KindTaskCompleted, Day: task.Day, Changes: changes, Task: &task}, nil
}

// findTask picks the oldest open task whose title matches name, preferring
// exact matches.
func findTask(tasks []model.Task, name string) (model.Task, bool) {
	target := normalizeName(name)
	var partial *model.Task
	for i := range tasks {
		t := tasks[i]
		if !t.Open() {
			continue
		}
		title := normalizeName(t.Title)
		if title == target {
			return t, true
		}
		if partial == nil && target != "" && strings.Contains(title, target) {
			partial = &tasks[i]
		}
	}
	if partial != nil {
		return *partial, true
	}
	return model.Task{}, false
}

// replaceEvicted places again the minutes of study blocks that tx displaced.
// Blocks stay on their task's day and never start before now. Minutes that no
// longer fit stay open on the task.
func (uc *implUseCase) replaceEvicted(ctx context.Context, tx *week.Tx) {
	if uc.allocator == nil {
		return
	}
	now := tx.Now().In(tx.Schedule().WeekStart.Location())
	today := model.WeekdayOf(now)

	done := map[string]bool{}
	for _, c := range tx.Changes().Deleted {
		id := c.Event.TaskID
		if !c.Event.IsStudyBlock() || done[id] {
			continue
		}
		done[id] = true

		w := tx.Schedule()
		t, ok := w.Task(id)
		if !ok || !t.Open() || t.Day.Index() < today.Index() {
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
				uc.l.Warnf(ctx, "dispatch.usecase.replaceEvicted: place block for %s: %v", t.Title, err)
			}
		}
	}
}
