package usecase

import (
	"context"
	"errors"

	"weekly-scheduler/internal/compose"
	"weekly-scheduler/internal/dispatch"
	"weekly-scheduler/internal/model"
	"weekly-scheduler/internal/week"
)

// delete removes the event named by cmd. A missing event is not an error.
func (uc *implUseCase) delete(ctx context.Context, h *week.Handle, cmd dispatch.DeleteCommand) (compose.Outcome, error) {
	var day model.Weekday
	changes, err := h.Update(ctx, func(tx *week.Tx) error {
		m, err := findOne(tx.Schedule(), cmd.Day, cmd.Name, cmd.At)
		if err != nil {
			return err
		}
		day = m.day
		_, _, err = tx.DeleteEventByID(m.ev.ID)
		return err
	})

	var amb *dispatch.AmbiguousInputError
	switch {
	case errors.Is(err, errNoMatch), errors.Is(err, week.ErrNotFound):
		return compose.Outcome{Kind: compose.KindNotFound, Day: cmd.Day, Target: cmd.Name}, nil
	case errors.As(err, &amb):
		field := dispatch.FieldDay
		if cmd.Day != "" {
			field = dispatch.FieldTime
		}
		return ambiguity(amb, field), nil
	case err != nil:
		return uc.fail(ctx, err, cmd.Day)
	}
	return compose.Outcome{Kind: compose.KindDeleted, Day: day, Changes: changes}, nil
}

// modify moves or renames the event named by cmd. Without a new day it stays
// on its day, without a new time it keeps its times.
func (uc *implUseCase) modify(ctx context.Context, h *week.Handle, cmd dispatch.ModifyCommand) (compose.Outcome, error) {
	m, err := findOne(h.Snapshot(), cmd.FromDay, cmd.Name, nil)
	var amb *dispatch.AmbiguousInputError
	switch {
	case errors.Is(err, errNoMatch):
		return compose.Outcome{Kind: compose.KindNotFound, Day: cmd.FromDay, Target: cmd.Name}, nil
	case errors.As(err, &amb):
		return ambiguity(amb, dispatch.FieldFromDay), nil
	case err != nil:
		return uc.fail(ctx, err, cmd.FromDay)
	}

	to := cmd.ToDay
	if to == "" {
		to = m.day
	}
	r := m.ev.Range()
	switch {
	case cmd.When != nil:
		minutes := cmd.DurationMinutes
		if minutes <= 0 {
			minutes = m.ev.Minutes()
		}
		if r, err = cmd.When.Range(minutes); err != nil {
			return uc.fail(ctx, err, to)
		}
	case cmd.DurationMinutes > 0:
		r.End = r.Start.Add(cmd.DurationMinutes)
	}
	return uc.move(ctx, h, m.ev.ID, to, r, cmd.NewName)
}

// move commits a new position for an event. On a conflict it proposes
// another slot and leaves the week unchanged.
func (uc *implUseCase) move(ctx context.Context, h *week.Handle, id string, day model.Weekday, r model.TimeRange, name string) (compose.Outcome, error) {
	changes, err := h.Update(ctx, func(tx *week.Tx) error {
		if _, err := tx.MoveEvent(id, day, r, name); err != nil {
			return err
		}
		uc.replaceEvicted(ctx, tx)
		return nil
	})
	var ce *week.ConflictError
	switch {
	case errors.As(err, &ce):
		return uc.recommend(ctx, h, ce), nil
	case errors.Is(err, week.ErrNotFound):
		return compose.Outcome{Kind: compose.KindNotFound, Day: day, Target: "that event"}, nil
	case err != nil:
		return uc.fail(ctx, err, day)
	}
	return compose.Outcome{Kind: compose.KindModified, Day: day, Changes: changes}, nil
}
