package usecase

import (
	"context"

	"weekly-scheduler/internal/compose"
	"weekly-scheduler/internal/dispatch"
	"weekly-scheduler/internal/week"
)

func (uc *implUseCase) clearDay(ctx context.Context, h *week.Handle, cmd dispatch.ClearDayCommand) (compose.Outcome, error) {
	changes, err := h.Update(ctx, func(tx *week.Tx) error {
		tx.ClearDay(cmd.Day)
		return nil
	})
	if err != nil {
		return uc.fail(ctx, err, cmd.Day)
	}
	return compose.Outcome{Kind: compose.KindClearedDay, Day: cmd.Day, Changes: changes}, nil
}

func (uc *implUseCase) clearWeek(ctx context.Context, h *week.Handle) (compose.Outcome, error) {
	changes, err := h.Update(ctx, func(tx *week.Tx) error {
		tx.ClearWeek()
		return nil
	})
	if err != nil {
		return uc.fail(ctx, err, "")
	}
	return compose.Outcome{Kind: compose.KindClearedWeek, Changes: changes}, nil
}
