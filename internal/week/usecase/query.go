package usecase

import (
	"context"

	"weekly-scheduler/internal/model"
)

func (uc *implUseCase) GetWeek(ctx context.Context) (model.WeekSchedule, error) {
	h, err := uc.store.Current(ctx)
	if err != nil {
		uc.l.Errorf(ctx, "week.usecase.GetWeek: %v", err)
		return model.WeekSchedule{}, err
	}
	return *h.Snapshot(), nil
}

func (uc *implUseCase) GetDay(ctx context.Context, day model.Weekday) (model.Day, error) {
	if !day.Valid() {
		return model.Day{}, &model.ValidationError{Field: "day", Reason: "unknown day " + string(day)}
	}
	h, err := uc.store.Current(ctx)
	if err != nil {
		uc.l.Errorf(ctx, "week.usecase.GetDay: %v", err)
		return model.Day{}, err
	}
	return h.Day(day), nil
}
