package usecase

import (
	"context"
	"fmt"

	"weekly-scheduler/internal/model"
	"weekly-scheduler/pkg/icsfeed"
)

const uidDomain = "@weekly-scheduler"

// ExportICS renders the current week as an iCalendar document.
func (uc *implUseCase) ExportICS(ctx context.Context) (string, error) {
	w, err := uc.GetWeek(ctx)
	if err != nil {
		return "", err
	}

	start := w.WeekStart.In(uc.loc)
	var events []icsfeed.ExportEvent
	for _, d := range w.Days {
		date := model.DateOf(start, d.Name)
		for _, e := range d.Events {
			ee := icsfeed.ExportEvent{
				UID:      e.ID + uidDomain,
				Summary:  e.Name,
				Category: string(e.Kind),
				Start:    e.Start.On(date),
				End:      e.End.On(date),
			}
			if e.TaskID != "" {
				if t, ok := w.Task(e.TaskID); ok {
					ee.Description = fmt.Sprintf("Study block for %s", t.Title)
				}
			}
			events = append(events, ee)
		}
	}

	name := "Week of " + start.Format("2006-01-02")
	return icsfeed.Build(name, events, uc.now()), nil
}
