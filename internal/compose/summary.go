package compose

import (
	"time"

	"weekly-scheduler/internal/model"
)

const dateLayout = "2006-01-02"

func NewEventView(e model.Event) EventView {
	return EventView{
		ID:          e.ID,
		Name:        e.Name,
		Start:       e.Start.String(),
		End:         e.End.String(),
		Kind:        e.Kind,
		Origin:      e.Origin,
		ExternalRef: e.ExternalRef,
		TaskID:      e.TaskID,
	}
}

func newEventViews(events []model.Event) []EventView {
	out := make([]EventView, len(events))
	for i, e := range events {
		out[i] = NewEventView(e)
	}
	return out
}

// NewWeekSummary renders the whole week, every day present even when empty.
func NewWeekSummary(w model.WeekSchedule) WeekSummary {
	s := WeekSummary{
		WeekStart:    w.WeekStart.Format(dateLayout),
		LastModified: w.LastModified,
		TotalEvents:  w.TotalEvents(),
		Days:         make(map[model.Weekday]DaySummary, len(w.Days)),
	}
	for _, d := range w.Days {
		s.Days[d.Name] = DaySummary{
			EventCount:  len(d.Events),
			Events:      newEventViews(d.Events),
			LastUpdated: d.LastModified,
		}
	}
	for _, t := range w.Tasks {
		s.Tasks = append(s.Tasks, TaskView{
			ID:                       t.ID,
			Title:                    t.Title,
			Day:                      t.Day,
			DueTime:                  t.DueTime.String(),
			EstimatedDurationMinutes: t.EstimatedDurationMinutes,
			AllocatedMinutes:         w.AllocatedMinutes(t.ID),
			Status:                   t.Status,
		})
	}
	return s
}

func NewDayDetail(weekStart time.Time, d model.Day) DayDetail {
	return DayDetail{
		Day:         d.Name,
		Date:        model.DateOf(weekStart, d.Name).Format(dateLayout),
		Events:      newEventViews(d.Events),
		LastUpdated: d.LastModified,
	}
}
