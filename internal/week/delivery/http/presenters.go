package http

import (
	"time"

	"weekly-scheduler/internal/compose"
	"weekly-scheduler/internal/model"
)

type dayReq struct {
	Day string `uri:"day" binding:"required"`
}

func (r dayReq) toInput() (model.Weekday, error) {
	return model.ParseWeekday(r.Day)
}

type dayResp struct {
	Day         model.Weekday       `json:"day"`
	EventCount  int                 `json:"eventCount"`
	Events      []compose.EventView `json:"events"`
	LastUpdated time.Time           `json:"lastUpdated"`
}

func (h *handler) newDayResp(d model.Day) dayResp {
	events := make([]compose.EventView, len(d.Events))
	for i, e := range d.Events {
		events[i] = compose.NewEventView(e)
	}
	return dayResp{
		Day:         d.Name,
		EventCount:  len(d.Events),
		Events:      events,
		LastUpdated: d.LastModified,
	}
}

func (h *handler) newWeekResp(w model.WeekSchedule) compose.WeekSummary {
	return compose.NewWeekSummary(w)
}
