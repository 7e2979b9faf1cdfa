package icsfeed

import (
	"time"

	ical "github.com/arran4/golang-ical"
)

const productID = "-//weekly-scheduler//week export//EN"

// Build renders events as an iCalendar document.
func Build(name string, events []ExportEvent, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if name != "" {
		cal.SetName(name)
	}

	for _, e := range events {
		ve := cal.AddEvent(e.UID)
		ve.SetDtStampTime(now)
		ve.SetStartAt(e.Start)
		ve.SetEndAt(e.End)
		ve.SetSummary(e.Summary)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if e.Category != "" {
			ve.AddProperty(ical.ComponentPropertyCategories, e.Category)
		}
	}
	return cal.Serialize()
}
