// Package compose turns dispatch outcomes into structured diffs and the plain
// text read back to the user.
package compose

import (
	"errors"
	"fmt"
	"strings"

	"weekly-scheduler/internal/model"
)

// HelpText lists what the scheduler understands.
const HelpText = "I can manage your week. Try \"add a meeting on Monday at 2pm\", " +
	"\"study for 3 hours on Thursday\", \"move the dentist to Friday at 10am\", " +
	"\"delete the gym on Wednesday\", \"what's on tomorrow\", \"clear Friday\" or \"start the week fresh\"."

// Compose builds the Result for o.
func Compose(o Outcome) Result {
	r := Result{
		Success:      true,
		ChangesMade:  newChangesMade(o.Changes),
		AffectedDays: o.Changes.Days(),
	}

	switch o.Kind {
	case KindAdded, KindModified, KindDeleted:
		r.ResponseText = describeChanges(o.Changes)
	case KindNotFound:
		r.ResponseText = notFoundText(o.Target, o.Day)
	case KindClearedDay:
		r.AffectedDays = []model.Weekday{o.Day}
		if len(o.Changes.Deleted) == 0 {
			r.ResponseText = fmt.Sprintf("%s was already clear.", o.Day.Title())
		} else {
			r.ResponseText = fmt.Sprintf("Cleared %s. %s removed.", o.Day.Title(), countEvents(len(o.Changes.Deleted)))
		}
	case KindClearedWeek:
		r.AffectedDays = append([]model.Weekday(nil), model.Weekdays[:]...)
		r.ResponseText = "Your week is cleared. Starting fresh."
	case KindRecommended:
		r.Conflict = o.Recommendation
		r.ResponseText = recommendationText(o.Recommendation)
	case KindClarification:
		r.Success = false
		r.ClarificationNeeded = &Clarification{
			Question:      o.Question,
			MissingFields: nonNil(o.MissingFields),
			Candidates:    o.Candidates,
		}
		r.ResponseText = o.Question
	case KindDayQuery:
		r.ResponseText = dayText(o.DayView, o.IsToday)
		if o.DayView != nil {
			r.Data = NewDayDetail(o.WeekStart, *o.DayView)
		}
	case KindWeekQuery:
		r.ResponseText = weekText(o.Week)
		if o.Week != nil {
			r.Data = NewWeekSummary(*o.Week)
		}
	case KindTaskScheduled:
		r.ResponseText = taskScheduledText(o)
	case KindTaskCompleted:
		r.ResponseText = taskCompletedText(o)
	case KindInfeasible:
		r.Success = false
		r.ResponseText = infeasibleText(o)
	case KindRejected:
		r.Success = false
		r.ResponseText = rejectedText(o.Err)
	case KindDeclined:
		r.ResponseText = "Okay, I left your schedule as it was."
	case KindHelp:
		r.ResponseText = HelpText
	default:
		r.Success = false
		r.ResponseText = "Something went wrong while updating your schedule. Please try again."
	}
	return r
}

func newChangesMade(cs model.ChangeSet) ChangesMade {
	return ChangesMade{
		Added:    newEventChanges(cs.Added),
		Deleted:  newEventChanges(cs.Deleted),
		Modified: newEventChanges(cs.Modified),
	}
}

func newEventChanges(in []model.Change) []EventChange {
	out := make([]EventChange, 0, len(in))
	for _, c := range in {
		ec := EventChange{Day: c.Day, Event: NewEventView(c.Event)}
		if c.Previous != nil {
			ec.From = &EventChangeRef{
				Day:   c.PreviousDay,
				Start: c.Previous.Start.String(),
				End:   c.Previous.End.String(),
				Name:  c.Previous.Name,
			}
		}
		out = append(out, ec)
	}
	return out
}

func describeChanges(cs model.ChangeSet) string {
	var parts []string
	for _, c := range cs.Added {
		parts = append(parts, fmt.Sprintf("Added %s on %s at %s.", c.Event.Name, c.Day.Title(), Spoken(c.Event.Start)))
	}
	for _, c := range cs.Modified {
		parts = append(parts, fmt.Sprintf("Moved %s to %s at %s.", c.Event.Name, c.Day.Title(), Spoken(c.Event.Start)))
	}
	for _, c := range cs.Deleted {
		parts = append(parts, fmt.Sprintf("Removed %s from %s.", c.Event.Name, c.Day.Title()))
	}
	if len(parts) == 0 {
		return "No changes were needed."
	}
	return strings.Join(parts, " ")
}

func notFoundText(target string, d model.Weekday) string {
	if d == "" {
		return fmt.Sprintf("I couldn't find %s this week, so nothing changed.", quoted(target))
	}
	return fmt.Sprintf("I couldn't find %s on %s, so nothing changed.", quoted(target), d.Title())
}

func recommendationText(rec *model.ConflictRecommendation) string {
	if rec == nil {
		return "That time is taken."
	}
	msg := fmt.Sprintf("I couldn't add %s because it conflicts with %s at %s.",
		quoted(rec.AttemptedEvent.Name), quoted(rec.ConflictingEvent.Name), Spoken(rec.ConflictingEvent.Start))
	if rec.ProposedSlot == nil {
		return msg + fmt.Sprintf(" There is no other free slot on %s.", rec.Day.Title())
	}
	return msg + fmt.Sprintf(" I recommend %s instead. Would you like to do that?", Spoken(rec.ProposedSlot.Start))
}

func dayText(d *model.Day, isToday bool) string {
	if d == nil {
		return "I couldn't read that day."
	}
	label := "On " + d.Name.Title()
	if isToday {
		label = "Today"
	}
	if len(d.Events) == 0 {
		return label + " you have nothing scheduled."
	}
	items := make([]string, len(d.Events))
	for i, e := range d.Events {
		items[i] = fmt.Sprintf("%s at %s", e.Name, Spoken(e.Start))
	}
	return fmt.Sprintf("%s you have %s: %s.", label, countEvents(len(d.Events)), joinList(items))
}

func weekText(w *model.WeekSchedule) string {
	if w == nil || w.TotalEvents() == 0 {
		return "Your week is empty."
	}
	var busy []string
	for _, d := range w.Days {
		if n := len(d.Events); n > 0 {
			busy = append(busy, fmt.Sprintf("%s on %s", countEvents(n), d.Name.Title()))
		}
	}
	return fmt.Sprintf("You have %s this week: %s.", countEvents(w.TotalEvents()), joinList(busy))
}

func taskScheduledText(o Outcome) string {
	title := "the task"
	if o.Task != nil {
		title = o.Task.Title
	}
	n := len(o.Changes.Added)
	msg := fmt.Sprintf("Scheduled %s in %s on %s.", title, countBlocks(n), o.Day.Title())
	if o.ShortfallMinutes > 0 {
		msg += fmt.Sprintf(" %d minutes did not fit and will be placed when room frees up.", o.ShortfallMinutes)
	}
	return msg
}

func taskCompletedText(o Outcome) string {
	title := "the task"
	if o.Task != nil {
		title = o.Task.Title
	}
	if o.Task != nil && o.Task.Status == model.TaskCancelled {
		return fmt.Sprintf("Cancelled %s and freed its time.", title)
	}
	return fmt.Sprintf("Marked %s as done and freed its remaining time.", title)
}

func infeasibleText(o Outcome) string {
	if o.Day == "" {
		return "There is no room left for that."
	}
	return fmt.Sprintf("There is no room left on %s for that. Try another day or a shorter duration.", o.Day.Title())
}

func rejectedText(err error) string {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return fmt.Sprintf("I couldn't do that: %s.", verr.Reason)
	}
	if err != nil {
		return fmt.Sprintf("I couldn't do that: %v.", err)
	}
	return "I couldn't do that."
}

// Spoken formats c for narration, e.g. "2 PM" or "9:30 AM".
func Spoken(c model.Clock) string {
	if c == model.EndOfDay || c == model.Midnight {
		return "midnight"
	}
	h, m := c.Hour(), c.Minute()
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	if h = h % 12; h == 0 {
		h = 12
	}
	if m == 0 {
		return fmt.Sprintf("%d %s", h, suffix)
	}
	return fmt.Sprintf("%d:%02d %s", h, m, suffix)
}

func countEvents(n int) string {
	if n == 1 {
		return "1 event"
	}
	return fmt.Sprintf("%d events", n)
}

func countBlocks(n int) string {
	if n == 1 {
		return "1 block"
	}
	return fmt.Sprintf("%d blocks", n)
}

func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}

func quoted(s string) string { return "'" + s + "'" }

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
