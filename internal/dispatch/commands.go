package dispatch

import (
	"strings"
	"time"

	"weekly-scheduler/internal/model"
)

// Command is a complete, resolved request. The set of commands is closed.
type Command interface {
	Intent() Intent
	command()
}

// AddCommand places a new event. Without a time it becomes a task whose
// study blocks are found by the slot finder.
type AddCommand struct {
	Day             model.Weekday
	Name            string
	Kind            model.EventKind
	When            *When
	DurationMinutes int
}

type DeleteCommand struct {
	// Day and At narrow the search. Zero values search the whole week.
	Day  model.Weekday
	At   *model.Clock
	Name string
}

type ModifyCommand struct {
	Name            string
	FromDay         model.Weekday
	ToDay           model.Weekday
	When            *When
	DurationMinutes int
	NewName         string
}

type QueryDayCommand struct {
	Day     model.Weekday
	IsToday bool
}

type QueryWeekCommand struct{}

type ClearDayCommand struct {
	Day model.Weekday
}

type ClearWeekCommand struct{}

type CompleteCommand struct {
	Name   string
	Cancel bool
}

type HelpCommand struct{}

type ConfirmCommand struct{}

type DeclineCommand struct{}

func (AddCommand) Intent() Intent       { return IntentAdd }
func (DeleteCommand) Intent() Intent    { return IntentDelete }
func (ModifyCommand) Intent() Intent    { return IntentModify }
func (QueryDayCommand) Intent() Intent  { return IntentQueryDay }
func (QueryWeekCommand) Intent() Intent { return IntentQueryWeek }
func (ClearDayCommand) Intent() Intent  { return IntentClearDay }
func (ClearWeekCommand) Intent() Intent { return IntentClearWeek }
func (CompleteCommand) Intent() Intent  { return IntentComplete }
func (HelpCommand) Intent() Intent      { return IntentHelp }
func (ConfirmCommand) Intent() Intent   { return IntentConfirm }
func (DeclineCommand) Intent() Intent   { return IntentDecline }

func (AddCommand) command()       {}
func (DeleteCommand) command()    {}
func (ModifyCommand) command()    {}
func (QueryDayCommand) command()  {}
func (QueryWeekCommand) command() {}
func (ClearDayCommand) command()  {}
func (ClearWeekCommand) command() {}
func (CompleteCommand) command()  {}
func (HelpCommand) command()      {}
func (ConfirmCommand) command()   {}
func (DeclineCommand) command()   {}

// Missing lists the required fields in lacks, in day, time, name order.
// A duration stands in for a time on add and modify.
func Missing(in Input) []string {
	hasDay := strings.TrimSpace(in.Day) != ""
	hasTime := strings.TrimSpace(in.Time) != "" || in.DurationMinutes > 0
	hasName := strings.TrimSpace(in.Name) != ""

	missing := []string{}
	need := func(ok bool, field string) {
		if !ok {
			missing = append(missing, field)
		}
	}
	switch in.Intent {
	case IntentAdd:
		need(hasDay, FieldDay)
		need(hasTime, FieldTime)
		need(hasName, FieldName)
	case IntentModify:
		if !hasDay && !hasTime {
			missing = append(missing, FieldDay, FieldTime)
		}
		need(hasName, FieldName)
	case IntentDelete, IntentComplete:
		need(hasName, FieldName)
	case IntentClearDay:
		need(hasDay, FieldDay)
	}
	return missing
}

// Build resolves a complete input into its command. anchor is the client's now.
func (r *Resolver) Build(in Input, anchor time.Time) (Command, error) {
	name := strings.TrimSpace(in.Name)
	switch in.Intent {
	case IntentAdd:
		day, err := r.Day(in.Day, anchor)
		if err != nil {
			return nil, err
		}
		kind := in.Kind
		if kind == "" {
			kind = model.KindFixed
		}
		if !kind.Valid() {
			return nil, &model.ValidationError{Field: "kind", Reason: "kind must be fixed or soft"}
		}
		if in.DurationMinutes < 0 {
			return nil, &model.ValidationError{Field: "duration", Reason: "duration must be positive"}
		}
		cmd := AddCommand{Day: day, Name: name, Kind: kind, DurationMinutes: in.DurationMinutes}
		if strings.TrimSpace(in.Time) != "" {
			w, err := r.When(in.Time)
			if err != nil {
				return nil, err
			}
			cmd.When = &w
		}
		return cmd, nil

	case IntentDelete:
		cmd := DeleteCommand{Name: name}
		if in.Day != "" {
			day, err := r.Day(in.Day, anchor)
			if err != nil {
				return nil, err
			}
			cmd.Day = day
		}
		if in.Time != "" {
			w, err := r.When(in.Time)
			if err != nil {
				return nil, err
			}
			cmd.At = &w.Start
		}
		return cmd, nil

	case IntentModify:
		cmd := ModifyCommand{Name: name, NewName: strings.TrimSpace(in.NewName), DurationMinutes: in.DurationMinutes}
		var err error
		if in.FromDay != "" {
			if cmd.FromDay, err = r.Day(in.FromDay, anchor); err != nil {
				return nil, err
			}
		}
		if in.Day != "" {
			if cmd.ToDay, err = r.Day(in.Day, anchor); err != nil {
				return nil, err
			}
		}
		if in.Time != "" {
			w, err := r.When(in.Time)
			if err != nil {
				return nil, err
			}
			cmd.When = &w
		}
		return cmd, nil

	case IntentQueryDay:
		expr := in.Day
		if expr == "" {
			expr = "today"
		}
		day, err := r.Day(expr, anchor)
		if err != nil {
			return nil, err
		}
		return QueryDayCommand{Day: day, IsToday: day == model.WeekdayOf(anchor.In(r.Location()))}, nil

	case IntentQueryWeek:
		return QueryWeekCommand{}, nil

	case IntentClearDay:
		day, err := r.Day(in.Day, anchor)
		if err != nil {
			return nil, err
		}
		return ClearDayCommand{Day: day}, nil

	case IntentClearWeek:
		return ClearWeekCommand{}, nil

	case IntentComplete:
		return CompleteCommand{Name: name, Cancel: in.Cancel}, nil

	case IntentHelp:
		return HelpCommand{}, nil

	case IntentConfirm:
		return ConfirmCommand{}, nil

	case IntentDecline:
		return DeclineCommand{}, nil
	}
	return nil, ErrUnknownIntent
}
