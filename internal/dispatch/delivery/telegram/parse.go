package telegram

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"weekly-scheduler/internal/dispatch"
	"weekly-scheduler/internal/model"
)

const helpText = `Commands (fields are separated by |, any of them may be left out):
/add day | time | name        e.g. /add monday | 14:00-15:30 | Gym
/study day | duration | name  e.g. /study friday | 2h | Essay
/move name | day | time
/delete name
/done name, /cancel name
/today, /day monday, /week
/clear day, /clearweek
/reset forgets the current question.
Answer yes or no when asked to confirm.`

var errUnknownCommand = errors.New("unknown command, send /help")

type action int

const (
	actionDispatch action = iota
	actionReset
	actionHelp
)

// parse turns one message into dispatcher input. pending lists the fields
// the bot asked for last; plain text answers the first of them.
func parse(text string, pending []string) (dispatch.Input, action, error) {
	text = strings.TrimSpace(text)

	if !strings.HasPrefix(text, "/") {
		switch strings.ToLower(text) {
		case "yes", "y", "ok", "sure":
			return dispatch.Input{Intent: dispatch.IntentConfirm}, actionDispatch, nil
		case "no", "n", "nope":
			return dispatch.Input{Intent: dispatch.IntentDecline}, actionDispatch, nil
		}
		if len(pending) == 0 {
			return dispatch.Input{}, actionHelp, nil
		}
		var in dispatch.Input
		if err := setField(&in, pending[0], text); err != nil {
			return in, actionDispatch, err
		}
		return in, actionDispatch, nil
	}

	cmd, rest, _ := strings.Cut(text, " ")
	// Group chats address commands as /week@botname.
	cmd, _, _ = strings.Cut(strings.ToLower(cmd), "@")
	args := fields(rest)

	switch cmd {
	case "/start", "/help":
		return dispatch.Input{}, actionHelp, nil
	case "/reset":
		return dispatch.Input{}, actionReset, nil
	case "/add":
		return dispatch.Input{Intent: dispatch.IntentAdd, Day: args[0], Time: args[1], Name: args[2]}, actionDispatch, nil
	case "/study":
		in := dispatch.Input{Intent: dispatch.IntentAdd, Day: args[0], Name: args[2], Kind: model.KindSoft}
		if args[1] != "" {
			m, err := parseMinutes(args[1])
			if err != nil {
				return in, actionDispatch, err
			}
			in.DurationMinutes = m
		}
		return in, actionDispatch, nil
	case "/move":
		return dispatch.Input{Intent: dispatch.IntentModify, Name: args[0], Day: args[1], Time: args[2]}, actionDispatch, nil
	case "/delete":
		return dispatch.Input{Intent: dispatch.IntentDelete, Name: strings.TrimSpace(rest)}, actionDispatch, nil
	case "/done":
		return dispatch.Input{Intent: dispatch.IntentComplete, Name: strings.TrimSpace(rest)}, actionDispatch, nil
	case "/cancel":
		return dispatch.Input{Intent: dispatch.IntentComplete, Name: strings.TrimSpace(rest), Cancel: true}, actionDispatch, nil
	case "/today":
		return dispatch.Input{Intent: dispatch.IntentQueryDay, Day: "today"}, actionDispatch, nil
	case "/day":
		return dispatch.Input{Intent: dispatch.IntentQueryDay, Day: args[0]}, actionDispatch, nil
	case "/week":
		return dispatch.Input{Intent: dispatch.IntentQueryWeek}, actionDispatch, nil
	case "/clear":
		return dispatch.Input{Intent: dispatch.IntentClearDay, Day: args[0]}, actionDispatch, nil
	case "/clearweek":
		return dispatch.Input{Intent: dispatch.IntentClearWeek}, actionDispatch, nil
	}
	return dispatch.Input{}, actionDispatch, errUnknownCommand
}

// fields splits "a | b | c" into exactly three trimmed parts.
func fields(s string) [3]string {
	var out [3]string
	for i, part := range strings.SplitN(s, "|", 3) {
		out[i] = strings.TrimSpace(part)
	}
	return out
}

func setField(in *dispatch.Input, field, value string) error {
	switch field {
	case dispatch.FieldDay, dispatch.FieldFromDay:
		in.Day = value
	case dispatch.FieldTime:
		// A bare duration answers the time question of a study task.
		if m, err := parseMinutes(value); err == nil {
			in.DurationMinutes = m
			return nil
		}
		in.Time = value
	case dispatch.FieldName:
		in.Name = value
	default:
		return fmt.Errorf("cannot answer %s from text", field)
	}
	return nil
}

func parseMinutes(s string) (int, error) {
	d, err := time.ParseDuration(strings.ReplaceAll(strings.ToLower(s), " ", ""))
	if err != nil || d < time.Minute {
		return 0, fmt.Errorf("invalid duration %q, try 90m or 1h30m", s)
	}
	return int(d / time.Minute), nil
}
