package http

import (
	"strconv"
	"strings"
	"time"

	"weekly-scheduler/internal/dispatch"
	"weekly-scheduler/internal/model"
)

// commandReq is one command. Duration is minutes ("90") or a Go duration ("1h30m").
type commandReq struct {
	ConversationID string `json:"-"`
	Intent         string `json:"intent"`
	Day            string `json:"day"`
	Time           string `json:"time"`
	Name           string `json:"name" binding:"max=255"`
	Duration       string `json:"duration"`
	Kind           string `json:"kind" binding:"omitempty,oneof=fixed soft"`
	FromDay        string `json:"fromDay"`
	NewName        string `json:"newName" binding:"max=255"`
	Cancel         bool   `json:"cancel"`
	ClientDatetime string `json:"clientDatetime"`
}

func (r commandReq) validate() error {
	if r.Intent != "" && !dispatch.Intent(r.Intent).Valid() {
		return &model.ValidationError{Field: "intent", Reason: "unknown intent " + r.Intent}
	}
	return nil
}

func (r commandReq) toInput() (dispatch.Input, error) {
	in := dispatch.Input{
		ConversationID: r.ConversationID,
		Intent:         dispatch.Intent(r.Intent),
		Day:            r.Day,
		Time:           r.Time,
		Name:           r.Name,
		Kind:           model.EventKind(r.Kind),
		FromDay:        r.FromDay,
		NewName:        r.NewName,
		Cancel:         r.Cancel,
	}

	if d := strings.TrimSpace(r.Duration); d != "" {
		minutes, err := parseMinutes(d)
		if err != nil {
			return in, err
		}
		in.DurationMinutes = minutes
	}

	if r.ClientDatetime != "" {
		t, err := time.Parse(time.RFC3339, r.ClientDatetime)
		if err != nil {
			return in, &model.ValidationError{Field: "clientDatetime", Reason: "must be RFC 3339"}
		}
		in.ClientDatetime = t
	}
	return in, nil
}

func parseMinutes(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < time.Minute {
		return 0, &model.ValidationError{Field: "duration", Reason: "must be minutes or a duration such as 1h30m"}
	}
	return int(d / time.Minute), nil
}
