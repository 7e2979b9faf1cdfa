package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekly-scheduler/internal/dispatch"
	"weekly-scheduler/internal/model"
)

func TestParse(t *testing.T) {
	tcs := map[string]struct {
		text    string
		pending []string
		want    dispatch.Input
		act     action
		wantErr bool
	}{
		"add": {
			text: "/add monday | 14:00-15:30 | Gym",
			want: dispatch.Input{Intent: dispatch.IntentAdd, Day: "monday", Time: "14:00-15:30", Name: "Gym"},
		},
		"add partial": {
			text: "/add tomorrow",
			want: dispatch.Input{Intent: dispatch.IntentAdd, Day: "tomorrow"},
		},
		"study": {
			text: "/study friday | 1h30m | Essay",
			want: dispatch.Input{Intent: dispatch.IntentAdd, Day: "friday", Name: "Essay", Kind: model.KindSoft, DurationMinutes: 90},
		},
		"study bad duration": {
			text:    "/study friday | forever | Essay",
			wantErr: true,
		},
		"move": {
			text: "/move Gym | tuesday | 18:00",
			want: dispatch.Input{Intent: dispatch.IntentModify, Name: "Gym", Day: "tuesday", Time: "18:00"},
		},
		"delete keeps spaces": {
			text: "/delete Team sync",
			want: dispatch.Input{Intent: dispatch.IntentDelete, Name: "Team sync"},
		},
		"cancel": {
			text: "/cancel Essay",
			want: dispatch.Input{Intent: dispatch.IntentComplete, Name: "Essay", Cancel: true},
		},
		"group chat command": {
			text: "/week@schedule_bot",
			want: dispatch.Input{Intent: dispatch.IntentQueryWeek},
		},
		"today": {
			text: "/today",
			want: dispatch.Input{Intent: dispatch.IntentQueryDay, Day: "today"},
		},
		"confirm": {
			text: "Yes",
			want: dispatch.Input{Intent: dispatch.IntentConfirm},
		},
		"decline": {
			text: "no",
			want: dispatch.Input{Intent: dispatch.IntentDecline},
		},
		"answer day": {
			text:    "wednesday",
			pending: []string{dispatch.FieldDay, dispatch.FieldTime},
			want:    dispatch.Input{Day: "wednesday"},
		},
		"answer time with duration": {
			text:    "45m",
			pending: []string{dispatch.FieldTime},
			want:    dispatch.Input{DurationMinutes: 45},
		},
		"answer time": {
			text:    "3pm",
			pending: []string{dispatch.FieldTime, dispatch.FieldName},
			want:    dispatch.Input{Time: "3pm"},
		},
		"chatter without question": {
			text: "hello there",
			act:  actionHelp,
		},
		"reset": {
			text: "/reset",
			act:  actionReset,
		},
		"unknown": {
			text:    "/dance",
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			got, act, err := parse(tc.text, tc.pending)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.act, act)
			assert.Equal(t, tc.want, got)
		})
	}
}
