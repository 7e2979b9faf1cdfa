package usecase

import "weekly-scheduler/internal/dispatch"

// question phrases a follow-up for the missing fields.
func question(intent dispatch.Intent, missing []string) string {
	has := map[string]bool{}
	for _, f := range missing {
		has[f] = true
	}

	switch {
	case has[dispatch.FieldDay] && has[dispatch.FieldTime]:
		if intent == dispatch.IntentModify {
			return "When should I move it to?"
		}
		return "When would you like to schedule that?"
	case has[dispatch.FieldDay]:
		if intent == dispatch.IntentClearDay {
			return "Which day should I clear?"
		}
		return "Which day would you like to schedule that?"
	case has[dispatch.FieldTime]:
		return "What time would you like to schedule that?"
	case has[dispatch.FieldName]:
		switch intent {
		case dispatch.IntentDelete:
			return "Which event should I remove?"
		case dispatch.IntentModify:
			return "Which event should I move?"
		case dispatch.IntentComplete:
			return "Which task did you finish?"
		}
		return "What should I call it?"
	}
	return "Could you give me a few more details?"
}
