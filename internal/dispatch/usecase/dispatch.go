package usecase

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"weekly-scheduler/internal/compose"
	"weekly-scheduler/internal/dispatch"
	"weekly-scheduler/internal/model"
	"weekly-scheduler/internal/slot"
	"weekly-scheduler/internal/week"
)

// Dispatch merges in with the conversation state, asks for what is missing,
// and otherwise executes the command. The conversation ends IDLE unless the
// outcome needs an answer from the user.
func (uc *implUseCase) Dispatch(ctx context.Context, in dispatch.Input) (compose.Result, error) {
	ctx, span := uc.tracer.Start(ctx, "dispatch.Dispatch", trace.WithAttributes(
		attribute.String("conversation.id", in.ConversationID),
		attribute.String("intent", string(in.Intent)),
	))
	defer span.End()

	anchor := in.ClientDatetime
	if anchor.IsZero() {
		anchor = uc.now()
	}

	sess, active := uc.sessions.Get(in.ConversationID)
	if active {
		switch sess.State {
		case dispatch.StateAwaitingConfirmation:
			uc.sessions.Delete(in.ConversationID)
			switch in.Intent {
			case dispatch.IntentConfirm:
				out, err := uc.confirm(ctx, anchor, sess)
				return uc.finish(ctx, span, in, out, err)
			case dispatch.IntentDecline:
				return uc.finish(ctx, span, in, compose.Outcome{Kind: compose.KindDeclined}, nil)
			}
		case dispatch.StateAwaitingClarification:
			if in.Intent == "" || in.Intent == sess.PendingIntent {
				in.Intent = sess.PendingIntent
				in = in.Merge(sess.Known)
			} else {
				uc.sessions.Delete(in.ConversationID)
			}
		}
	}

	switch {
	case in.Intent == dispatch.IntentConfirm || in.Intent == dispatch.IntentDecline:
		return uc.finish(ctx, span, in, compose.Outcome{Kind: compose.KindRejected, Err: dispatch.ErrNothingPending}, nil)
	case !in.Intent.Valid():
		return uc.finish(ctx, span, in, compose.Outcome{Kind: compose.KindRejected, Err: dispatch.ErrUnknownIntent}, nil)
	}

	if missing := dispatch.Missing(in); len(missing) > 0 {
		out := compose.Outcome{
			Kind:          compose.KindClarification,
			Question:      question(in.Intent, missing),
			MissingFields: missing,
		}
		return uc.finish(ctx, span, in, out, nil)
	}

	cmd, err := uc.resolver.Build(in, anchor)
	if err != nil {
		return uc.finish(ctx, span, in, compose.Outcome{Kind: compose.KindRejected, Err: err}, nil)
	}
	out, err := uc.execute(ctx, anchor, cmd)
	return uc.finish(ctx, span, in, out, err)
}

func (uc *implUseCase) Reset(ctx context.Context, conversationID string) {
	uc.sessions.Delete(conversationID)
	uc.l.Debugf(ctx, "dispatch.usecase.Reset: conversation %s", conversationID)
}

// finish records the next conversation state and composes the result.
func (uc *implUseCase) finish(ctx context.Context, span trace.Span, in dispatch.Input, out compose.Outcome, err error) (compose.Result, error) {
	span.SetAttributes(attribute.String("outcome", string(out.Kind)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		uc.l.Errorf(ctx, "dispatch.usecase.Dispatch: conversation %s intent %s: %v", in.ConversationID, in.Intent, err)
		uc.sessions.Delete(in.ConversationID)
		return compose.Compose(compose.Outcome{Kind: compose.KindFailed, Err: err}), err
	}

	switch {
	case out.Kind == compose.KindClarification:
		uc.sessions.Put(dispatch.Session{
			ConversationID: in.ConversationID,
			State:          dispatch.StateAwaitingClarification,
			PendingIntent:  in.Intent,
			Known:          in,
			MissingFields:  out.MissingFields,
			Candidates:     out.Candidates,
		})
	case out.Kind == compose.KindRecommended && out.Recommendation != nil && out.Recommendation.ProposedSlot != nil:
		uc.sessions.Put(dispatch.Session{
			ConversationID: in.ConversationID,
			State:          dispatch.StateAwaitingConfirmation,
			PendingIntent:  in.Intent,
			Known:          in,
			Recommendation: out.Recommendation,
			TargetID:       out.Recommendation.AttemptedEvent.ID,
		})
	default:
		uc.sessions.Delete(in.ConversationID)
	}

	uc.l.Infof(ctx, "dispatch.usecase.Dispatch: conversation %s intent %s outcome %s", in.ConversationID, in.Intent, out.Kind)
	return compose.Compose(out), nil
}

// execute runs a complete command against the current week. An anchor from
// another week is rejected; it never moves the store.
func (uc *implUseCase) execute(ctx context.Context, anchor time.Time, cmd dispatch.Command) (compose.Outcome, error) {
	if _, ok := cmd.(dispatch.HelpCommand); ok {
		return compose.Outcome{Kind: compose.KindHelp}, nil
	}
	h, err := uc.store.At(ctx, anchor)
	if err != nil {
		return uc.fail(ctx, err, "")
	}

	switch c := cmd.(type) {
	case dispatch.AddCommand:
		return uc.add(ctx, h, c)
	case dispatch.DeleteCommand:
		return uc.delete(ctx, h, c)
	case dispatch.ModifyCommand:
		return uc.modify(ctx, h, c)
	case dispatch.QueryDayCommand:
		day := h.Day(c.Day)
		return compose.Outcome{Kind: compose.KindDayQuery, Day: c.Day, DayView: &day, IsToday: c.IsToday, WeekStart: h.WeekStart()}, nil
	case dispatch.QueryWeekCommand:
		return compose.Outcome{Kind: compose.KindWeekQuery, Week: h.Snapshot()}, nil
	case dispatch.ClearDayCommand:
		return uc.clearDay(ctx, h, c)
	case dispatch.ClearWeekCommand:
		return uc.clearWeek(ctx, h)
	case dispatch.CompleteCommand:
		return uc.complete(ctx, h, c)
	case dispatch.ConfirmCommand, dispatch.DeclineCommand:
		return compose.Outcome{Kind: compose.KindRejected, Err: dispatch.ErrNothingPending}, nil
	}
	return compose.Outcome{Kind: compose.KindRejected, Err: dispatch.ErrUnknownIntent}, nil
}

// confirm commits a pending recommendation. It goes through the same checks as
// a fresh command, so a slot taken in the meantime yields a new recommendation.
func (uc *implUseCase) confirm(ctx context.Context, anchor time.Time, sess dispatch.Session) (compose.Outcome, error) {
	rec := sess.Recommendation
	if rec == nil || rec.ProposedSlot == nil {
		return compose.Outcome{Kind: compose.KindRejected, Err: dispatch.ErrNothingPending}, nil
	}
	h, err := uc.store.At(ctx, anchor)
	if err != nil {
		return uc.fail(ctx, err, rec.Day)
	}
	if sess.TargetID != "" {
		return uc.move(ctx, h, sess.TargetID, rec.Day, *rec.ProposedSlot, "")
	}
	ev := rec.AttemptedEvent
	ev.Start, ev.End = rec.ProposedSlot.Start, rec.ProposedSlot.End
	return uc.addEvent(ctx, h, rec.Day, ev)
}

// fail turns domain errors into outcomes. Anything else is returned as an error.
func (uc *implUseCase) fail(ctx context.Context, err error, day model.Weekday) (compose.Outcome, error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, week.ErrRemoteOwned),
		errors.Is(err, week.ErrOutsideWeek),
		errors.Is(err, slot.ErrInvalidDuration):
		return compose.Outcome{Kind: compose.KindRejected, Day: day, Err: err}, nil
	case errors.Is(err, slot.ErrInfeasible):
		return compose.Outcome{Kind: compose.KindInfeasible, Day: day, Err: err}, nil
	}
	return compose.Outcome{Kind: compose.KindFailed, Day: day, Err: err}, err
}
