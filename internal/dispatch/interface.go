package dispatch

import (
	"context"

	"weekly-scheduler/internal/compose"
)

//go:generate mockery --name UseCase
type UseCase interface {
	// Dispatch runs one command of a conversation. Domain outcomes, including
	// conflicts and clarifications, are reported in the Result. The error is
	// set only when the week could not be reached or saved.
	Dispatch(ctx context.Context, in Input) (compose.Result, error)
	// Reset drops the conversation state.
	Reset(ctx context.Context, conversationID string)
}
