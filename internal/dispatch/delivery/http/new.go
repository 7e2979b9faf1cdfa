package http

import (
	"weekly-scheduler/internal/dispatch"
	"weekly-scheduler/pkg/log"
)

type handler struct {
	l  log.Logger
	uc dispatch.UseCase
}

// New creates the HTTP handler for conversation commands.
func New(l log.Logger, uc dispatch.UseCase) *handler {
	return &handler{
		l:  l,
		uc: uc,
	}
}
