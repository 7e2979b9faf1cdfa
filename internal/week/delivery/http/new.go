package http

import (
	"weekly-scheduler/internal/week"
	"weekly-scheduler/pkg/log"
)

type handler struct {
	l  log.Logger
	uc week.UseCase
}

// New creates the HTTP handler for week queries.
func New(l log.Logger, uc week.UseCase) *handler {
	return &handler{
		l:  l,
		uc: uc,
	}
}
