package http

import (
	"weekly-scheduler/internal/reconcile"
	"weekly-scheduler/pkg/log"
)

type handler struct {
	l  log.Logger
	uc reconcile.UseCase
}

// New creates the HTTP handler for manual reconciliation.
func New(l log.Logger, uc reconcile.UseCase) *handler {
	return &handler{
		l:  l,
		uc: uc,
	}
}
