package middleware

import (
	"weekly-scheduler/pkg/log"
)

type Middleware struct {
	l      log.Logger
	apiKey string
}

// New creates the API middleware. An empty apiKey leaves the API open.
func New(l log.Logger, apiKey string) Middleware {
	return Middleware{
		l:      l,
		apiKey: apiKey,
	}
}
