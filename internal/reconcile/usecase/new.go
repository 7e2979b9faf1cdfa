package usecase

import (
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"weekly-scheduler/internal/reconcile"
	"weekly-scheduler/internal/slot"
	"weekly-scheduler/internal/week"
	"weekly-scheduler/pkg/log"
)

const (
	tracerName     = "weekly-scheduler/reconcile"
	DefaultTimeout = 30 * time.Second
)

// Config wires the engine. Remote may be nil when only read-only feeds are configured.
type Config struct {
	Store     week.Store
	Remote    reconcile.Remote
	Feeds     []reconcile.Feed
	Allocator *slot.Allocator
	Location  *time.Location
	// Timeout bounds a whole cycle, remote calls included.
	Timeout time.Duration
	Now     func() time.Time
}

type implUseCase struct {
	store     week.Store
	remote    reconcile.Remote
	feeds     []reconcile.Feed
	allocator *slot.Allocator
	loc       *time.Location
	timeout   time.Duration
	now       func() time.Time
	tracer    trace.Tracer
	l         log.Logger

	running sync.Mutex
}

// New creates the reconciliation engine.
func New(l log.Logger, cfg Config) reconcile.UseCase {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &implUseCase{
		store:     cfg.Store,
		remote:    cfg.Remote,
		feeds:     cfg.Feeds,
		allocator: cfg.Allocator,
		loc:       loc,
		timeout:   timeout,
		now:       now,
		tracer:    otel.Tracer(tracerName),
		l:         l,
	}
}
