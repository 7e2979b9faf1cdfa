package usecase

import (
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"weekly-scheduler/internal/dispatch"
	"weekly-scheduler/internal/model"
	"weekly-scheduler/internal/slot"
	"weekly-scheduler/internal/week"
	"weekly-scheduler/pkg/log"
)

const tracerName = "weekly-scheduler/dispatch"

// Config wires the collaborators of the dispatcher.
type Config struct {
	Store    week.Store
	Resolver *dispatch.Resolver
	Sessions *dispatch.SessionStore
	// Finder proposes alternatives after a conflict. Allocator places study blocks.
	Finder    slot.Finder
	Allocator *slot.Allocator
	// RecommendationBufferMinutes is kept free around fixed events when proposing a slot.
	RecommendationBufferMinutes int
	// TaskDue is the default deadline of flexible work on its day.
	TaskDue model.Clock
	Now     func() time.Time
}

type implUseCase struct {
	store     week.Store
	resolver  *dispatch.Resolver
	sessions  *dispatch.SessionStore
	finder    slot.Finder
	allocator *slot.Allocator
	recBuffer int
	taskDue   model.Clock
	now       func() time.Time
	tracer    trace.Tracer
	l         log.Logger
}

// New creates the dispatcher.
func New(l log.Logger, cfg Config) dispatch.UseCase {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	due := cfg.TaskDue
	if due <= 0 {
		due = model.NewClock(21, 0)
	}
	return &implUseCase{
		store:     cfg.Store,
		resolver:  cfg.Resolver,
		sessions:  cfg.Sessions,
		finder:    cfg.Finder,
		allocator: cfg.Allocator,
		recBuffer: cfg.RecommendationBufferMinutes,
		taskDue:   due,
		now:       now,
		tracer:    otel.Tracer(tracerName),
		l:         l,
	}
}
