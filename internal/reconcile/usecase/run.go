package usecase

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"weekly-scheduler/internal/reconcile"
)

// Run executes pull, diff, optimize, push and cursor advance against the
// current week. Each phase commits on its own, so an interrupted cycle leaves
// a consistent week and the old cursor behind.
func (uc *implUseCase) Run(ctx context.Context) (reconcile.Report, error) {
	if !uc.running.TryLock() {
		return reconcile.Report{}, reconcile.ErrInProgress
	}
	defer uc.running.Unlock()

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	ctx, span := uc.tracer.Start(ctx, "reconcile.Run")
	defer span.End()

	started := uc.now()
	rep := reconcile.Report{StartedAt: started}

	h, err := uc.store.Current(ctx)
	if err != nil {
		return uc.finish(ctx, span, rep, &reconcile.SyncError{Phase: reconcile.PhasePull, Err: err})
	}
	snap := h.Snapshot()
	win := reconcile.NewWindow(snap.WeekStart, uc.loc)
	rep.WeekStart = win.Start
	span.SetAttributes(attribute.String("reconcile.week", win.Start.Format("2006-01-02")))

	var batches []reconcile.Batch
	err = uc.phase(ctx, reconcile.PhasePull, func(ctx context.Context) error {
		batches, err = uc.pull(ctx, win, snap.Cursors, &rep)
		return err
	})
	if err != nil {
		return uc.finish(ctx, span, rep, err)
	}

	if err := uc.phase(ctx, reconcile.PhaseDiff, func(ctx context.Context) error {
		return uc.diff(ctx, h, batches, &rep)
	}); err != nil {
		return uc.finish(ctx, span, rep, err)
	}

	if err := uc.phase(ctx, reconcile.PhaseOptimize, func(ctx context.Context) error {
		return uc.optimize(ctx, h, &rep)
	}); err != nil {
		return uc.finish(ctx, span, rep, err)
	}

	var res pushResult
	pushErr := uc.phase(ctx, reconcile.PhasePush, func(ctx context.Context) error {
		res = uc.push(ctx, h, win, &rep)
		return res.err
	})

	if err := uc.phase(ctx, reconcile.PhaseAdvance, func(ctx context.Context) error {
		return uc.advance(ctx, h, res, batches, pushErr == nil, &rep)
	}); err != nil {
		return uc.finish(ctx, span, rep, err)
	}
	return uc.finish(ctx, span, rep, pushErr)
}

func (uc *implUseCase) phase(ctx context.Context, p reconcile.Phase, fn func(ctx context.Context) error) error {
	ctx, span := uc.tracer.Start(ctx, "reconcile."+string(p),
		trace.WithAttributes(attribute.String("reconcile.phase", string(p))))
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (uc *implUseCase) finish(ctx context.Context, span trace.Span, rep reconcile.Report, err error) (reconcile.Report, error) {
	rep.Duration = uc.now().Sub(rep.StartedAt).String()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		rep.Errors = append(rep.Errors, err.Error())
		uc.l.Warnf(ctx, "reconcile.usecase.Run: cycle failed: %v", err)
		return rep, err
	}
	uc.l.Infof(ctx, "reconcile.usecase.Run: week %s pulled=%d inserted=%d updated=%d removed=%d allocated=%d pushed=%d deleted=%d",
		rep.WeekStart.Format("2006-01-02"), rep.Pulled, rep.Inserted, rep.Updated, rep.Removed, rep.Allocated, rep.Pushed, rep.Deleted)
	return rep, nil
}
