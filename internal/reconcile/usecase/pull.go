package usecase

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"weekly-scheduler/internal/reconcile"
)

// pull fetches every source concurrently. A failing feed is skipped for this
// cycle. A failing primary calendar fails the cycle.
func (uc *implUseCase) pull(ctx context.Context, win reconcile.Window, cursors map[string]string, rep *reconcile.Report) ([]reconcile.Batch, error) {
	var primary *reconcile.Batch
	feeds := make([]*reconcile.Batch, len(uc.feeds))
	feedErrs := make([]error, len(uc.feeds))

	g, gctx := errgroup.WithContext(ctx)
	if uc.remote != nil {
		g.Go(func() error {
			b, err := uc.pullPrimary(gctx, win, cursors[uc.remote.Name()])
			if err != nil {
				return &reconcile.SyncError{Phase: reconcile.PhasePull, Source: uc.remote.Name(), Err: err}
			}
			primary = &b
			return nil
		})
	}
	for i, f := range uc.feeds {
		g.Go(func() error {
			b, err := f.Pull(gctx, win, cursors[f.Name()])
			if err != nil {
				feedErrs[i] = err
				return nil
			}
			b.Source = f.Name()
			feeds[i] = &b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []reconcile.Batch
	if primary != nil {
		out = append(out, *primary)
	}
	for i, b := range feeds {
		if b == nil {
			name := uc.feeds[i].Name()
			uc.l.Warnf(ctx, "reconcile.usecase.pull: skip feed %s: %v", name, feedErrs[i])
			rep.SkippedSources = append(rep.SkippedSources, name)
			rep.Errors = append(rep.Errors, fmt.Sprintf("feed %s: %v", name, feedErrs[i]))
			continue
		}
		out = append(out, *b)
	}
	for _, b := range out {
		rep.Pulled += len(b.Events)
	}
	return out, nil
}

// pullPrimary falls back to a full listing when the cursor was rejected.
func (uc *implUseCase) pullPrimary(ctx context.Context, win reconcile.Window, cursor string) (reconcile.Batch, error) {
	b, err := uc.remote.PullChangedSince(ctx, win, cursor)
	if errors.Is(err, reconcile.ErrCursorExpired) && cursor != "" {
		uc.l.Infof(ctx, "reconcile.usecase.pullPrimary: cursor of %s expired, pulling the whole week", uc.remote.Name())
		b, err = uc.remote.PullChangedSince(ctx, win, "")
	}
	if err != nil {
		return reconcile.Batch{}, err
	}
	b.Source = uc.remote.Name()
	return b, nil
}

func (uc *implUseCase) isPrimary(source string) bool {
	return uc.remote != nil && uc.remote.Name() == source
}
