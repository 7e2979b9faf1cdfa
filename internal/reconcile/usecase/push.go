package usecase

import (
	"context"
	"errors"
	"fmt"

	"weekly-scheduler/internal/model"
	"weekly-scheduler/internal/reconcile"
	"weekly-scheduler/internal/week"
)

type ack struct {
	id  string
	ref string
	day model.Weekday
	ev  model.Event
}

type pushResult struct {
	acks    []ack
	deleted []string
	err     error
}

// push sends local changes from a snapshot without holding the week lock.
// Every remote call is attempted. The first failure is reported.
func (uc *implUseCase) push(ctx context.Context, h *week.Handle, win reconcile.Window, rep *reconcile.Report) pushResult {
	var res pushResult
	if uc.remote == nil {
		return res
	}
	name := uc.remote.Name()
	fail := func(err error) {
		rep.Errors = append(rep.Errors, err.Error())
		if res.err == nil {
			res.err = &reconcile.SyncError{Phase: reconcile.PhasePush, Source: name, Err: err}
		}
	}

	snap := h.Snapshot()
	for _, ref := range snap.Tombstones {
		if reconcile.IsFeedRef(ref) {
			res.deleted = append(res.deleted, ref)
			continue
		}
		err := uc.remote.DeleteEvent(ctx, ref)
		if err != nil && !errors.Is(err, reconcile.ErrRemoteNotFound) {
			uc.l.Warnf(ctx, "reconcile.usecase.push: delete %s: %v", ref, err)
			fail(fmt.Errorf("delete %s: %w", ref, err))
			continue
		}
		res.deleted = append(res.deleted, ref)
		rep.Deleted++
	}

	for _, d := range snap.Days {
		for _, ev := range d.Events {
			if !ev.OwnedLocally() || (ev.ExternalRef != "" && !ev.Dirty) {
				continue
			}
			ref, err := uc.pushOne(ctx, win, d.Name, ev)
			if err != nil {
				uc.l.Warnf(ctx, "reconcile.usecase.push: %s on %s: %v", ev.Name, d.Name, err)
				fail(fmt.Errorf("push %s: %w", ev.Name, err))
				continue
			}
			res.acks = append(res.acks, ack{id: ev.ID, ref: ref, day: d.Name, ev: ev})
			rep.Pushed++
		}
	}
	return res
}

// pushOne creates or updates the remote copy. A remote copy that disappeared
// since the pull is created again.
func (uc *implUseCase) pushOne(ctx context.Context, win reconcile.Window, d model.Weekday, ev model.Event) (string, error) {
	if ev.ExternalRef != "" {
		err := uc.remote.UpdateEvent(ctx, ev.ExternalRef, win, d, ev)
		if err == nil {
			return ev.ExternalRef, nil
		}
		if !errors.Is(err, reconcile.ErrRemoteNotFound) {
			return "", err
		}
	}
	return uc.remote.CreateEvent(ctx, win, d, ev)
}

// advance stores what was pushed and, when the push went through, the new cursors.
func (uc *implUseCase) advance(ctx context.Context, h *week.Handle, res pushResult, batches []reconcile.Batch, pushed bool, rep *reconcile.Report) error {
	_, err := h.Update(ctx, func(tx *week.Tx) error {
		for _, a := range res.acks {
			if prev := a.ev.ExternalRef; prev != "" && prev != a.ref {
				tx.DropBase(prev)
			}
			if !tx.MarkSynced(a.id, a.ref, a.day, a.ev) {
				// Deleted locally while it was being pushed.
				tx.Tombstone(a.ref)
			}
		}
		for _, ref := range res.deleted {
			tx.DropTombstone(ref)
		}
		if !pushed {
			return nil
		}
		for _, b := range batches {
			if b.Cursor != "" {
				tx.SetCursor(b.Source, b.Cursor)
			}
		}
		return nil
	})
	if err != nil {
		return &reconcile.SyncError{Phase: reconcile.PhaseAdvance, Err: err}
	}
	rep.CursorAdvanced = pushed
	return nil
}
