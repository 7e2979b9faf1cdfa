package usecase

import (
	"context"

	"weekly-scheduler/internal/conflict"
	"weekly-scheduler/internal/model"
	"weekly-scheduler/internal/reconcile"
	"weekly-scheduler/internal/week"
)

// diff merges the pulled batches into the week under one lock.
func (uc *implUseCase) diff(ctx context.Context, h *week.Handle, batches []reconcile.Batch, rep *reconcile.Report) error {
	_, err := h.Update(ctx, func(tx *week.Tx) error {
		for _, b := range batches {
			if b.Unchanged {
				continue
			}
			uc.applyBatch(ctx, tx, b, rep)
		}
		return nil
	})
	if err != nil {
		return &reconcile.SyncError{Phase: reconcile.PhaseDiff, Err: err}
	}
	return nil
}

func (uc *implUseCase) applyBatch(ctx context.Context, tx *week.Tx, b reconcile.Batch, rep *reconcile.Report) {
	primary := uc.isPrimary(b.Source)
	seen := map[string]bool{}
	for _, re := range b.Events {
		if !primary {
			re.Ref = reconcile.FeedRef(b.Source, re.Ref)
			re.Kind = model.KindFixed
			re.LocalID, re.TaskID = "", ""
		}
		seen[re.Ref] = true
		uc.applyOne(ctx, tx, re, rep)
	}
	if !b.Full {
		return
	}

	// Known refs of this source missing from a full listing were deleted remotely.
	w := tx.Schedule()
	var gone []string
	for ref := range w.SyncBase {
		if !seen[ref] && reconcile.OwnedBy(b.Source, primary, ref) {
			seen[ref] = true
			gone = append(gone, ref)
		}
	}
	for _, d := range w.Days {
		for _, e := range d.Events {
			if e.ExternalRef != "" && !seen[e.ExternalRef] && reconcile.OwnedBy(b.Source, primary, e.ExternalRef) {
				seen[e.ExternalRef] = true
				gone = append(gone, e.ExternalRef)
			}
		}
	}
	for _, ref := range gone {
		uc.applyOne(ctx, tx, reconcile.RemoteEvent{Ref: ref, Deleted: true}, rep)
	}
}

func (uc *implUseCase) applyOne(ctx context.Context, tx *week.Tx, re reconcile.RemoteEvent, rep *reconcile.Report) {
	w := tx.Schedule()

	var local *reconcile.Local
	if d, ev, ok := w.FindByRef(re.Ref); ok {
		local = &reconcile.Local{Day: d, Event: ev}
	} else if re.LocalID != "" {
		if d, ev, ok := w.FindEvent(re.LocalID); ok && ev.ExternalRef == "" {
			local = &reconcile.Local{Day: d, Event: ev}
		}
	}

	// One of ours that no longer exists here: delete the remote copy too.
	if local == nil && re.LocalID != "" && !re.Deleted {
		if _, known := w.SyncBase[re.Ref]; !known {
			tx.SetBase(re.Ref, re.Slot())
			tx.Tombstone(re.Ref)
			return
		}
	}

	var base *model.BaseEntry
	if b, ok := w.SyncBase[re.Ref]; ok {
		base = &b
	}

	switch reconcile.Decide(base, local, re, tombstoned(w, re.Ref)) {
	case reconcile.ActionInsert:
		ev := model.Event{
			Name:        re.Name,
			Start:       re.Start,
			End:         re.End,
			Kind:        model.KindFixed,
			ExternalRef: re.Ref,
			Origin:      model.OriginRemote,
		}
		uc.placeFixed(ctx, tx, re.Day, ev, rep)
		tx.SetBase(re.Ref, re.Slot())
		rep.Inserted++

	case reconcile.ActionAcceptRemote:
		ev := local.Event
		ev.Name, ev.Start, ev.End = re.Name, re.Start, re.End
		ev.ExternalRef = re.Ref
		ev.Dirty = false
		if ev.IsStudyBlock() {
			uc.clampStudyBlock(ctx, w, local.Event, &ev)
		}
		if ev.IsFixed() {
			uc.placeFixed(ctx, tx, re.Day, ev, rep)
		} else {
			tx.PutEvent(re.Day, ev)
		}
		tx.SetBase(re.Ref, re.Slot())
		rep.Updated++

	case reconcile.ActionRebase:
		remote := local.Event
		remote.Name, remote.Start, remote.End = re.Name, re.Start, re.End
		tx.MarkSynced(local.Event.ID, re.Ref, re.Day, remote)

	case reconcile.ActionRemove:
		tx.RemoveEvent(local.Event.ID, false)
		tx.DropBase(re.Ref)
		rep.Removed++
		if local.Event.IsStudyBlock() {
			uc.l.Infof(ctx, "reconcile.usecase.applyOne: study block of task %s removed remotely, minutes freed", local.Event.TaskID)
		}

	case reconcile.ActionForget:
		tx.DropTombstone(re.Ref)
	}
}

// clampStudyBlock shortens a study block stretched remotely so its task is not
// allocated more than its estimate. The block never gets shorter than it was.
// A clamped block is marked dirty so the next push corrects the remote copy.
func (uc *implUseCase) clampStudyBlock(ctx context.Context, w *model.WeekSchedule, prev model.Event, ev *model.Event) {
	t, ok := w.Task(prev.TaskID)
	if !ok || ev.Minutes() <= prev.Minutes() {
		return
	}
	keep := t.EstimatedDurationMinutes - (w.AllocatedMinutes(t.ID) - prev.Minutes())
	if keep < prev.Minutes() {
		keep = prev.Minutes()
	}
	if ev.Minutes() <= keep {
		return
	}
	uc.l.Infof(ctx, "reconcile.usecase.clampStudyBlock: %s stretched to %d minutes remotely, kept %d", ev.Name, ev.Minutes(), keep)
	ev.End = ev.Start.Add(keep)
	ev.Dirty = true
}

// placeFixed stores a remote fixed event and evicts the soft events under it.
// An overlap with a local fixed event is kept and reported.
func (uc *implUseCase) placeFixed(ctx context.Context, tx *week.Tx, d model.Weekday, ev model.Event, rep *reconcile.Report) {
	for _, hit := range conflict.DetectAll(tx.GetDay(d), ev) {
		rep.Overlaps++
		uc.l.Warnf(ctx, "reconcile.usecase.placeFixed: %s %s on %s overlaps %s", ev.Name, ev.Range(), d, hit.Name)
	}
	ev = tx.PutEvent(d, ev)
	for _, e := range tx.EvictSoft(d, ev.Range()) {
		rep.Removed++
		uc.l.Infof(ctx, "reconcile.usecase.placeFixed: evicted %s for %s", e.Name, ev.Name)
	}
}

func tombstoned(w *model.WeekSchedule, ref string) bool {
	for _, t := range w.Tombstones {
		if t == ref {
			return true
		}
	}
	return false
}
