// Package ics pulls subscribed iCalendar feeds as read-only sources.
package ics

import (
	"context"
	"fmt"

	"weekly-scheduler/internal/model"
	"weekly-scheduler/internal/reconcile"
	"weekly-scheduler/pkg/icsfeed"
	"weekly-scheduler/pkg/log"
)

// Feed implements reconcile.Feed. Its cursor is the content hash of the last
// merged body, so an unchanged feed is not merged again.
type Feed struct {
	src     icsfeed.Source
	fetcher *icsfeed.Fetcher
	l       log.Logger
}

func New(src icsfeed.Source, fetcher *icsfeed.Fetcher, l log.Logger) *Feed {
	return &Feed{src: src, fetcher: fetcher, l: l}
}

func (f *Feed) Name() string { return f.src.ID }

// Pull returns every occurrence inside the week. All-day and multi-day
// entries are left out.
func (f *Feed) Pull(ctx context.Context, w reconcile.Window, cursor string) (reconcile.Batch, error) {
	res, err := f.fetcher.Fetch(ctx, f.src)
	if err != nil {
		return reconcile.Batch{}, err
	}
	if res.Hash == cursor {
		return reconcile.Batch{Source: f.src.ID, Cursor: cursor, Unchanged: true}, nil
	}

	events, skipped, err := icsfeed.Parse(res.Body)
	if err != nil {
		return reconcile.Batch{}, fmt.Errorf("parse feed %s: %w", f.src.ID, err)
	}
	if skipped > 0 {
		f.l.Warnf(ctx, "ics.Feed.Pull: %s: skipped %d unreadable events", f.src.ID, skipped)
	}

	b := reconcile.Batch{Source: f.src.ID, Cursor: res.Hash, Full: true}
	for _, occ := range icsfeed.Expand(events, w.Start, w.End(), w.Location) {
		if occ.AllDay {
			continue
		}
		d, start, end, ok := w.Locate(occ.Start, occ.End)
		if !ok {
			continue
		}
		b.Events = append(b.Events, reconcile.RemoteEvent{
			Ref:   occ.Key,
			Name:  occ.Summary,
			Day:   d,
			Start: start,
			End:   end,
			Kind:  model.KindFixed,
		})
	}
	return b, nil
}
