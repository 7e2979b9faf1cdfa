// Package gcal adapts Google Calendar to the reconciliation engine.
package gcal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"weekly-scheduler/internal/model"
	"weekly-scheduler/internal/reconcile"
	"weekly-scheduler/pkg/gcalendar"
	"weekly-scheduler/pkg/log"
)

const SourceName = "google_calendar"

// Calendar is the subset of *gcalendar.Client used here.
type Calendar interface {
	ListEvents(ctx context.Context, req gcalendar.ListEventsRequest) (*gcalendar.ListEventsResult, error)
	CreateEvent(ctx context.Context, req gcalendar.EventInput) (*gcalendar.Event, error)
	UpdateEvent(ctx context.Context, eventID string, req gcalendar.EventInput) (*gcalendar.Event, error)
	DeleteEvent(ctx context.Context, calID, eventID string) error
}

// BreakerConfig tunes the circuit breaker in front of the API.
type BreakerConfig struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	MinRequests  uint32
	FailureRatio float64
}

type Options struct {
	CalendarID string
	Breaker    BreakerConfig
}

// Remote implements reconcile.Remote. Every call goes through one breaker so a
// failing API is not hammered by consecutive cycles.
type Remote struct {
	cal        Calendar
	calendarID string
	cb         *gobreaker.CircuitBreaker
	l          log.Logger
}

func New(cal Calendar, opts Options, l log.Logger) *Remote {
	bc := opts.Breaker
	if bc.MaxRequests == 0 {
		bc.MaxRequests = 1
	}
	if bc.Interval == 0 {
		bc.Interval = time.Minute
	}
	if bc.Timeout == 0 {
		bc.Timeout = 2 * time.Minute
	}
	if bc.MinRequests == 0 {
		bc.MinRequests = 5
	}
	if bc.FailureRatio == 0 {
		bc.FailureRatio = 0.5
	}

	r := &Remote{cal: cal, calendarID: opts.CalendarID, l: l}
	r.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        SourceName,
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= bc.MinRequests && ratio >= bc.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l.Warnf(context.Background(), "gcal.Remote: circuit breaker %s %s -> %s", name, from, to)
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, gcalendar.ErrNotFound) ||
				errors.Is(err, gcalendar.ErrSyncTokenExpired) ||
				errors.Is(err, context.Canceled)
		},
	})
	return r
}

func (r *Remote) Name() string { return SourceName }

// PullChangedSince lists the week when cursor is empty, otherwise the changes
// since the sync token.
func (r *Remote) PullChangedSince(ctx context.Context, w reconcile.Window, cursor string) (reconcile.Batch, error) {
	req := gcalendar.ListEventsRequest{CalendarID: r.calendarID, SyncToken: cursor}
	if cursor == "" {
		req.TimeMin, req.TimeMax = w.Start, w.End()
	}

	out, err := r.cb.Execute(func() (interface{}, error) {
		return r.cal.ListEvents(ctx, req)
	})
	if errors.Is(err, gcalendar.ErrSyncTokenExpired) {
		return reconcile.Batch{}, reconcile.ErrCursorExpired
	}
	if err != nil {
		return reconcile.Batch{}, err
	}

	res := out.(*gcalendar.ListEventsResult)
	b := reconcile.Batch{Source: SourceName, Cursor: res.NextSyncToken, Full: cursor == ""}
	for _, ev := range res.Events {
		b.Events = append(b.Events, toRemote(w, ev))
	}
	return b, nil
}

func (r *Remote) CreateEvent(ctx context.Context, w reconcile.Window, day model.Weekday, ev model.Event) (string, error) {
	out, err := r.cb.Execute(func() (interface{}, error) {
		return r.cal.CreateEvent(ctx, r.input(w, day, ev))
	})
	if err != nil {
		return "", err
	}
	created := out.(*gcalendar.Event)
	if created.ID == "" {
		return "", fmt.Errorf("create %s: empty event id", ev.Name)
	}
	return created.ID, nil
}

func (r *Remote) UpdateEvent(ctx context.Context, ref string, w reconcile.Window, day model.Weekday, ev model.Event) error {
	_, err := r.cb.Execute(func() (interface{}, error) {
		return r.cal.UpdateEvent(ctx, ref, r.input(w, day, ev))
	})
	if errors.Is(err, gcalendar.ErrNotFound) {
		return reconcile.ErrRemoteNotFound
	}
	return err
}

func (r *Remote) DeleteEvent(ctx context.Context, ref string) error {
	_, err := r.cb.Execute(func() (interface{}, error) {
		return nil, r.cal.DeleteEvent(ctx, r.calendarID, ref)
	})
	if errors.Is(err, gcalendar.ErrNotFound) {
		return reconcile.ErrRemoteNotFound
	}
	return err
}

func (r *Remote) input(w reconcile.Window, day model.Weekday, ev model.Event) gcalendar.EventInput {
	in := gcalendar.EventInput{
		CalendarID: r.calendarID,
		Summary:    ev.Name,
		StartTime:  w.Time(day, ev.Start),
		EndTime:    w.Time(day, ev.End),
		Timezone:   w.Location.String(),
		Private: map[string]string{
			reconcile.PropLocalID: ev.ID,
			reconcile.PropKind:    string(ev.Kind),
		},
	}
	if ev.TaskID != "" {
		in.Private[reconcile.PropTaskID] = ev.TaskID
		in.Description = "Study block scheduled by weekly-scheduler"
	}
	return in
}

// toRemote places ev in the week. Cancelled, all-day and out-of-week events
// are reported as deleted.
func toRemote(w reconcile.Window, ev gcalendar.Event) reconcile.RemoteEvent {
	re := reconcile.RemoteEvent{
		Ref:     ev.ID,
		Name:    ev.Summary,
		Kind:    model.KindFixed,
		LocalID: ev.Private[reconcile.PropLocalID],
		TaskID:  ev.Private[reconcile.PropTaskID],
	}
	if k := model.EventKind(ev.Private[reconcile.PropKind]); k.Valid() {
		re.Kind = k
	}
	if ev.Cancelled() || ev.AllDay {
		re.Deleted = true
		return re
	}
	d, start, end, ok := w.Locate(ev.StartTime, ev.EndTime)
	if !ok {
		re.Deleted = true
		return re
	}
	re.Day, re.Start, re.End = d, start, end
	return re
}
