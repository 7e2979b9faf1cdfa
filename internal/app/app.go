// Package app builds the scheduler components from configuration. Both the
// API server and the standalone reconciler start from here.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"weekly-scheduler/config"
	"weekly-scheduler/internal/dispatch"
	dispatchUC "weekly-scheduler/internal/dispatch/usecase"
	"weekly-scheduler/internal/model"
	"weekly-scheduler/internal/reconcile"
	"weekly-scheduler/internal/reconcile/remote/gcal"
	"weekly-scheduler/internal/reconcile/remote/ics"
	"weekly-scheduler/internal/reconcile/scheduler"
	reconcileUC "weekly-scheduler/internal/reconcile/usecase"
	"weekly-scheduler/internal/slot"
	"weekly-scheduler/internal/week"
	"weekly-scheduler/internal/week/repository/factory"
	weekUC "weekly-scheduler/internal/week/usecase"
	"weekly-scheduler/pkg/datemath"
	"weekly-scheduler/pkg/gcalendar"
	"weekly-scheduler/pkg/icsfeed"
	"weekly-scheduler/pkg/llmprovider"
	"weekly-scheduler/pkg/log"
)

// App is the wired component graph.
type App struct {
	Location *time.Location
	Store    *week.Manager
	Dispatch dispatch.UseCase
	Week     week.UseCase

	// Sync is nil when no calendar source is configured. Scheduler wraps the
	// engine; runs made through it feed the retry backoff.
	Sync      reconcile.UseCase
	Scheduler *scheduler.Scheduler

	closers []func()
}

// Close releases storage connections.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func New(ctx context.Context, cfg *config.Config, l log.Logger) (*App, error) {
	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("schedule.timezone: %w", err)
	}
	a := &App{Location: loc}

	repo, closeRepo, err := factory.Open(ctx, cfg.Storage, l)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeRepo)

	a.Store = week.NewManager(repo, week.Options{
		Location:     loc,
		LockTimeout:  cfg.Schedule.LockTimeout,
		ArchiveWeeks: cfg.Schedule.ArchiveWeeks,
	}, nil, l)
	a.Week = weekUC.New(a.Store, loc, l)

	start, err := model.ParseClock(cfg.Schedule.WorkdayStart)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("schedule.workday_start: %w", err)
	}
	end, err := model.ParseClock(cfg.Schedule.WorkdayEnd)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("schedule.workday_end: %w", err)
	}
	greedy := slot.NewGreedy(slot.Options{
		WorkdayStart:    start,
		WorkdayEnd:      end,
		MinBlockMinutes: cfg.Schedule.MinBlockMinutes,
	})
	allocator := slot.NewAllocator(greedy, cfg.Schedule.BufferMinutes)

	finder, err := newFinder(ctx, cfg, greedy, l)
	if err != nil {
		a.Close()
		return nil, err
	}

	dates, err := datemath.NewParser(cfg.Schedule.Timezone)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Dispatch = dispatchUC.New(l, dispatchUC.Config{
		Store:                       a.Store,
		Resolver:                    dispatch.NewResolver(dates, cfg.Schedule.DefaultEventMinutes),
		Sessions:                    dispatch.NewSessionStore(cfg.Session.MaxSessions, cfg.Session.TTL, nil),
		Finder:                      finder,
		Allocator:                   allocator,
		RecommendationBufferMinutes: cfg.Schedule.RecommendationBufferMinutes,
		TaskDue:                     end,
	})

	if err := a.setupSync(ctx, cfg, allocator, l); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func newFinder(ctx context.Context, cfg *config.Config, greedy *slot.GreedyFinder, l log.Logger) (slot.Finder, error) {
	if cfg.Schedule.SlotFinder != "llm" {
		return greedy, nil
	}

	providers, err := llmprovider.InitializeProviders(&cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("llm providers: %w", err)
	}
	manager := llmprovider.NewManager(providers, &llmprovider.Config{
		FallbackEnabled: cfg.LLM.FallbackEnabled,
		RetryAttempts:   cfg.LLM.RetryAttempts,
		RetryDelay:      parseDuration(cfg.LLM.RetryDelay, 500*time.Millisecond),
		MaxTotalTimeout: parseDuration(cfg.LLM.MaxTotalTimeout, 10*time.Second),
	}, l)

	finder, err := slot.NewLLM(manager, greedy, parseDuration(cfg.LLM.MaxTotalTimeout, 0), l)
	if err != nil {
		return nil, err
	}
	l.Infof(ctx, "app.New: model-assisted slot finder with %d providers", len(providers))
	return finder, nil
}

func (a *App) setupSync(ctx context.Context, cfg *config.Config, allocator *slot.Allocator, l log.Logger) error {
	if !cfg.Sync.Enabled {
		l.Info(ctx, "app.New: calendar sync disabled")
		return nil
	}

	var remote reconcile.Remote
	if cfg.GoogleCalendar.Enabled {
		client, err := gcalendar.NewClientFromCredentialsFile(ctx,
			cfg.GoogleCalendar.CredentialsPath,
			cfg.GoogleCalendar.TokenPath,
			gcalendar.WithRateLimit(cfg.GoogleCalendar.RequestsPerSecond, 1),
		)
		if err != nil {
			return fmt.Errorf("google calendar: %w", err)
		}
		b := cfg.Sync.Breaker
		remote = gcal.New(client, gcal.Options{
			CalendarID: cfg.GoogleCalendar.CalendarID,
			Breaker: gcal.BreakerConfig{
				MaxRequests:  b.MaxRequests,
				Interval:     b.Interval,
				Timeout:      b.Timeout,
				MinRequests:  b.MinRequests,
				FailureRatio: b.FailureRatio,
			},
		}, l)
	}

	var feeds []reconcile.Feed
	if len(cfg.ICSFeeds) > 0 {
		fetcher := icsfeed.NewFetcher(&http.Client{Timeout: cfg.Sync.Timeout})
		for _, f := range cfg.ICSFeeds {
			feeds = append(feeds, ics.New(icsfeed.Source{ID: f.ID, URL: f.URL}, fetcher, l))
		}
	}

	if remote == nil && len(feeds) == 0 {
		l.Info(ctx, "app.New: no calendar sources configured, sync off")
		return nil
	}

	engine := reconcileUC.New(l, reconcileUC.Config{
		Store:     a.Store,
		Remote:    remote,
		Feeds:     feeds,
		Allocator: allocator,
		Location:  a.Location,
		Timeout:   cfg.Sync.Timeout,
	})
	sched, err := scheduler.New(engine, scheduler.Config{
		Schedule:       cfg.Sync.Schedule,
		Location:       a.Location,
		InitialBackoff: cfg.Sync.InitialBackoff,
		MaxBackoff:     cfg.Sync.MaxBackoff,
	}, l)
	if err != nil {
		return err
	}
	a.Scheduler = sched
	a.Sync = sched
	l.Infof(ctx, "app.New: sync with %d feeds, google calendar %t", len(feeds), remote != nil)
	return nil
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return fallback
}
