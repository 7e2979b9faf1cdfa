// Package scheduler triggers reconciliation cycles on a cron schedule and
// spaces out retries after failures.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/robfig/cron/v3"

	"weekly-scheduler/internal/reconcile"
	"weekly-scheduler/pkg/log"
)

const (
	DefaultSchedule       = "@every 15m"
	DefaultInitialBackoff = time.Minute
	DefaultMaxBackoff     = 30 * time.Minute
)

type Config struct {
	// Schedule is a cron spec or descriptor such as "@every 15m".
	Schedule       string
	Location       *time.Location
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Now            func() time.Time
}

// Scheduler runs the engine periodically. After a failed cycle the following
// ticks are skipped until the backoff delay has passed.
type Scheduler struct {
	uc   reconcile.UseCase
	cron *cron.Cron
	now  func() time.Time
	l    log.Logger

	mu      sync.Mutex
	backoff *backoff.ExponentialBackOff
	retryAt time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

func New(uc reconcile.UseCase, cfg Config, l log.Logger) (*Scheduler, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = DefaultInitialBackoff
	}
	if cfg.MaxBackoff < cfg.InitialBackoff {
		cfg.MaxBackoff = DefaultMaxBackoff
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InitialBackoff
	b.MaxInterval = cfg.MaxBackoff
	b.MaxElapsedTime = 0
	b.Reset()

	cl := cronLogger{l: l}
	s := &Scheduler{
		uc:      uc,
		now:     cfg.Now,
		l:       l,
		backoff: b,
		cron: cron.New(
			cron.WithLocation(cfg.Location),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
	}
	if _, err := s.cron.AddFunc(cfg.Schedule, s.tick); err != nil {
		return nil, fmt.Errorf("invalid sync schedule %q: %w", cfg.Schedule, err)
	}
	return s, nil
}

// Start begins ticking. Cycles run with a context derived from ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron.Start()
	s.l.Infof(ctx, "scheduler.Start: reconciliation scheduled")
}

// Stop cancels a running cycle and waits for it to return.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.cron.Stop().Done()
}

func (s *Scheduler) tick() {
	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	wait := s.retryAt
	s.mu.Unlock()

	if s.now().Before(wait) {
		s.l.Debugf(ctx, "scheduler.tick: backing off until %s", wait.Format(time.RFC3339))
		return
	}
	_, _ = s.Run(ctx)
}

// Run runs one cycle now, ignoring any backoff, and updates the backoff state.
func (s *Scheduler) Run(ctx context.Context) (reconcile.Report, error) {
	rep, err := s.uc.Run(ctx)
	if errors.Is(err, reconcile.ErrInProgress) {
		return rep, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		delay := s.backoff.NextBackOff()
		if delay == backoff.Stop {
			delay = s.backoff.MaxInterval
		}
		s.retryAt = s.now().Add(delay)
		s.l.Warnf(ctx, "scheduler.Run: cycle failed, next attempt in %s: %v", delay.Round(time.Second), err)
		return rep, err
	}
	s.backoff.Reset()
	s.retryAt = time.Time{}
	return rep, nil
}

// RetryAt is the earliest time the next scheduled cycle may run.
func (s *Scheduler) RetryAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retryAt
}

// cronLogger routes cron's own messages to the application logger.
type cronLogger struct {
	l log.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugf(context.Background(), "cron: %s %v", msg, keysAndValues)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorf(context.Background(), "cron: %s %v: %v", msg, keysAndValues, err)
}
