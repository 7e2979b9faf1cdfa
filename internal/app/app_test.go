package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekly-scheduler/config"
	"weekly-scheduler/internal/dispatch"
	"weekly-scheduler/pkg/log"
)

func baseConfig() *config.Config {
	return &config.Config{
		Schedule: config.ScheduleConfig{
			Timezone:            "UTC",
			WorkdayStart:        "08:00",
			WorkdayEnd:          "21:00",
			BufferMinutes:       15,
			MinBlockMinutes:     30,
			DefaultEventMinutes: 60,
			LockTimeout:         time.Second,
			SlotFinder:          "greedy",
		},
		Session: config.SessionConfig{TTL: time.Minute, MaxSessions: 10},
		Storage: config.StorageConfig{Driver: "memory"},
		Sync:    config.SyncConfig{Enabled: true, Schedule: "@every 1h", Timeout: time.Second},
	}
}

func TestNewWithoutSources(t *testing.T) {
	a, err := New(context.Background(), baseConfig(), log.NewNop())
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Dispatch)
	assert.NotNil(t, a.Week)
	assert.Nil(t, a.Sync)
	assert.Nil(t, a.Scheduler)

	res, err := a.Dispatch.Dispatch(context.Background(), dispatch.Input{ConversationID: "c1", Intent: dispatch.IntentQueryWeek})
	require.NoError(t, err)
	assert.True(t, res.Success)

	w, err := a.Week.GetWeek(context.Background())
	require.NoError(t, err)
	assert.Len(t, w.Days, 7)
}

func TestNewWithFeed(t *testing.T) {
	cfg := baseConfig()
	cfg.ICSFeeds = []config.ICSFeedConfig{{ID: "school", URL: "http://127.0.0.1:1/feed.ics"}}

	a, err := New(context.Background(), cfg, log.NewNop())
	require.NoError(t, err)
	defer a.Close()
	require.NotNil(t, a.Sync)
	assert.Same(t, a.Scheduler, a.Sync)

	// An unreachable feed is skipped, the cycle itself succeeds.
	rep, err := a.Sync.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"school"}, rep.SkippedSources)
}

func TestNewSyncDisabled(t *testing.T) {
	cfg := baseConfig()
	cfg.Sync.Enabled = false
	cfg.ICSFeeds = []config.ICSFeedConfig{{ID: "school", URL: "http://127.0.0.1:1/feed.ics"}}

	a, err := New(context.Background(), cfg, log.NewNop())
	require.NoError(t, err)
	assert.Nil(t, a.Sync)
}

func TestNewErrors(t *testing.T) {
	tcs := map[string]func(*config.Config){
		"timezone": func(c *config.Config) { c.Schedule.Timezone = "Mars/Olympus" },
		"workday":  func(c *config.Config) { c.Schedule.WorkdayStart = "soon" },
		"storage":  func(c *config.Config) { c.Storage.Driver = "tape" },
		"schedule": func(c *config.Config) {
			c.Sync.Schedule = "whenever"
			c.ICSFeeds = []config.ICSFeedConfig{{ID: "f", URL: "http://127.0.0.1:1"}}
		},
		"gcal credentials": func(c *config.Config) {
			c.GoogleCalendar = config.GoogleCalendarConfig{Enabled: true, CredentialsPath: "/nonexistent/creds.json"}
		},
	}
	for name, mutate := range tcs {
		t.Run(name, func(t *testing.T) {
			cfg := baseConfig()
			mutate(cfg)
			_, err := New(context.Background(), cfg, log.NewNop())
			assert.Error(t, err)
		})
	}
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 2*time.Second, parseDuration("2s", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("-1s", time.Minute))
}
