package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"weekly-scheduler/config"
	"weekly-scheduler/internal/app"
	"weekly-scheduler/pkg/log"
)

// main runs calendar reconciliation without the HTTP API. With --once it runs
// a single cycle, prints the report and exits non-zero on failure.
func main() {
	configPath := pflag.StringP("config", "c", "", "path to config.yaml")
	once := pflag.Bool("once", false, "run one cycle and exit")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		os.Exit(1)
	}

	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "Failed to initialize: ", err)
		os.Exit(1)
	}
	defer a.Close()

	if a.Sync == nil {
		logger.Error(ctx, "Nothing to reconcile: enable sync and configure google_calendar or ics_feeds")
		os.Exit(1)
	}

	if *once {
		rep, runErr := a.Sync.Run(ctx)
		out, _ := json.MarshalIndent(rep, "", "  ")
		fmt.Println(string(out))
		if runErr != nil {
			logger.Error(ctx, "Reconciliation failed: ", runErr)
			a.Close()
			os.Exit(1)
		}
		return
	}

	logger.Info(ctx, "Reconciler running. Waiting for shutdown signal...")
	a.Scheduler.Start(ctx)
	<-ctx.Done()
	a.Scheduler.Stop()
	logger.Info(ctx, "Reconciler stopped gracefully")
}
