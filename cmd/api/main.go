package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"weekly-scheduler/config"
	_ "weekly-scheduler/docs" // Swagger docs
	"weekly-scheduler/internal/app"
	tgDelivery "weekly-scheduler/internal/dispatch/delivery/telegram"
	"weekly-scheduler/internal/httpserver"
	"weekly-scheduler/pkg/log"
	"weekly-scheduler/pkg/telegram"
)

// @title       Weekly Scheduler API
// @description Conversational weekly calendar with conflict detection, study-block allocation and Google Calendar sync.
// @version     1
// @host        localhost:8080
// @schemes     http
func main() {
	configPath := pflag.StringP("config", "c", "", "path to config.yaml")
	pflag.Parse()

	// 1. Configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		os.Exit(1)
	}

	// 2. Logger
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting Weekly Scheduler...")
	logger.Infof(ctx, "Environment: %s, timezone: %s, storage: %s", cfg.Environment.Name, cfg.Schedule.Timezone, cfg.Storage.Driver)

	// 3. Components
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "Failed to initialize: ", err)
		return
	}
	defer a.Close()

	// 4. Periodic sync
	if a.Scheduler != nil {
		a.Scheduler.Start(ctx)
		defer a.Scheduler.Stop()
	}

	// 5. Telegram front end (optional)
	var telegramHandler tgDelivery.Handler
	if cfg.Telegram.BotToken != "" {
		bot := telegram.NewBot(cfg.Telegram.BotToken)
		telegramHandler = tgDelivery.New(logger, a.Dispatch, bot, cfg.Telegram.WebhookSecret)

		if cfg.Telegram.WebhookURL != "" {
			if whErr := bot.SetWebhook(ctx, cfg.Telegram.WebhookURL, cfg.Telegram.WebhookSecret); whErr != nil {
				logger.Warnf(ctx, "Failed to set Telegram webhook: %v", whErr)
			} else {
				logger.Infof(ctx, "Telegram webhook registered at %s", cfg.Telegram.WebhookURL)
			}
		}
	}

	// 6. HTTP Server
	httpServer, err := httpserver.New(logger, httpserver.Config{
		Logger:          logger,
		Port:            cfg.HTTPServer.Port,
		Mode:            cfg.HTTPServer.Mode,
		Environment:     cfg.Environment.Name,
		APIKey:          cfg.HTTPServer.APIKey,
		DispatchUseCase: a.Dispatch,
		WeekUseCase:     a.Week,
		SyncUseCase:     a.Sync,
		TelegramHandler: telegramHandler,
	})
	if err != nil {
		logger.Error(ctx, "Failed to initialize HTTP server: ", err)
		return
	}

	// 7. Run
	if err := httpServer.Run(ctx); err != nil {
		logger.Error(ctx, "Failed to run server: ", err)
		return
	}

	logger.Info(ctx, "Server stopped gracefully")
}
