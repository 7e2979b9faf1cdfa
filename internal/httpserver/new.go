package httpserver

import (
	"errors"

	"github.com/gin-gonic/gin"

	"weekly-scheduler/internal/dispatch"
	tgDelivery "weekly-scheduler/internal/dispatch/delivery/telegram"
	"weekly-scheduler/internal/reconcile"
	"weekly-scheduler/internal/week"
	"weekly-scheduler/pkg/log"
)

// HTTPServer holds all dependencies for the HTTP server.
type HTTPServer struct {
	// Server
	gin         *gin.Engine
	l           log.Logger
	port        int
	mode        string
	environment string
	apiKey      string

	// Schedule domain
	dispatchUC dispatch.UseCase
	weekUC     week.UseCase

	// Optional
	syncUC          reconcile.UseCase
	telegramHandler tgDelivery.Handler
}

// Config is the dependency bag passed to New().
type Config struct {
	Logger      log.Logger
	Port        int
	Mode        string
	Environment string
	APIKey      string

	DispatchUseCase dispatch.UseCase
	WeekUseCase     week.UseCase

	// SyncUseCase enables POST /api/v1/sync when set.
	SyncUseCase reconcile.UseCase
	// TelegramHandler enables POST /webhook/telegram when set.
	TelegramHandler tgDelivery.Handler
}

// New creates a new HTTPServer instance.
func New(logger log.Logger, cfg Config) (*HTTPServer, error) {
	gin.SetMode(cfg.Mode)

	srv := &HTTPServer{
		l:           logger,
		gin:         gin.New(),
		port:        cfg.Port,
		mode:        cfg.Mode,
		environment: cfg.Environment,
		apiKey:      cfg.APIKey,
		dispatchUC:  cfg.DispatchUseCase,
		weekUC:      cfg.WeekUseCase,
		syncUC:      cfg.SyncUseCase,

		telegramHandler: cfg.TelegramHandler,
	}

	if err := srv.validate(); err != nil {
		return nil, err
	}

	return srv, nil
}

func (srv HTTPServer) validate() error {
	if srv.l == nil {
		return errors.New("logger is required")
	}
	if srv.mode == "" {
		return errors.New("mode is required")
	}
	if srv.port == 0 {
		return errors.New("port is required")
	}
	if srv.dispatchUC == nil {
		return errors.New("dispatch usecase is required")
	}
	if srv.weekUC == nil {
		return errors.New("week usecase is required")
	}
	return nil
}
