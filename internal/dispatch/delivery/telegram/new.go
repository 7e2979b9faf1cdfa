package telegram

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"

	"weekly-scheduler/internal/dispatch"
	pkgLog "weekly-scheduler/pkg/log"
)

const (
	pendingChats   = 1024
	processTimeout = 30 * time.Second
)

// Handler is the interface for the Telegram delivery handler.
type Handler interface {
	HandleWebhook(c *gin.Context)
}

// Sender is the subset of *telegram.Bot used to reply.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

type handler struct {
	l      pkgLog.Logger
	uc     dispatch.UseCase
	bot    Sender
	secret string

	// pending keeps the fields the last reply asked for, so a bare text
	// answer can be routed to the right field.
	pending *lru.Cache[int64, []string]
}

// New creates a new Telegram delivery handler. A non-empty secret must match
// the secret header of every update.
func New(l pkgLog.Logger, uc dispatch.UseCase, bot Sender, secret string) Handler {
	pending, _ := lru.New[int64, []string](pendingChats)
	return &handler{
		l:       l,
		uc:      uc,
		bot:     bot,
		secret:  secret,
		pending: pending,
	}
}
